package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/whitestitch/planner_backend/config"
	"github.com/whitestitch/planner_backend/models"
	"github.com/whitestitch/planner_backend/planning"
	"github.com/whitestitch/planner_backend/reports"
	"github.com/whitestitch/planner_backend/utils"
	"github.com/whitestitch/planner_backend/workflow"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

const defaultPort = "8080"

var tracer = otel.Tracer("planner-backend")

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func handleBindError(c *gin.Context, err error) {
	if fields := utils.ProcessValidationErrors(err); fields != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}
	handleError(c, utils.InvalidInputError(err.Error()))
}

func handleError(c *gin.Context, err error) {
	switch {
	case utils.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case utils.IsInvalidInput(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// parseAsOf reads an optional ?as_of=YYYY-MM-DD query value, defaulting to
// today (UTC) so previews match what a nightly run would produce.
func parseAsOf(c *gin.Context) (time.Time, error) {
	raw := c.Query("as_of")
	if raw == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	return utils.ParseDate(raw)
}

func demandHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		articleId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			handleError(c, utils.InvalidInputError("article id must be an integer"))
			return
		}
		asOf, err := parseAsOf(c)
		if err != nil {
			handleError(c, err)
			return
		}
		result, err := planning.EstimateDemand(c.Request.Context(), articleId, asOf)
		if err != nil {
			handleError(c, err)
			return
		}
		result.CoverageDays = result.CoverageForOutput()
		c.JSON(http.StatusOK, result)
	}
}

func articleStatsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		articleId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			handleError(c, utils.InvalidInputError("article id must be an integer"))
			return
		}
		asOf, err := parseAsOf(c)
		if err != nil {
			handleError(c, err)
			return
		}
		stats, err := planning.GetArticleStats(c.Request.Context(), articleId, asOf)
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

func articleStatsListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		asOf, err := parseAsOf(c)
		if err != nil {
			handleError(c, err)
			return
		}
		stats, err := planning.ListArticleStats(c.Request.Context(), asOf)
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

func orderProposalHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		asOf, err := parseAsOf(c)
		if err != nil {
			handleError(c, err)
			return
		}
		proposal, err := planning.ProposeOrders(c.Request.Context(), asOf)
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, proposal)
	}
}

func bundleQueryIds(c *gin.Context) (articleId, bundleTypeId, warehouseId int, err error) {
	articleId, err = strconv.Atoi(c.Query("article_id"))
	if err != nil {
		return 0, 0, 0, utils.InvalidInputError("article_id must be an integer")
	}
	bundleTypeId, err = strconv.Atoi(c.Query("bundle_type_id"))
	if err != nil {
		return 0, 0, 0, utils.InvalidInputError("bundle_type_id must be an integer")
	}
	warehouseId, err = strconv.Atoi(c.Query("warehouse_id"))
	if err != nil {
		return 0, 0, 0, utils.InvalidInputError("warehouse_id must be an integer")
	}
	return articleId, bundleTypeId, warehouseId, nil
}

func bundleAvailabilityHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		articleId, bundleTypeId, warehouseId, err := bundleQueryIds(c)
		if err != nil {
			handleError(c, err)
			return
		}
		result, err := planning.BundleAvailability(c.Request.Context(), articleId, bundleTypeId, warehouseId)
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func bundleDeficitHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		articleId, bundleTypeId, warehouseId, err := bundleQueryIds(c)
		if err != nil {
			handleError(c, err)
			return
		}
		targetCount, err := strconv.Atoi(c.Query("target_count"))
		if err != nil {
			handleError(c, utils.InvalidInputError("target_count must be an integer"))
			return
		}
		result, err := planning.BundleDeficit(c.Request.Context(), articleId, bundleTypeId, warehouseId, targetCount)
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func bundleRiskHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		asOf, err := parseAsOf(c)
		if err != nil {
			handleError(c, err)
			return
		}
		articleIds, err := utils.ParseIdList(c.Query("article_ids"))
		if err != nil {
			handleError(c, err)
			return
		}
		entries, err := planning.ClassifyBundleRisks(c.Request.Context(), articleIds, asOf)
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

type replenishmentRequest struct {
	TargetDate                 string `json:"target_date" binding:"required"`
	ArrivalDate                string `json:"arrival_date" binding:"required"`
	Strategy                   string `json:"strategy" binding:"required,oneof=aggressive normal conservative"`
	ZeroSalesPolicy            string `json:"zero_sales_policy" binding:"required,oneof=keep ignore"`
	TargetCoverageDays         int    `json:"target_coverage_days" binding:"required,gt=0"`
	MinCoverageDays            int    `json:"min_coverage_days" binding:"gte=0"`
	MaxCoverageDaysAfter       int    `json:"max_coverage_days_after" binding:"required,gt=0"`
	MaxReplenishmentPerArticle *int   `json:"max_replenishment_per_article" binding:"omitempty,gt=0"`
	ArticleIds                 []int  `json:"article_ids"`
}

func (req replenishmentRequest) toParams() (planning.ReplenishmentParams, error) {
	targetDate, err := utils.ParseDate(req.TargetDate)
	if err != nil {
		return planning.ReplenishmentParams{}, err
	}
	arrivalDate, err := utils.ParseDate(req.ArrivalDate)
	if err != nil {
		return planning.ReplenishmentParams{}, err
	}
	return planning.ReplenishmentParams{
		TargetDate:                 targetDate,
		ArrivalDate:                arrivalDate,
		Strategy:                   models.ReplenishmentStrategy(req.Strategy),
		ZeroSalesPolicy:            models.ZeroSalesPolicy(req.ZeroSalesPolicy),
		TargetCoverageDays:         req.TargetCoverageDays,
		MinCoverageDays:            req.MinCoverageDays,
		MaxCoverageDaysAfter:       req.MaxCoverageDaysAfter,
		MaxReplenishmentPerArticle: req.MaxReplenishmentPerArticle,
		ArticleIds:                 req.ArticleIds,
	}, nil
}

func replenishmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req replenishmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			handleBindError(c, err)
			return
		}
		params, err := req.toParams()
		if err != nil {
			handleError(c, err)
			return
		}
		plan, err := planning.PlanReplenishment(c.Request.Context(), params)
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, plan)
	}
}

type createPurchaseOrderRequest struct {
	AsOf    string `json:"as_of"`
	Comment string `json:"comment"`
}

func createPurchaseOrderHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createPurchaseOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			handleBindError(c, err)
			return
		}
		asOf := time.Now().UTC().Truncate(24 * time.Hour)
		if req.AsOf != "" {
			parsed, err := utils.ParseDate(req.AsOf)
			if err != nil {
				handleError(c, err)
				return
			}
			asOf = parsed
		}

		ctx, span := tracer.Start(c.Request.Context(), "CreatePurchaseOrder")
		defer span.End()

		proposal, err := planning.ProposeOrders(ctx, asOf)
		if err != nil {
			handleError(c, err)
			return
		}
		var order *models.PurchaseOrder
		err = config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var txErr error
			order, txErr = workflow.CreatePurchaseOrderDraft(tx, logger, proposal, asOf, req.Comment)
			return txErr
		})
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

type createShipmentRequest struct {
	replenishmentRequest
	Comment string `json:"comment"`
}

func createShipmentHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createShipmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			handleBindError(c, err)
			return
		}
		params, err := req.toParams()
		if err != nil {
			handleError(c, err)
			return
		}

		ctx, span := tracer.Start(c.Request.Context(), "CreateShipment")
		defer span.End()

		plan, err := planning.PlanReplenishment(ctx, params)
		if err != nil {
			handleError(c, err)
			return
		}
		var shipment *models.Shipment
		err = config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var txErr error
			shipment, txErr = workflow.CreateShipmentDraft(tx, logger, plan, req.Comment)
			return txErr
		})
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusCreated, shipment)
	}
}

func exportOrderProposalHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		asOf, err := parseAsOf(c)
		if err != nil {
			handleError(c, err)
			return
		}
		proposal, err := planning.ProposeOrders(c.Request.Context(), asOf)
		if err != nil {
			handleError(c, err)
			return
		}
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=order-proposal.xlsx")
		if err := reports.WriteOrderProposalExcel(c.Writer, proposal); err != nil {
			_ = c.Error(err)
		}
	}
}

func exportReplenishmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req replenishmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			handleBindError(c, err)
			return
		}
		params, err := req.toParams()
		if err != nil {
			handleError(c, err)
			return
		}
		plan, err := planning.PlanReplenishment(c.Request.Context(), params)
		if err != nil {
			handleError(c, err)
			return
		}
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=replenishment-plan.xlsx")
		if err := reports.WriteReplenishmentPlanExcel(c.Writer, plan); err != nil {
			_ = c.Error(err)
		}
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

// customErrorLogger is a custom Gin middleware that logs only errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only log when there are errors
		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so the platform considers the revision
	// healthy. Until the DB is ready, app endpoints return 503.
	r := gin.New()
	// Correlation IDs: generate once per request and attach to context.
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		// Always allow the startup probe.
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		// Gate app endpoints on dependency readiness.
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production, require an explicit allowlist via CORS_ALLOWED_ORIGINS.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	r.GET("/api/planning/articles/:id/demand", demandHandler())
	r.GET("/api/planning/articles/:id/stats", articleStatsHandler())
	r.GET("/api/planning/article-stats", articleStatsListHandler())
	r.POST("/api/planning/order-proposal", orderProposalHandler())
	r.GET("/api/planning/bundle-availability", bundleAvailabilityHandler())
	r.GET("/api/planning/bundle-deficit", bundleDeficitHandler())
	r.GET("/api/planning/bundle-risk", bundleRiskHandler())
	r.POST("/api/planning/replenishment", replenishmentHandler())
	r.POST("/api/purchase-orders", createPurchaseOrderHandler(logger))
	r.POST("/api/shipments", createShipmentHandler(logger))
	r.GET("/api/export/order-proposal", exportOrderProposalHandler())
	r.POST("/api/export/replenishment", exportReplenishmentHandler())
	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow running migrations as
	// a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	// Set the session isolation level to READ COMMITTED
	for attempt := 1; ; attempt++ {
		err := db.Exec("SET SESSION TRANSACTION ISOLATION LEVEL READ COMMITTED").Error
		if err == nil {
			break
		}
		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		logger.WithFields(logrus.Fields{
			"field":   "database",
			"attempt": attempt,
		}).Warn("failed to set isolation level; retrying in " + sleep.String() + ": " + err.Error())
		time.Sleep(sleep)
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on port ", port)

	// Block until shutdown or server error.
	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Drain HTTP requests.
	shutdownTimeout := 30 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
}
