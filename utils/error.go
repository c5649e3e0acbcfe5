package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

// ErrorInvalidInput marks caller mistakes (bad dates, non-positive counts).
// The HTTP layer maps it to 400; everything wrapping ErrorRecordNotFound maps to 404.
var ErrorInvalidInput = errors.New("invalid input")

func NotFoundError(entity string, id int) error {
	return fmt.Errorf("%s id=%d: %w", entity, id, ErrorRecordNotFound)
}

func InvalidInputError(detail string) error {
	return fmt.Errorf("%s: %w", detail, ErrorInvalidInput)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrorRecordNotFound)
}

func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrorInvalidInput)
}

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
