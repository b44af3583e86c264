package types

import (
	"fmt"

	"github.com/zeebo/errs"
)

// Error classes shared by the engine, the services, and the handlers.
var (
	NotFound     = errs.Class("not found")
	Forbidden    = errs.Class("forbidden")
	Validation   = errs.Class("validation error")
	Storage      = errs.Class("storage error")
	Integrity    = errs.Class("integrity error")
	Unauthorized = errs.Class("unauthorized")
)

// CustomError is raised by middleware and rendered by the global error handler
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}
