// Package validator wires go-playground/validator into echo's Validator
// interface so handlers can call c.Validate on bound request structs.
package validator

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// echoValidator adapts *validator.Validate to echo.Validator.
type echoValidator struct {
	validate *validator.Validate
}

// New constructs the echo.Validator used by every HTTP server.
func New() echo.Validator {
	return &echoValidator{validate: validator.New()}
}

// Validate implements echo.Validator.
func (v *echoValidator) Validate(i any) error {
	return v.validate.Struct(i)
}
