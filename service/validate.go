package service

import (
	"strings"
	"time"

	"infraspend/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// maxMoney is the first value that no longer fits DECIMAL(15,2).
var maxMoney = decimal.New(1, 13)

// fieldErrors collects field-level validation failures.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return validationError(f)
}

func (f fieldErrors) required(field, value string, max int) {
	switch {
	case strings.TrimSpace(value) == "":
		f.add(field, "is required")
	case len(value) > max:
		f.add(field, "is too long")
	}
}

func (f fieldErrors) money(field string, v decimal.Decimal) {
	switch {
	case !v.IsPositive():
		f.add(field, "must be greater than zero")
	case !v.Equal(v.Round(2)):
		f.add(field, "must have at most two decimal places")
	case v.GreaterThanOrEqual(maxMoney):
		f.add(field, "is too large")
	}
}

func (f fieldErrors) date(field, v string) {
	if _, err := time.Parse(models.DateLayout, v); err != nil {
		f.add(field, "must be a date formatted YYYY-MM-DD")
	}
}

func (f fieldErrors) email(field, v string) {
	if v == "" {
		return
	}
	if err := validate.Var(v, "email"); err != nil {
		f.add(field, "must be a valid email address")
	}
}

func (f fieldErrors) password(field, v string) {
	if len(v) < minPasswordLen {
		f.add(field, "must be at least 6 characters")
	}
}

const minPasswordLen = 6
