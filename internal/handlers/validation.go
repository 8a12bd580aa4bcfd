package handlers

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"finance_tracker/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidationsOnce sync.Once

// registerValidations installs the custom binding rules and makes
// validation errors report JSON field names instead of Go field names.
func registerValidations() {
	registerValidationsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("strongpassword", validateStrongPassword)
		_ = v.RegisterValidation("expensecategory", validateExpenseCategory)
	})
}

// validateStrongPassword enforces mixed case, a digit and a symbol.
// Length is checked separately by the min=8 rule so short passwords get
// the length message, not the strength one.
func validateStrongPassword(fl validator.FieldLevel) bool {
	var upper, lower, digit, symbol bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

func validateExpenseCategory(fl validator.FieldLevel) bool {
	return models.IsValidCategory(fl.Field().String())
}

// Human-readable message per failing rule, keyed by validator tag.
var validationMessages = map[string]string{
	"required":        "This field is required",
	"email":           "Not a valid email",
	"min":             "Must be at least 8 letters",
	"strongpassword":  "Not a strong password",
	"eqfield":         "Passwords must match",
	"oneof":           "Not one of the allowed values",
	"expensecategory": "Please select a valid category",
	"gt":              "Must be a positive number",
}

// fieldErrors flattens a binding error into {field: [messages]} so clients
// can render inline errors. Non-field errors (malformed JSON, wrong types)
// collapse into a single "body" entry.
func fieldErrors(err error) map[string][]string {
	out := map[string][]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["body"] = []string{err.Error()}
		return out
	}
	for _, fe := range verrs {
		msg, ok := validationMessages[fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		out[fe.Field()] = append(out[fe.Field()], msg)
	}
	return out
}
