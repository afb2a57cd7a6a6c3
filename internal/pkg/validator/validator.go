package validator

import (
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

// Roles accepted by the role tag.
var Roles = []string{"guest", "host", "admin"}

const minPasswordLength = 8

func registerCustomValidations() {
	// Password: at least 8 characters with a letter and a digit
	validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return ValidPassword(fl.Field().String())
	})

	validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		role := fl.Field().String()
		for _, r := range Roles {
			if role == r {
				return true
			}
		}
		return false
	})

	// Listing kind
	validate.RegisterValidation("listing_kind", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "home", "experience":
			return true
		}
		return false
	})
}

// ValidPassword reports whether p satisfies the password policy.
func ValidPassword(p string) bool {
	if len([]rune(p)) < minPasswordLength {
		return false
	}
	var letter, digit bool
	for _, r := range p {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

// Error carries per-field messages keyed by JSON field name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Check validates s and returns *Error when any rule fails.
func Check(s interface{}) error {
	if fields := Validate(s); len(fields) > 0 {
		return &Error{Fields: fields}
	}
	return nil
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errors := make(map[string]string)
	for _, err := range verrs {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "gtfield":
			errors[field] = "Value must be after " + err.Param()
		case "gtefield":
			errors[field] = "Value must not be less than " + err.Param()
		case "url":
			errors[field] = "Invalid URL format"
		case "uuid":
			errors[field] = "Invalid identifier"
		case "eqfield":
			errors[field] = "Does not match " + err.Param()
		case "password":
			errors[field] = "Password must be at least 8 characters and contain a letter and a digit"
		case "role":
			errors[field] = "Invalid role. Must be: " + strings.Join(Roles, ", ")
		case "listing_kind":
			errors[field] = "Invalid listing kind. Must be: home or experience"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
