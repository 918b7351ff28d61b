package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/ammu0113/url-shortener/internal/domain"
	"github.com/go-playground/validator/v10"
)

const (
	AliasMinLength = 3
	AliasMaxLength = 32
)

var validate *validator.Validate

var aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Words that collide with fixed routes under /api/url.
var reservedKeywords = map[string]bool{
	"api":       true,
	"all":       true,
	"shorten":   true,
	"analytics": true,
	"toggle":    true,
}

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("alias", validateAlias)
}

func Validate(data interface{}) []domain.FieldError {
	var fieldErrors []domain.FieldError

	err := validate.Struct(data)
	if err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return []domain.FieldError{{Field: "body", Message: err.Error()}}
		}
		for _, err := range validationErrors {
			fieldErrors = append(fieldErrors, domain.FieldError{
				Field:   err.Field(),
				Message: getErrorMessage(err),
			})
		}
	}

	return fieldErrors
}

// ValidateAlias checks a caller-chosen alias. A nil result means the alias is acceptable.
func ValidateAlias(alias string) []domain.FieldError {
	tag := fmt.Sprintf("required,min=%d,max=%d,alias", AliasMinLength, AliasMaxLength)
	if err := validate.Var(alias, tag); err != nil {
		var fieldErrors []domain.FieldError
		for _, fe := range err.(validator.ValidationErrors) {
			fieldErrors = append(fieldErrors, domain.FieldError{
				Field:   "customAlias",
				Message: aliasMessage(fe),
			})
		}
		return fieldErrors
	}

	if IsReservedKeyword(alias) {
		return []domain.FieldError{{
			Field:   "customAlias",
			Message: fmt.Sprintf("customAlias %q is reserved", alias),
		}}
	}

	return nil
}

func validateAlias(fl validator.FieldLevel) bool {
	return aliasPattern.MatchString(fl.Field().String())
}

func IsReservedKeyword(alias string) bool {
	return reservedKeywords[strings.ToLower(alias)]
}

func aliasMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "customAlias must not be empty"
	case "alias":
		return "customAlias may only contain letters, digits, '-' and '_'"
	case "min":
		return fmt.Sprintf("customAlias must be at least %s characters", err.Param())
	case "max":
		return fmt.Sprintf("customAlias must be at most %s characters", err.Param())
	default:
		return "customAlias is invalid"
	}
}

func getErrorMessage(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid http(s) URL", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, err.Param())
	case "alias":
		return fmt.Sprintf("%s may only contain letters, digits, '-' and '_'", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, err.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
