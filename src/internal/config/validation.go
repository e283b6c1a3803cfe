package config

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cdnsift/cdnsift/src/internal/output"
)

// getValidationMessage returns a human-readable message for a validation error
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must contain at least %s entry(s)", e.Param())
	case "url":
		return "must be a valid URL"
	case "dns_addr":
		return "must be a DNS server address in 'ip' or 'ip:port' form (IPv6 in square brackets, e.g., [::1]:53)"
	case "line_template":
		return fmt.Sprintf("may only reference the {{%s}} and {{%s}} variables", output.TemplateVarHost, output.TemplateVarPort)
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

// ValidationError represents a single validation error with context
type ValidationError struct {
	FieldPath string // YAML field path (e.g., "Providers[2]", "Resolver")
	Message   string // Human-readable error message
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("validation failed with %d error(s):\n", len(ve)))
	for i, err := range ve {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.FieldPath, err.Message))
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Register custom validators
	if err := validate.RegisterValidation("dns_addr", validateDNSAddr); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("line_template", validateLineTemplate); err != nil {
		panic(err)
	}

	// Register function to get field name from "yaml" tag
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateConfig validates the whole configuration and returns all validation
// errors at once rather than stopping at the first one.
func (c *Config) ValidateConfig() error {
	var validationErrors ValidationErrors

	if err := validate.Struct(c); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err)...)
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

// Custom validator: DNS server address, an IP with an optional port
func validateDNSAddr(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}

	if host, port, err := net.SplitHostPort(value); err == nil {
		return net.ParseIP(host) != nil && isValidPort(port)
	}

	// Without a port the address must be a bare IPv4; IPv6 needs square
	// brackets and a port to be unambiguous.
	ip := net.ParseIP(value)
	return ip != nil && ip.To4() != nil
}

// Custom validator: output line template with known variables only
func validateLineTemplate(fl validator.FieldLevel) bool {
	return output.ValidateFormat(fl.Field().String()) == nil
}

// isValidPort checks if the given string is a valid port number (1-65535)
func isValidPort(str string) bool {
	port, err := strconv.Atoi(str)
	return err == nil && port >= 1 && port <= 65535
}

// convertValidatorErrors converts go-playground/validator errors to our ValidationError format
func convertValidatorErrors(err error) ValidationErrors {
	var validationErrors ValidationErrors

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, e := range validatorErrs {
			// e.Field() returns the YAML tag name because of the
			// registered TagNameFunc; dive'd entries carry their index.
			validationErrors = append(validationErrors, ValidationError{
				FieldPath: e.Field(),
				Message:   getValidationMessage(e),
			})
		}
	}

	return validationErrors
}
