package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate

	domainMu        sync.RWMutex
	corporateDomain = "cresol.com.br"
)

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

func oneOf(values ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, allowed := range values {
			if v == allowed {
				return true
			}
		}
		return false
	}
}

func registerCustomValidations() {
	validate.RegisterValidation("role", oneOf("user", "sector_admin", "subsector_admin", "admin"))
	validate.RegisterValidation("upload_type", oneOf("youtube", "direct", ""))
	validate.RegisterValidation("item_type", oneOf("image", "video"))
	validate.RegisterValidation("collection_type", oneOf("images", "videos", "mixed", ""))
	validate.RegisterValidation("corporate_email", func(fl validator.FieldLevel) bool {
		return IsCorporateEmail(fl.Field().String())
	})
}

// SetCorporateDomain sets the e-mail domain accepted by corporate_email.
func SetCorporateDomain(domain string) {
	domainMu.Lock()
	defer domainMu.Unlock()
	corporateDomain = strings.ToLower(strings.TrimPrefix(domain, "@"))
}

// CorporateDomain returns the configured corporate e-mail domain.
func CorporateDomain() string {
	domainMu.RLock()
	defer domainMu.RUnlock()
	return corporateDomain
}

// IsCorporateEmail reports whether email belongs to the corporate domain.
func IsCorporateEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	return strings.HasSuffix(email, "@"+CorporateDomain())
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
		case "corporate_email":
			errors[field] = "Use um e-mail corporativo (@" + CorporateDomain() + ")"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "url":
			errors[field] = "Invalid URL format"
		case "role":
			errors[field] = "Invalid role. Must be: user, sector_admin, subsector_admin or admin"
		case "upload_type":
			errors[field] = "Invalid upload type. Must be: youtube or direct"
		case "item_type":
			errors[field] = "Invalid item type. Must be: image or video"
		case "collection_type":
			errors[field] = "Invalid collection type. Must be: images, videos or mixed"
		case "oneof":
			errors[field] = "Must be one of: " + err.Param()
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
