// Package validation registers the custom binding rules used by request structs.
package validation

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	ufRegex   = regexp.MustCompile(`^[A-Za-z]{2}$`)
	hhmmRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// Register installs the custom rules on gin's validator and makes JSON
// binding reject unknown fields.
//
//	uf    two-letter state code ("SP")
//	hhmm  24h time of day ("09:30")
func Register() error {
	binding.EnableDecoderDisallowUnknownFields = true
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterOn(v)
}

// RegisterOn installs the custom rules on v.
func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("uf", func(fl validator.FieldLevel) bool {
		return ufRegex.MatchString(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register uf: %w", err)
	}
	if err := v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmRegex.MatchString(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register hhmm: %w", err)
	}
	return nil
}
