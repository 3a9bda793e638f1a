package fabric

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/newtron-network/fabricgen/pkg/util"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report fields by their YAML key so errors match what the user wrote.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

var subnetKeys = map[string]bool{
	SpineLoopbackKey: true,
	LeafLoopbackKey:  true,
	VTEPLoopbackKey:  true,
	InterconnectKey:  true,
}

func validateStruct(cf *ConfigFile) error {
	if err := validate.Struct(cf); err != nil {
		return formatValidationError(err, cf)
	}
	return nil
}

// formatValidationError converts the first validator failure into the typed
// error callers branch on.
func formatValidationError(err error, cf *ConfigFile) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	e := verrs[0]
	field := e.Field()
	var reason string
	switch e.Tag() {
	case "required", "required_if":
		reason = "field is required"
	case "min":
		reason = fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		reason = fmt.Sprintf("must not exceed %s", e.Param())
	case "oneof":
		reason = fmt.Sprintf("must be one of [%s], got %q", e.Param(), e.Value())
	case "ipv4":
		reason = fmt.Sprintf("%q is not a valid IPv4 address", e.Value())
	default:
		reason = fmt.Sprintf("validation failed (%s)", e.Tag())
	}

	if subnetKeys[field] {
		return util.NewInvalidSubnetError(field, subnetValue(cf, field), "%s", reason)
	}
	return util.NewInvalidConfigError(field, "%s", reason)
}

func subnetValue(cf *ConfigFile, key string) string {
	switch key {
	case SpineLoopbackKey:
		return cf.SpineLoopbackSubnet
	case LeafLoopbackKey:
		return cf.LeafLoopbackSubnet
	case VTEPLoopbackKey:
		return cf.VTEPLoopbackSubnet
	default:
		return cf.InterconnectSubnet
	}
}
