package validators

import (
	"reflect"
	"slices"

	"github.com/go-playground/validator/v10"
)

// KeySizeValidation validates a size field against the "Algorithm" field of the same struct.
// supports decides which sizes are valid for which algorithm.
func KeySizeValidation(supports func(algorithm string, bits int) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		algorithmField := fl.Parent().FieldByName("Algorithm")
		if !algorithmField.IsValid() || algorithmField.Kind() != reflect.String {
			return false
		}

		var keySize int
		switch fl.Field().Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			keySize = int(fl.Field().Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			keySize = int(fl.Field().Uint())
		default:
			return false
		}

		return supports(algorithmField.String(), keySize)
	}
}

// EnumValidation accepts only the listed string values.
func EnumValidation(values ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		return slices.Contains(values, fl.Field().String())
	}
}

// Register registers each tag/func pair on v.
func Register(v *validator.Validate, validations map[string]validator.Func) error {
	for tag, fn := range validations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
