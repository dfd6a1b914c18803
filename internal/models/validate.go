package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	RegisterTypes(v)
	return v
}

// RegisterTypes teaches a validator about the types used in this package.
// Decimals are compared as floats and fields are reported by their JSON names.
// The API registers the same rules on gin's validator so client and server
// reject the same payloads with the same messages.
func RegisterTypes(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// FieldError describes one rule a field failed
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
	kind  reflect.Kind
}

func (f FieldError) message() string {
	switch f.Rule {
	case "required":
		return fmt.Sprintf("%s is required", f.Field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", f.Field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", f.Field, f.Param)
	case "min":
		if f.kind == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", f.Field, f.Param)
		}
		return fmt.Sprintf("%s must be at least %s", f.Field, f.Param)
	case "max":
		if f.kind == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", f.Field, f.Param)
		}
		return fmt.Sprintf("%s must be at most %s", f.Field, f.Param)
	default:
		return fmt.Sprintf("%s failed %s validation", f.Field, f.Rule)
	}
}

// ValidationError is returned when a record is missing required fields or
// carries out-of-range values. It is detected before anything is persisted
// or sent over the network.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.message())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks a record against its binding rules.
// It returns nil or a *ValidationError.
func Validate(record interface{}) error {
	return AsValidationError(validate.Struct(record))
}

// AsValidationError converts validator failures into a *ValidationError.
// Other errors are returned unchanged.
func AsValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		out.Fields = append(out.Fields, FieldError{
			Field: field,
			Rule:  fe.Tag(),
			Param: fe.Param(),
			kind:  fe.Kind(),
		})
	}
	return out
}
