package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field errors are reported under their JSON names.
func NewValidator() *echoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	return &echoValidator{v: v}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make([]domain.FieldError, 0, len(ve))
			for _, fe := range ve {
				fields = append(fields, domain.FieldError{Field: fe.Field(), Message: fieldError(fe)})
			}
			return domain.NewValidationError(fields...)
		}
		return err
	}
	return nil
}

// fieldError converts a single validator.FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s character(s)", field, fe.Param())
	case "datetime":
		return field + " must be an RFC 3339 timestamp"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

var errInvalidBody = domain.NewValidationError(domain.FieldError{Field: "body", Message: "request body must be valid JSON"})

// bindAndValidate decodes the JSON body into req and validates it. Decoding
// failures come back as *domain.ValidationError so the client sees which
// fields had the wrong type alongside the ones that failed validation.
func bindAndValidate(c echo.Context, req any) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return errInvalidBody
	}
	c.Request().Body = io.NopCloser(bytes.NewReader(body))

	if err := c.Bind(req); err != nil {
		var ute *json.UnmarshalTypeError
		if !errors.As(err, &ute) {
			return errInvalidBody
		}
		if ute.Field == "" {
			return domain.NewValidationError(domain.FieldError{
				Field:   "body",
				Message: "body must be of type " + jsonKind(ute.Type),
			})
		}
		return bindFields(c, body, req)
	}
	return c.Validate(req)
}

// bindFields decodes body into req one field at a time, leaving mistyped
// fields unset, then validates the rest. Type errors come first, in field
// order, followed by validation errors on the remaining fields.
func bindFields(c echo.Context, body []byte, req any) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return errInvalidBody
	}

	v := reflect.ValueOf(req).Elem()
	v.SetZero()
	t := v.Type()

	var fields []domain.FieldError
	mistyped := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name := jsonName(sf)
		if name == "" {
			continue
		}
		msg, ok := lookupKey(raw, name)
		if !ok {
			continue
		}
		if err := json.Unmarshal(msg, v.Field(i).Addr().Interface()); err != nil {
			mistyped[name] = true
			fields = append(fields, domain.FieldError{
				Field:   name,
				Message: fmt.Sprintf("%s must be of type %s", name, jsonKind(sf.Type)),
			})
		}
	}

	if err := c.Validate(req); err != nil {
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		for _, f := range ve.Fields {
			if !mistyped[f.Field] {
				fields = append(fields, f)
			}
		}
	}
	return domain.NewValidationError(fields...)
}

// lookupKey matches keys the way encoding/json does, preferring an exact
// match over a case-insensitive one.
func lookupKey(raw map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if msg, ok := raw[name]; ok {
		return msg, true
	}
	for k, msg := range raw {
		if strings.EqualFold(k, name) {
			return msg, true
		}
	}
	return nil, false
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}
