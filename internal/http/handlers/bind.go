package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

const msgMissingFields = "missing fields"

var registerValidators sync.Once

// BindBody decodes a JSON or urlencoded form body into out, picking the
// decoder from Content-Type. On failure it writes the 400 and returns false.
func BindBody(ctx *gin.Context, out interface{}) bool {
	registerValidators.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("notblank", validators.NotBlank)
		}
	})

	err := ctx.ShouldBind(out)

	if err != nil {
		msg, fields := parseBindError(err, out)
		RespondBadRequest(ctx, msg, fields)

		return false
	}

	return true
}

func parseBindError(err error, out interface{}) (string, []FieldError) {
	rootType := baseStructType(out)

	// validator errors (struct bind tags)

	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		fields := make([]FieldError, 0, len(validatorError))

		for _, fieldError := range validatorError {
			field := jsonPathFromValidatorError(rootType, fieldError)
			rule := fieldError.Tag()
			param := fieldError.Param()

			fields = append(fields, FieldError{
				Field:   field,
				Rule:    rule,
				Param:   param,
				Message: validationMessage(rule, param),
			})
		}
		return msgMissingFields, fields
	}

	// in the event of bad json

	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) {
		return "invalid JSON body", nil
	}

	// in the event of a type mismatch

	var unmatchedTypeError *json.UnmarshalTypeError

	if errors.As(err, &unmatchedTypeError) {
		field := jsonPathFromDotPath(rootType, unmatchedTypeError.Field)

		if field == "" {
			field = strings.TrimSpace(unmatchedTypeError.Field)
		}

		return "invalid request body", []FieldError{
			{
				Field:   field,
				Rule:    "type",
				Message: fmt.Sprintf("must be of type %s", unmatchedTypeError.Type.String()),
			},
		}
	}

	// empty or truncated JSON bodies, malformed forms
	return "invalid request body", nil
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

// jsonPathFromValidatorError reports the wire name of the failing field.
// Request structs here are flat, so the struct field maps to one name.
func jsonPathFromValidatorError(rootType reflect.Type, fieldError validator.FieldError) string {
	return wireName(rootType, fieldError.StructField())
}

func jsonPathFromDotPath(rootType reflect.Type, dotPath string) string {
	dotPath = strings.TrimSpace(dotPath)
	if dotPath == "" {
		return ""
	}

	if rootType != nil {
		for i := 0; i < rootType.NumField(); i++ {
			sf := rootType.Field(i)
			if sf.Name == dotPath || jsonNameFromStructField(sf) == dotPath {
				return jsonNameFromStructField(sf)
			}
		}
	}

	return dotPath
}

func wireName(rootType reflect.Type, structField string) string {
	if rootType != nil {
		if sf, ok := rootType.FieldByName(structField); ok {
			return jsonNameFromStructField(sf)
		}
	}
	return strings.ToLower(structField)
}

func jsonNameFromStructField(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" {
		return sf.Name
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return sf.Name
	}

	return name
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required", "notblank":
		return "is required"
	case "max":
		return "must be at most " + param + " characters"
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
