package intake

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sells-group/smart-intake/internal/model"
)

// ErrValidation marks request validation failures. Callers map it to a
// client error.
var ErrValidation = errors.New("intake: invalid request")

// Request is the input to Generate.
type Request struct {
	IntelligenceID string          `json:"intelligenceId" validate:"required"`
	Industry       model.Industry  `json:"industry" validate:"required,industry"`
	DataScore      model.DataScore `json:"dataScore"`
	MissingData    []string        `json:"missingData,omitempty"`
}

// Response is the output of Generate. SuppressionInfo is nil when the
// enhanced path did not run or nothing was suppressed.
type Response struct {
	Success         bool                   `json:"success"`
	Questions       []model.SmartQuestion  `json:"questions"`
	TotalQuestions  int                    `json:"totalQuestions"`
	SuppressionInfo *model.SuppressionInfo `json:"suppressionInfo"`
	Error           string                 `json:"error,omitempty"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(e.Fields, "; "))
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("industry", func(fl validator.FieldLevel) bool {
		return model.Industry(fl.Field().String()).Valid()
	})
	return v
}

func validateRequest(v *validator.Validate, req Request) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: []string{err.Error()}}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, describe(fe))
	}
	return &ValidationError{Fields: fields}
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Request.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "industry":
		return fmt.Sprintf("%s %q is not a supported industry", field, fe.Value())
	case "gte", "lte":
		return fmt.Sprintf("%s must be between 0 and 100", field)
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
