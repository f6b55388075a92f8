package feed

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"todayiwatched/internal/models"
)

// MaxTextLength is the longest recommendation text accepted.
const MaxTextLength = 250

// Submission 表单提交的三个字段
type Submission struct {
	Text     string `form:"text" json:"text" validate:"required,max=250"`
	Source   string `form:"source" json:"source" validate:"required,http_url"`
	Category string `form:"category" json:"category" validate:"required,category"`
}

// Normalize trims surrounding whitespace from every field.
func (s Submission) Normalize() Submission {
	return Submission{
		Text:     strings.TrimSpace(s.Text),
		Source:   strings.TrimSpace(s.Source),
		Category: strings.TrimSpace(s.Category),
	}
}

// ValidationError maps field names (text, source, category) to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid recommendation: " + strings.Join(parts, "; ")
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return strings.ToLower(f.Name)
			}
			return name
		})
		if err := v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return models.IsCategory(fl.Field().String())
		}); err != nil {
			panic(err)
		}
		validate = v
	})
	return validate
}

// Validate checks a normalized submission before anything is sent to the store.
func Validate(s Submission) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "text":
		if fe.Tag() == "max" {
			return fmt.Sprintf("Keep it to %d characters or fewer", MaxTextLength)
		}
		return "Share something about the film"
	case "source":
		return "Source must be a valid http or https link"
	case "category":
		if fe.Tag() == "category" {
			return "Unknown category"
		}
		return "Choose a category"
	}
	return fmt.Sprintf("failed on %s", fe.Tag())
}
