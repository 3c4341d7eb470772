package templates

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

var (
	// custom validation tags & texts
	identTag   = "ident"
	identText  = "{0} may only contain letters, digits, '-', '_' and '.'"
	identRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)
)

// FieldError is a single failed rule, addressed by its YAML path
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError lists every authoring problem found in a template.
// It matches models.ErrInvalidTemplate with errors.Is.
type ValidationError struct {
	TemplateID string
	Fields     []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Error)
	}
	return fmt.Sprintf("%s %q: %s", models.ErrInvalidTemplate, e.TemplateID, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error { return models.ErrInvalidTemplate }

// Validator checks roadmap templates at authoring time
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// NewValidator instantiates the validator with English messages
func NewValidator() *Validator {
	locale := en.New()
	trans, _ := ut.New(locale, locale).GetTranslator("en")

	validate := validator.New()
	_ = en_translations.RegisterDefaultTranslations(validate, trans)

	// Report YAML keys instead of Go struct field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(identTag, identValidation)
	registerTranslation(validate, trans, identTag, identText)

	return &Validator{validate: validate, trans: trans}
}

// Validate runs the struct rules and the template-wide topic ID check
func (v *Validator) Validate(tmpl *models.RoadmapTemplate) error {
	if tmpl == nil {
		return fmt.Errorf("%w: template is nil", models.ErrInvalidTemplate)
	}

	var fields []FieldError
	if err := v.validate.Struct(tmpl); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", models.ErrInvalidTemplate, err)
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field: fieldPath(fe.Namespace()),
				Error: fe.Translate(v.trans),
			})
		}
	}

	fields = append(fields, duplicateTopics(tmpl)...)
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{TemplateID: tmpl.ID, Fields: fields}
}

// duplicateTopics reports topic IDs reused across phases. Overlay records are
// keyed by topic ID alone, so the ID must be unique in the whole template.
// Duplicates inside one phase are already caught by the unique rule.
func duplicateTopics(tmpl *models.RoadmapTemplate) []FieldError {
	var fields []FieldError
	seen := make(map[string]string)

	for i, phase := range tmpl.Phases {
		for j, topic := range phase.Topics {
			if topic.ID == "" {
				continue
			}
			owner, ok := seen[topic.ID]
			if !ok {
				seen[topic.ID] = phase.ID
				continue
			}
			if owner == phase.ID {
				continue
			}
			fields = append(fields, FieldError{
				Field: fmt.Sprintf("phases[%d].topics[%d].id", i, j),
				Error: fmt.Sprintf("topic id %q is already used in phase %q", topic.ID, owner),
			})
		}
	}
	return fields
}

// fieldPath drops the root struct name from a validator namespace
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func registerTranslation(validate *validator.Validate, trans ut.Translator, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func identValidation(fl validator.FieldLevel) bool {
	return identRegex.MatchString(fl.Field().String())
}
