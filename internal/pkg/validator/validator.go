package validator

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslation "github.com/go-playground/validator/v10/translations/en"

	"github.com/owi-lab/go-metadatabase/internal/pkg/utils/errors"
)

type Validator interface {
	Validate(ctx context.Context, value any) error
	ValidateValue(value any, tag string) error
	ValidateCtx(ctx context.Context, value any, tag string, namespace string) error
}

// Rule is a custom validation, ErrorMsgFunc is optional.
type Rule struct {
	Tag          string
	Func         validator.Func
	ErrorMsgFunc ErrorMsgFunc
}

type ErrorMsgFunc func(fe validator.FieldError) string

type wrapper struct {
	validate   *validator.Validate
	translator ut.Translator
	errorMsgs  map[string]ErrorMsgFunc
}

func New(rules ...Rule) Validator {
	validate := validator.New()

	// Register default EN translator
	enLocale := en.New()
	translator, found := ut.New(enLocale, enLocale).GetTranslator("en")
	if !found {
		panic(errors.New("en translator was not found"))
	}
	if err := enTranslation.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(errors.Errorf("translator was not registered: %w", err))
	}

	// Register custom rules
	errorMsgs := make(map[string]ErrorMsgFunc)
	for _, rule := range rules {
		if err := validate.RegisterValidation(rule.Tag, rule.Func); err != nil {
			panic(err)
		}
		if rule.ErrorMsgFunc != nil {
			errorMsgs[rule.Tag] = rule.ErrorMsgFunc
		}
	}

	// Use JSON field name in error messages,
	// mark anonymous fields, so they can be removed from the error namespace.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if fld.Anonymous {
			return "__nested__"
		}
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &wrapper{validate: validate, translator: translator, errorMsgs: errorMsgs}
}

func (v *wrapper) Validate(ctx context.Context, value any) error {
	return v.ValidateCtx(ctx, value, "dive", "")
}

func (v *wrapper) ValidateValue(value any, tag string) error {
	return v.ValidateCtx(context.Background(), value, tag, "")
}

func (v *wrapper) ValidateCtx(ctx context.Context, value any, tag string, namespace string) error {
	// Structs are validated by fields, other values by the tag.
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}

	var err error
	stripRoot := false
	if rv.Kind() == reflect.Struct {
		stripRoot = true
		err = v.validate.StructCtx(ctx, value)
	} else {
		err = v.validate.VarCtx(ctx, value, tag)
	}

	if err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.processError(validationErrs, namespace, stripRoot)
		}
		panic(err)
	}

	return nil
}

func (v *wrapper) processError(err validator.ValidationErrors, namespace string, stripRoot bool) error {
	result := errors.NewMultiError()
	for _, e := range err {
		var msg string
		if fn, found := v.errorMsgs[e.Tag()]; found {
			msg = fn(e)
		} else {
			msg = e.Translate(v.translator)
		}

		// The translated message starts with the field name, the namespace replaces it.
		msg = strings.TrimSpace(strings.TrimPrefix(msg, e.Field()))
		ns := joinNamespace(namespace, processNamespace(e.Namespace(), stripRoot))
		if ns == "" {
			result.Append(errors.New(msg))
		} else {
			result.Append(errors.Errorf(`"%s" %s`, ns, msg))
		}
	}

	return result.ErrorOrNil()
}

// processNamespace removes the root struct name and anonymous field parts.
func processNamespace(namespace string, stripRoot bool) string {
	namespace = strings.ReplaceAll(namespace, `__nested__.`, ``)
	if stripRoot {
		if idx := strings.Index(namespace, "."); idx >= 0 {
			namespace = namespace[idx+1:]
		} else {
			namespace = ""
		}
	}
	return namespace
}

func joinNamespace(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ".")
}
