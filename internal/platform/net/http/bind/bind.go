// Package bind decodes request bodies and validates them with go-playground/validator
package bind

import (
	"encoding/json"
	stderrs "errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "enscheck/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// DefaultMaxBytes caps a request body when the caller passes 0
const DefaultMaxBytes int64 = 1 << 20

var (
	once  sync.Once
	valid *validator.Validate
	trans ut.Translator
)

func setup() {
	once.Do(func() {
		loc := en.New()
		trans, _ = ut.New(loc, loc).GetTranslator("en")

		valid = validator.New(validator.WithRequiredStructEnabled())
		valid.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = en_translations.RegisterDefaultTranslations(valid, trans)

		short(valid, "min", "{0} must be at least {1}")
		short(valid, "max", "{0} must be at most {1}")
		short(valid, "gt", "{0} must be greater than {1}")
	})
}

// short replaces the stock translation of tag with a one line message
func short(v *validator.Validate, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// Validate checks v's validate tags. Failures are ErrorCodeValidation and name
// the first offending field
func Validate(v any) error {
	setup()
	err := valid.Struct(v)
	if err == nil {
		return nil
	}
	var fes validator.ValidationErrors
	if stderrs.As(err, &fes) && len(fes) > 0 {
		fe := fes[0]
		return perr.WithField(perr.New(perr.ErrorCodeValidation, fe.Translate(trans)), fe.Namespace())
	}
	return perr.Wrap(err, perr.ErrorCodeValidation, "validation")
}

// JSON decodes one JSON value of type T from the body and validates it.
// Unknown fields, trailing data and an empty body are JSON errors
func JSON[T any](r *http.Request, maxBytes int64) (T, error) {
	var out T
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	body := http.MaxBytesReader(nil, r.Body, maxBytes)
	defer func() { _ = body.Close() }()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case stderrs.Is(err, io.EOF):
			return out, perr.JSONErrf("empty body")
		case stderrs.As(err, &tooBig):
			return out, perr.JSONErrf("body exceeds %d bytes", tooBig.Limit)
		default:
			return out, perr.JSONErrf("invalid JSON: %v", err)
		}
	}
	if dec.More() {
		return out, perr.JSONErrf("unexpected trailing data")
	}
	return out, Validate(out)
}
