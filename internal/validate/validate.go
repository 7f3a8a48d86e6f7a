// Package validate implements the field-validation pipeline run against
// mutating request bodies. A pipeline executes every field validator
// regardless of earlier failures and reports the full batch of errors, so
// clients can re-render a form with every problem flagged at once.
package validate

import (
	"html"
	"regexp"
	"strings"
)

// FieldError describes a single failed constraint on a submitted field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Values holds the sanitized outputs of a successful validation, keyed by
// field name. Raw submitted values are not kept here; callers echo those
// back from the decoded body.
type Values map[string]any

// String returns the sanitized string value of a field.
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Bool returns the boolean value of a field.
func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// rule is one constraint in a string field's chain. It receives the value
// produced by the previous rule and whether the field was present in the
// body, and returns the possibly transformed value plus a failure message
// (empty on success). Rules always run, even after earlier failures.
type rule func(value string, present bool) (string, string)

type fieldValidator interface {
	validate(body map[string]any) (value any, errs []FieldError)
}

// Field validates a string body field through an ordered rule chain.
type Field struct {
	name  string
	rules []rule
}

// NewField starts a rule chain for the named string field.
func NewField(name string) *Field {
	return &Field{name: name}
}

// Trim strips leading and trailing whitespace before later rules run.
func (f *Field) Trim() *Field {
	f.rules = append(f.rules, func(value string, _ bool) (string, string) {
		return strings.TrimSpace(value), ""
	})
	return f
}

// Required fails with msg when the field is absent, not a string, or empty
// at this point in the chain.
func (f *Field) Required(msg string) *Field {
	f.rules = append(f.rules, func(value string, present bool) (string, string) {
		if !present || value == "" {
			return value, msg
		}
		return value, ""
	})
	return f
}

// MinLen fails with msg when the value is shorter than n characters.
func (f *Field) MinLen(n int, msg string) *Field {
	f.rules = append(f.rules, func(value string, _ bool) (string, string) {
		if len([]rune(value)) < n {
			return value, msg
		}
		return value, ""
	})
	return f
}

// MaxLen fails with msg when the value is longer than n characters.
func (f *Field) MaxLen(n int, msg string) *Field {
	f.rules = append(f.rules, func(value string, _ bool) (string, string) {
		if len([]rune(value)) > n {
			return value, msg
		}
		return value, ""
	})
	return f
}

// Matches fails with msg when the value does not match the pattern.
func (f *Field) Matches(pattern *regexp.Regexp, msg string) *Field {
	f.rules = append(f.rules, func(value string, _ bool) (string, string) {
		if !pattern.MatchString(value) {
			return value, msg
		}
		return value, ""
	})
	return f
}

// Escape HTML-escapes the value for later rules and the sanitized output.
func (f *Field) Escape() *Field {
	f.rules = append(f.rules, func(value string, _ bool) (string, string) {
		return html.EscapeString(value), ""
	})
	return f
}

func (f *Field) validate(body map[string]any) (any, []FieldError) {
	raw, ok := body[f.name]
	value, isString := raw.(string)
	present := ok && isString

	var errs []FieldError
	for _, r := range f.rules {
		next, msg := r(value, present)
		value = next
		if msg != "" {
			errs = append(errs, FieldError{Field: f.name, Message: msg})
		}
	}
	return value, errs
}

// BoolField validates a strictly boolean body field: it must be present and
// must be a JSON boolean, not a string or number.
type BoolField struct {
	name       string
	missingMsg string
	typeMsg    string
}

// NewBoolField declares a required strict-boolean field.
func NewBoolField(name, missingMsg, typeMsg string) *BoolField {
	return &BoolField{name: name, missingMsg: missingMsg, typeMsg: typeMsg}
}

func (f *BoolField) validate(body map[string]any) (any, []FieldError) {
	raw, present := body[f.name]
	if !present {
		return false, []FieldError{{Field: f.name, Message: f.missingMsg}}
	}
	value, isBool := raw.(bool)
	if !isBool {
		return false, []FieldError{{Field: f.name, Message: f.typeMsg}}
	}
	return value, nil
}

// Pipeline is an ordered sequence of field validators.
type Pipeline struct {
	fields []fieldValidator
}

// New builds a pipeline from the given field validators.
func New(fields ...fieldValidator) *Pipeline {
	return &Pipeline{fields: fields}
}

// Run executes every field validator against the decoded body and returns
// the sanitized values alongside the ordered batch of errors. A field's
// sanitized value is only extracted when all of its rules passed; an empty
// error batch means the payload is valid.
func (p *Pipeline) Run(body map[string]any) (Values, []FieldError) {
	values := Values{}
	var errs []FieldError
	for _, field := range p.fields {
		value, fieldErrs := field.validate(body)
		if len(fieldErrs) > 0 {
			errs = append(errs, fieldErrs...)
			continue
		}
		switch f := field.(type) {
		case *Field:
			values[f.name] = value
		case *BoolField:
			values[f.name] = value
		}
	}
	return values, errs
}
