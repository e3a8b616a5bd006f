// Package form maps posted values onto domain inputs and domain errors back
// onto inline field messages.
package form

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
	"github.com/louisbranch/agencysite/internal/services/site/domain/inquiries"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/webi18n"
)

// MaxMemory bounds in-memory multipart parsing.
const MaxMemory = 12 << 20

// Errors maps field names to rendered messages. The "" field holds a
// form-level message.
type Errors map[string]string

// Has reports whether field has an error.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Values wraps parsed form values.
type Values struct {
	r *http.Request
}

// Parse parses the request body. Multipart bodies are parsed when present.
func Parse(r *http.Request) (Values, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(MaxMemory); err != nil {
			return Values{}, apperrors.Wrap(apperrors.KindInvalidInput, "parse multipart form", err)
		}
		return Values{r: r}, nil
	}
	if err := r.ParseForm(); err != nil {
		return Values{}, apperrors.Wrap(apperrors.KindInvalidInput, "parse form", err)
	}
	return Values{r: r}, nil
}

// String returns the trimmed value of name.
func (v Values) String(name string) string {
	return strings.TrimSpace(v.r.PostFormValue(name))
}

// Raw returns the untrimmed value of name.
func (v Values) Raw(name string) string {
	return v.r.PostFormValue(name)
}

// All returns every trimmed, non-empty value of name.
func (v Values) All(name string) []string {
	var out []string
	for _, value := range v.r.PostForm[name] {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}

// Bool reports whether a checkbox named name was checked.
func (v Values) Bool(name string) bool {
	switch strings.ToLower(v.String(name)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}

// Int parses name as an integer. Blank values are zero.
func (v Values) Int(name string) (int, error) {
	raw := v.String(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Field(apperrors.KindInvalidInput, name, "error.number_invalid", name+" must be a whole number")
	}
	return n, nil
}

// Cents parses a decimal money amount into cents. Blank values are zero.
func (v Values) Cents(name string) (int64, error) {
	raw := v.String(name)
	if raw == "" {
		return 0, nil
	}
	cents, err := inquiries.ParseAmount(raw)
	if err != nil {
		return 0, apperrors.Field(apperrors.KindInvalidInput, name, apperrors.LocalizationKey(err), name+" must be a positive amount")
	}
	return cents, nil
}

// Lines splits a textarea into trimmed non-empty lines.
func (v Values) Lines(name string) []string {
	var out []string
	for _, line := range strings.Split(v.Raw(name), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// FieldErrors converts a field-scoped invalid-input or conflict error into
// inline messages. ok is false for any other error.
func FieldErrors(err error, loc webi18n.Localizer) (Errors, bool) {
	field := apperrors.FieldOf(err)
	if field == "" {
		return nil, false
	}
	switch apperrors.KindOf(err) {
	case apperrors.KindInvalidInput, apperrors.KindConflict:
	default:
		return nil, false
	}
	return Errors{field: Message(err, loc)}, true
}

// Message renders err through its localization key, falling back to the
// error text.
func Message(err error, loc webi18n.Localizer) string {
	if key := apperrors.LocalizationKey(err); key != "" {
		if text := webi18n.T(loc, key); text != "" && text != key {
			return text
		}
	}
	return err.Error()
}
