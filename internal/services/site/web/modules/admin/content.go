package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
	"github.com/louisbranch/agencysite/internal/services/site/domain/pages"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/form"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/pagerender"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
	"github.com/louisbranch/agencysite/internal/services/site/web/templates"
)

// Strings longer than this are edited in a textarea.
const inlineTextLimit = 80

func (h handlers) handleContentIndex(w http.ResponseWriter, r *http.Request) {
	loc, _ := pagerender.Localizer(w, r)
	table := templates.Table{
		Columns: []string{templates.T(loc, "admin.content.page"), templates.T(loc, "admin.content.key")},
	}
	for _, entry := range h.deps.Pages.Entries() {
		href := routepath.AdminContentFor(entry.Slug)
		table.Rows = append(table.Rows, templates.Row{
			Cells:   []templates.Cell{{Text: templates.T(loc, entry.TitleKey), Href: href}, {Text: entry.Doc.Key()}},
			Actions: []templates.Action{{Label: templates.T(loc, "action.edit"), Href: href}},
		})
	}
	h.page(w, r, http.StatusOK, templates.AdminView{
		Title:    templates.T(loc, "admin.nav.content"),
		Path:     routepath.AdminContent,
		Sections: []templ.Component{templates.TableView(table)},
	})
}

func (h handlers) contentEntry(w http.ResponseWriter, r *http.Request) (pages.Entry, bool) {
	entry, ok := h.deps.Pages.Entry(r.PathValue("page"))
	if !ok {
		h.handleNotFound(w, r)
	}
	return entry, ok
}

func (h handlers) handleContentEdit(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.contentEntry(w, r)
	if !ok {
		return
	}
	raw, err := entry.Doc.Raw(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.renderContent(w, r, http.StatusOK, entry, documentFields(raw, nil), nil)
}

func (h handlers) renderContent(w http.ResponseWriter, r *http.Request, status int, entry pages.Entry, fields []templates.Field, errs form.Errors) {
	loc, _ := pagerender.Localizer(w, r)
	f := templates.Form{
		Action: routepath.AdminContentFor(entry.Slug),
		Submit: templates.T(loc, "action.save"),
		Fields: fields,
		Errors: errs,
	}
	h.page(w, r, status, templates.AdminView{
		Title:    templates.T(loc, entry.TitleKey),
		Path:     routepath.AdminContent,
		Links:    []templates.Action{{Label: templates.T(loc, "action.back"), Href: routepath.AdminContent}},
		Sections: []templ.Component{templates.Heading(templates.T(loc, entry.TitleKey), templates.T(loc, "admin.content.intro")), templates.FormView(f)},
	})
}

func (h handlers) handleContentSave(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.contentEntry(w, r)
	if !ok {
		return
	}
	values, err := form.Parse(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	raw, err := entry.Doc.Raw(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	partial, err := buildPatch(raw, values)
	if err == nil {
		err = entry.Doc.PatchRaw(r.Context(), partial)
	}
	if err != nil {
		if errs, ok := form.FieldErrors(err, loc); ok {
			h.renderContent(w, r, http.StatusUnprocessableEntity, entry, documentFields(raw, &values), errs)
			return
		}
		if apperrors.IsKind(err, apperrors.KindInvalidInput) {
			h.renderContent(w, r, http.StatusUnprocessableEntity, entry, documentFields(raw, &values), form.Errors{"": form.Message(err, loc)})
			return
		}
		h.writeError(w, r, err)
		return
	}
	h.done(w, r, "flash.content_saved", routepath.AdminContentFor(entry.Slug))
}

// documentFields renders one form control per top-level field of raw. When
// submitted is set its values replace the stored ones.
func documentFields(raw []byte, submitted *form.Values) []templates.Field {
	var fields []templates.Field
	gjson.ParseBytes(raw).ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		field := templates.Field{Name: name, Label: name}
		switch value.Type {
		case gjson.String:
			field.Kind = templates.FieldText
			field.Value = value.String()
			if len(field.Value) > inlineTextLimit || strings.Contains(field.Value, "\n") {
				field.Kind = templates.FieldTextarea
				field.Rows = 4
			}
		case gjson.Number:
			field.Kind = templates.FieldNumber
			field.Value = value.Raw
		case gjson.True, gjson.False:
			field.Kind = templates.FieldCheckbox
			field.Checked = value.Bool()
		default:
			field.Kind = templates.FieldTextarea
			field.Rows = 10
			field.Value = indentJSON(value.Raw)
		}
		if submitted != nil {
			if field.Kind == templates.FieldCheckbox {
				field.Checked = submitted.Bool(name)
			} else {
				field.Value = submitted.Raw(name)
			}
		}
		fields = append(fields, field)
		return true
	})
	return fields
}

// buildPatch converts the submitted form into a JSON object holding every
// top-level field of raw, typed like the stored value.
func buildPatch(raw []byte, values form.Values) ([]byte, error) {
	partial := []byte("{}")
	var err error
	gjson.ParseBytes(raw).ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		path := escapePath(name)
		switch value.Type {
		case gjson.String:
			partial, err = sjson.SetBytes(partial, path, values.Raw(name))
		case gjson.Number:
			var number []byte
			if number, err = numberJSON(name, values.String(name)); err == nil {
				partial, err = sjson.SetRawBytes(partial, path, number)
			}
		case gjson.True, gjson.False:
			partial, err = sjson.SetBytes(partial, path, values.Bool(name))
		default:
			submitted := strings.TrimSpace(values.Raw(name))
			if !gjson.Valid(submitted) || gjson.Parse(submitted).IsArray() != value.IsArray() || gjson.Parse(submitted).IsObject() != value.IsObject() {
				err = apperrors.Field(apperrors.KindInvalidInput, name, "error.json_invalid", name+" is not valid JSON of the expected shape")
				return false
			}
			partial, err = sjson.SetRawBytes(partial, path, []byte(submitted))
		}
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return partial, nil
}

func numberJSON(name string, raw string) ([]byte, error) {
	if !gjson.Valid(raw) || gjson.Parse(raw).Type != gjson.Number {
		return nil, apperrors.Field(apperrors.KindInvalidInput, name, "error.number_invalid", name+" must be a number")
	}
	return []byte(raw), nil
}

func indentJSON(raw string) string {
	var out bytes.Buffer
	if err := json.Indent(&out, []byte(raw), "", "  "); err != nil {
		return raw
	}
	return out.String()
}

// escapePath quotes the sjson path metacharacters of a field name.
func escapePath(name string) string {
	var b strings.Builder
	for _, c := range name {
		switch c {
		case '.', '*', '?', '|', '#', '@', '\\', ':', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}
