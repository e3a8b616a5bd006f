package templates

import (
	"context"
	"strconv"

	"github.com/a-h/templ"
)

// FieldKind selects the input control of a form field.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldEmail    FieldKind = "email"
	FieldPassword FieldKind = "password"
	FieldNumber   FieldKind = "number"
	FieldURL      FieldKind = "url"
	FieldTextarea FieldKind = "textarea"
	FieldCheckbox FieldKind = "checkbox"
	FieldSelect   FieldKind = "select"
	FieldFile     FieldKind = "file"
	FieldHidden   FieldKind = "hidden"
)

// Option is one select choice.
type Option struct {
	Value string
	Label string
}

// Field is one labelled form control.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Value    string
	Checked  bool
	Required bool
	Multiple bool
	Rows     int
	Hint     string
	Options  []Option
	// Values are the selected options of a multiple select.
	Values []string
}

// Form is a posted form. Errors maps field names to messages and "" to a
// form-level message.
type Form struct {
	Action    string
	Submit    string
	Fields    []Field
	Errors    map[string]string
	Multipart bool
}

// FormView renders f.
func FormView(f Form) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		writeForm(h, f)
	})
}

func writeForm(h *htmlWriter, f Form) {
	attrs := []string{"method", "post", "action", f.Action, "class", "form"}
	if f.Multipart {
		attrs = append(attrs, "enctype", "multipart/form-data")
	}
	h.open("form", attrs...)
	if message := f.Errors[""]; message != "" {
		h.elem("p", message, "class", "form-error", "role", "alert")
	}
	for _, field := range f.Fields {
		writeField(h, field, f.Errors[field.Name])
	}
	h.elem("button", f.Submit, "type", "submit")
	h.close("form")
}

func writeField(h *htmlWriter, field Field, message string) {
	if field.Kind == FieldHidden {
		h.open("input", "type", "hidden", "name", field.Name, "value", field.Value)
		return
	}
	id := "field-" + field.Name
	class := "field"
	if message != "" {
		class += " field-invalid"
	}
	h.open("div", "class", class)
	if field.Kind == FieldCheckbox {
		h.open("label", "for", id)
		attrs := []string{"type", "checkbox", "id", id, "name", field.Name, "value", "on"}
		if field.Checked {
			attrs = append(attrs, "checked", "")
		}
		h.open("input", attrs...)
		h.text(" " + field.Label)
		h.close("label")
	} else {
		h.elem("label", field.Label, "for", id)
		writeControl(h, field, id)
	}
	if field.Hint != "" {
		h.elem("small", field.Hint, "class", "hint")
	}
	if message != "" {
		h.elem("p", message, "class", "field-error", "role", "alert")
	}
	h.close("div")
}

func writeControl(h *htmlWriter, field Field, id string) {
	common := []string{"id", id, "name", field.Name}
	if field.Required {
		common = append(common, "required", "")
	}
	switch field.Kind {
	case FieldTextarea:
		rows := field.Rows
		if rows <= 0 {
			rows = 4
		}
		h.open("textarea", append(common, "rows", strconv.Itoa(rows))...)
		h.text(field.Value)
		h.close("textarea")
	case FieldSelect:
		attrs := common
		if field.Multiple {
			attrs = append(attrs, "multiple", "")
		}
		h.open("select", attrs...)
		for _, option := range field.Options {
			optionAttrs := []string{"value", option.Value}
			if option.Value == field.Value || contains(field.Values, option.Value) {
				optionAttrs = append(optionAttrs, "selected", "")
			}
			h.elem("option", option.Label, optionAttrs...)
		}
		h.close("select")
	case FieldFile:
		h.open("input", append(common, "type", "file")...)
	case FieldPassword:
		h.open("input", append(common, "type", "password", "autocomplete", "off")...)
	default:
		kind := field.Kind
		if kind == "" {
			kind = FieldText
		}
		attrs := append(common, "type", string(kind), "value", field.Value)
		if kind == FieldNumber {
			attrs = append(attrs, "step", "any")
		}
		h.open("input", attrs...)
	}
}

func contains(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}

// ActionButton renders a one-button POST form.
func ActionButton(action string, label string, danger bool) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		writeActionButton(h, action, label, danger)
	})
}

func writeActionButton(h *htmlWriter, action string, label string, danger bool) {
	h.open("form", "method", "post", "action", action, "class", "inline")
	class := "button"
	if danger {
		class += " button-danger"
	}
	h.elem("button", label, "type", "submit", "class", class)
	h.close("form")
}

// Cell is one table cell, linked when Href is set.
type Cell struct {
	Text string
	Href string
}

// Action is a row action. Post actions render as buttons.
type Action struct {
	Label  string
	Href   string
	Post   bool
	Danger bool
}

// Row is one table row.
type Row struct {
	Cells   []Cell
	Actions []Action
}

// Table is a data table with an empty-state message.
type Table struct {
	Columns []string
	Rows    []Row
	Empty   string
}

// TableView renders t.
func TableView(t Table) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		if len(t.Rows) == 0 {
			h.elem("p", t.Empty, "class", "empty")
			return
		}
		h.open("table", "class", "table")
		h.open("thead")
		h.open("tr")
		for _, column := range t.Columns {
			h.elem("th", column, "scope", "col")
		}
		if hasActions(t.Rows) {
			h.raw("<th></th>")
		}
		h.close("tr")
		h.close("thead")
		h.open("tbody")
		for _, row := range t.Rows {
			h.open("tr")
			for _, cell := range row.Cells {
				h.open("td")
				if cell.Href != "" {
					h.elem("a", cell.Text, "href", cell.Href)
				} else {
					h.text(cell.Text)
				}
				h.close("td")
			}
			if len(row.Actions) > 0 {
				h.open("td", "class", "actions")
				for _, action := range row.Actions {
					if action.Post {
						writeActionButton(h, action.Href, action.Label, action.Danger)
					} else {
						h.elem("a", action.Label, "href", action.Href, "class", "button")
					}
				}
				h.close("td")
			}
			h.close("tr")
		}
		h.close("tbody")
		h.close("table")
	})
}

func hasActions(rows []Row) bool {
	for _, row := range rows {
		if len(row.Actions) > 0 {
			return true
		}
	}
	return false
}
