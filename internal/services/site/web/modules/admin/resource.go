package admin

import (
	"context"
	"net/http"

	"github.com/a-h/templ"

	"github.com/louisbranch/agencysite/internal/services/site/domain/catalog"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/form"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/pagerender"
	"github.com/louisbranch/agencysite/internal/services/site/web/templates"
)

// resource describes one slug-keyed catalog collection edited through the
// generic list/new/edit/delete screens.
type resource[T any] struct {
	titleKey string
	newKey   string
	// flashPrefix is completed with ".created", ".updated" or ".deleted".
	flashPrefix string
	listPath    string
	newPath     string
	itemPath    func(slug string) string

	list   func(ctx context.Context, c *catalog.Catalog) ([]T, error)
	get    func(ctx context.Context, c *catalog.Catalog, slug string) (T, error)
	create func(ctx context.Context, c *catalog.Catalog, item T) (T, error)
	update func(ctx context.Context, c *catalog.Catalog, slug string, item T) (T, error)
	remove func(ctx context.Context, c *catalog.Catalog, slugs ...string) (int, error)

	slug    func(T) string
	columns []string
	cells   func(loc templates.Localizer, item T) []string
	fields  func(loc templates.Localizer, item T, creating bool) []templates.Field
	parse   func(values form.Values) (T, error)
}

func registerResource[T any](mux *http.ServeMux, h handlers, res resource[T], listPattern, newPattern, itemPattern, deletePattern string) {
	mux.HandleFunc(http.MethodGet+" "+listPattern, func(w http.ResponseWriter, r *http.Request) { res.handleList(h, w, r) })
	mux.HandleFunc(http.MethodGet+" "+newPattern, func(w http.ResponseWriter, r *http.Request) {
		var zero T
		res.render(h, w, r, http.StatusOK, "", zero, nil)
	})
	mux.HandleFunc(http.MethodPost+" "+listPattern, func(w http.ResponseWriter, r *http.Request) { res.handleSave(h, w, r, "") })
	mux.HandleFunc(http.MethodGet+" "+itemPattern, func(w http.ResponseWriter, r *http.Request) { res.handleEdit(h, w, r) })
	mux.HandleFunc(http.MethodPost+" "+itemPattern, func(w http.ResponseWriter, r *http.Request) { res.handleSave(h, w, r, r.PathValue("slug")) })
	mux.HandleFunc(http.MethodPost+" "+deletePattern, func(w http.ResponseWriter, r *http.Request) { res.handleDelete(h, w, r) })
}

func (res resource[T]) handleList(h handlers, w http.ResponseWriter, r *http.Request) {
	items, err := res.list(r.Context(), h.deps.Catalog)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	table := templates.Table{Empty: templates.T(loc, "admin.empty")}
	for _, key := range res.columns {
		table.Columns = append(table.Columns, templates.T(loc, key))
	}
	for _, item := range items {
		href := res.itemPath(res.slug(item))
		row := templates.Row{Actions: []templates.Action{
			{Label: templates.T(loc, "action.edit"), Href: href},
			{Label: templates.T(loc, "action.delete"), Href: href + "/delete", Post: true, Danger: true},
		}}
		for i, text := range res.cells(loc, item) {
			cell := templates.Cell{Text: text}
			if i == 0 {
				cell.Href = href
			}
			row.Cells = append(row.Cells, cell)
		}
		table.Rows = append(table.Rows, row)
	}
	h.page(w, r, http.StatusOK, templates.AdminView{
		Title:    templates.T(loc, res.titleKey),
		Path:     res.listPath,
		Links:    []templates.Action{{Label: templates.T(loc, res.newKey), Href: res.newPath}},
		Sections: []templ.Component{templates.TableView(table)},
	})
}

func (res resource[T]) handleEdit(h handlers, w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	item, err := res.get(r.Context(), h.deps.Catalog, slug)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res.render(h, w, r, http.StatusOK, slug, item, nil)
}

// render shows the create form when slug is empty, else the edit form.
func (res resource[T]) render(h handlers, w http.ResponseWriter, r *http.Request, status int, slug string, item T, errs form.Errors) {
	loc, _ := pagerender.Localizer(w, r)
	creating := slug == ""
	f := templates.Form{
		Action: res.listPath,
		Submit: templates.T(loc, "action.create"),
		Fields: res.fields(loc, item, creating),
		Errors: errs,
	}
	title := templates.T(loc, res.newKey)
	links := []templates.Action{{Label: templates.T(loc, "action.back"), Href: res.listPath}}
	if !creating {
		f.Action = res.itemPath(slug)
		f.Submit = templates.T(loc, "action.save")
		title = slug
		links = append(links, templates.Action{Label: templates.T(loc, "action.delete"), Href: f.Action + "/delete", Post: true, Danger: true})
	}
	h.page(w, r, status, templates.AdminView{
		Title:    title,
		Path:     res.listPath,
		Links:    links,
		Sections: []templ.Component{templates.FormView(f)},
	})
}

func (res resource[T]) handleSave(h handlers, w http.ResponseWriter, r *http.Request, slug string) {
	values, err := form.Parse(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	// parse returns what it could read even on error so the form can be
	// shown again.
	item, err := res.parse(values)
	saved := item
	if err == nil {
		if slug == "" {
			saved, err = res.create(r.Context(), h.deps.Catalog, item)
		} else {
			saved, err = res.update(r.Context(), h.deps.Catalog, slug, item)
		}
	}
	if err != nil {
		loc, _ := pagerender.Localizer(w, r)
		if errs, ok := form.FieldErrors(err, loc); ok {
			res.render(h, w, r, http.StatusUnprocessableEntity, slug, item, errs)
			return
		}
		h.writeError(w, r, err)
		return
	}
	key := res.flashPrefix + ".updated"
	if slug == "" {
		key = res.flashPrefix + ".created"
	}
	h.done(w, r, key, res.itemPath(res.slug(saved)))
}

func (res resource[T]) handleDelete(h handlers, w http.ResponseWriter, r *http.Request) {
	if _, err := res.remove(r.Context(), h.deps.Catalog, r.PathValue("slug")); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.done(w, r, res.flashPrefix+".deleted", res.listPath)
}
