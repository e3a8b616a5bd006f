package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
	"github.com/louisbranch/agencysite/internal/services/site/domain/files"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/form"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/pagerender"
	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
	"github.com/louisbranch/agencysite/internal/services/site/web/templates"
)

// uploadOverhead leaves room for the multipart framing around the file.
const uploadOverhead = 1 << 20

var errNoFile = apperrors.Field(apperrors.KindInvalidInput, "file", "error.file_empty", "no file uploaded")

func (h handlers) handleFiles(w http.ResponseWriter, r *http.Request) {
	h.renderFiles(w, r, http.StatusOK, nil)
}

func (h handlers) renderFiles(w http.ResponseWriter, r *http.Request, status int, errs form.Errors) {
	list, err := h.deps.Files.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	loc, _ := pagerender.Localizer(w, r)
	table := templates.Table{
		Columns: []string{
			templates.T(loc, "field.name"),
			templates.T(loc, "admin.files.type"),
			templates.T(loc, "admin.files.size"),
			templates.T(loc, "admin.files.uploader"),
			templates.T(loc, "field.created"),
		},
		Empty: templates.T(loc, "admin.empty"),
	}
	for _, file := range list {
		table.Rows = append(table.Rows, templates.Row{
			Cells: []templates.Cell{
				{Text: file.Name, Href: routepath.File(file.ID)},
				{Text: file.ContentType},
				{Text: humanSize(file.Size)},
				{Text: file.Uploader},
				{Text: file.CreatedAt.Format(timeLayout)},
			},
			Actions: []templates.Action{
				{Label: templates.T(loc, "action.delete"), Href: routepath.AdminFileDeleteFor(file.ID), Post: true, Danger: true},
			},
		})
	}
	upload := templates.Form{
		Action:    routepath.AdminFiles,
		Submit:    templates.T(loc, "admin.files.upload"),
		Multipart: true,
		Errors:    errs,
		Fields: []templates.Field{
			{Name: "file", Label: templates.T(loc, "admin.files.file"), Kind: templates.FieldFile, Required: true, Hint: templates.T(loc, "admin.files.limit", files.MaxSize>>20)},
		},
	}
	h.page(w, r, status, templates.AdminView{
		Title:    templates.T(loc, "admin.nav.files"),
		Path:     routepath.AdminFiles,
		Sections: []templ.Component{templates.FormView(upload), templates.TableView(table)},
	})
}

func (h handlers) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, files.MaxSize+uploadOverhead)
	loc, _ := pagerender.Localizer(w, r)
	if _, err := form.Parse(r); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.renderFiles(w, r, http.StatusRequestEntityTooLarge, form.Errors{"file": templates.T(loc, "error.file_too_large")})
			return
		}
		h.writeError(w, r, err)
		return
	}
	upload, header, err := r.FormFile("file")
	if err != nil {
		errs, _ := form.FieldErrors(errNoFile, loc)
		h.renderFiles(w, r, http.StatusUnprocessableEntity, errs)
		return
	}
	defer upload.Close()

	uploader := ""
	if user, ok := h.deps.User(r); ok {
		uploader = user.Email
	}
	_, err = h.deps.Files.Upload(r.Context(), files.UploadInput{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        upload,
		Uploader:    uploader,
	})
	if err != nil {
		if errs, ok := form.FieldErrors(err, loc); ok {
			h.renderFiles(w, r, http.StatusUnprocessableEntity, errs)
			return
		}
		h.writeError(w, r, err)
		return
	}
	h.done(w, r, "flash.file_uploaded", routepath.AdminFiles)
}

func (h handlers) handleFileDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.deps.Files.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.done(w, r, "flash.file_deleted", routepath.AdminFiles)
}

func humanSize(size int64) string {
	switch {
	case size >= 1<<20:
		return strconv.FormatFloat(float64(size)/(1<<20), 'f', 1, 64) + " MiB"
	case size >= 1<<10:
		return strconv.FormatFloat(float64(size)/(1<<10), 'f', 1, 64) + " KiB"
	}
	return strconv.FormatInt(size, 10) + " B"
}
