// Package files stores admin uploads. Metadata and bytes live under separate
// keys written in one batch.
package files

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
	"github.com/louisbranch/agencysite/internal/platform/id"
	"github.com/louisbranch/agencysite/internal/services/site/content"
	"github.com/louisbranch/agencysite/internal/services/site/domain/validate"
	"github.com/louisbranch/agencysite/internal/services/site/storage"
)

const (
	// FilesCollection is the storage prefix of file metadata.
	FilesCollection = "files"
	// BlobPrefix is the storage prefix of file contents.
	BlobPrefix = "fileBlobs/"
	// MaxSize is the largest accepted upload.
	MaxSize = 10 << 20

	maxNameLength = 200
)

// File is the metadata of an upload.
type File struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Uploader    string    `json:"uploader"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Options configures the file store.
type Options struct {
	Clock func() time.Time
	NewID func() (string, error)
}

// Service implements uploads.
type Service struct {
	store storage.Store
	files *content.Collection[File]
	opts  Options
}

// New builds the file service on store.
func New(store storage.Store, logger *zap.Logger, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = id.NewID
	}
	return &Service{
		store: store,
		files: content.NewCollection(store, content.Config[File]{
			Name:       FilesCollection,
			Key:        func(f File) string { return f.ID },
			Dependents: func(key string) []string { return []string{BlobPrefix + key} },
		}, logger),
		opts: opts,
	}
}

// Load loads the file metadata.
func (s *Service) Load(ctx context.Context) error {
	return s.files.Load(ctx)
}

// UploadInput is one uploaded file.
type UploadInput struct {
	Name        string
	ContentType string
	Body        io.Reader
	Uploader    string
}

// Upload stores a file of at most MaxSize bytes.
func (s *Service) Upload(ctx context.Context, input UploadInput) (File, error) {
	name := cleanName(input.Name)
	if err := validate.First(
		validate.Required("file", name),
		validate.MaxLen("file", name, maxNameLength),
	); err != nil {
		return File{}, err
	}
	if input.Body == nil {
		return File{}, validate.Invalid("file", "error.file_empty", "file is empty")
	}
	data, err := io.ReadAll(io.LimitReader(input.Body, MaxSize+1))
	if err != nil {
		return File{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return File{}, validate.Invalid("file", "error.file_empty", "file is empty")
	}
	if len(data) > MaxSize {
		return File{}, validate.Invalid("file", "error.file_too_large", "file exceeds %d MiB", MaxSize>>20)
	}

	contentType := strings.TrimSpace(input.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	fileID, err := s.opts.NewID()
	if err != nil {
		return File{}, err
	}
	blob, err := json.Marshal(data)
	if err != nil {
		return File{}, fmt.Errorf("encode file: %w", err)
	}
	file := File{
		ID:          fileID,
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Uploader:    strings.TrimSpace(input.Uploader),
		CreatedAt:   s.opts.Clock().UTC(),
	}
	if err := s.files.Insert(ctx, file, storage.Create(BlobPrefix+fileID, blob)); err != nil {
		return File{}, err
	}
	return file, nil
}

// Open returns the metadata and contents of a file.
func (s *Service) Open(ctx context.Context, fileID string) (File, []byte, error) {
	file, err := s.files.Get(ctx, fileID)
	if err != nil {
		return File{}, nil, err
	}
	entry, err := s.store.Get(ctx, BlobPrefix+fileID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return File{}, nil, apperrors.Wrap(apperrors.KindNotFound, "file contents missing", err)
		}
		return File{}, nil, fmt.Errorf("read file %q: %w", fileID, err)
	}
	var data []byte
	if err := json.Unmarshal(entry.Value, &data); err != nil {
		return File{}, nil, fmt.Errorf("decode file %q: %w", fileID, err)
	}
	return file, data, nil
}

// List returns file metadata, newest first.
func (s *Service) List(ctx context.Context) ([]File, error) {
	files, err := s.files.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(files, func(a, b File) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return files, nil
}

// Count returns the number of stored files.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.files.Count(ctx)
}

// Delete removes files with their contents and returns how many existed.
func (s *Service) Delete(ctx context.Context, ids ...string) (int, error) {
	return s.files.Delete(ctx, ids...)
}

func cleanName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
