package files

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
	"github.com/louisbranch/agencysite/internal/services/site/storage"
	"github.com/louisbranch/agencysite/internal/services/site/storage/memory"
)

func newTestService(t *testing.T) (*Service, storage.Store) {
	t.Helper()
	store := memory.New(nil)
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	next := 0
	svc := New(store, nil, Options{
		Clock: func() time.Time {
			now = now.Add(time.Second)
			return now
		},
		NewID: func() (string, error) {
			next++
			return fmt.Sprintf("f%d", next), nil
		},
	})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return svc, store
}

func TestUploadOpenDelete(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	ctx := context.Background()

	file, err := svc.Upload(ctx, UploadInput{
		Name:     `C:\Users\me\logo.png`,
		Body:     bytes.NewReader([]byte("\x89PNG\r\n\x1a\n rest")),
		Uploader: "admin@agency.test",
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if file.Name != "logo.png" || file.ContentType != "image/png" || file.Size != 13 {
		t.Fatalf("file = %+v", file)
	}

	got, data, err := svc.Open(ctx, file.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got != file || string(data) != "\x89PNG\r\n\x1a\n rest" {
		t.Fatalf("open = %+v %q", got, data)
	}

	if _, err := svc.Upload(ctx, UploadInput{Name: "notes.txt", ContentType: "text/plain", Body: strings.NewReader("hi")}); err != nil {
		t.Fatalf("second upload: %v", err)
	}
	list, err := svc.List(ctx)
	if err != nil || len(list) != 2 || list[0].Name != "notes.txt" {
		t.Fatalf("list = %+v, %v", list, err)
	}

	removed, err := svc.Delete(ctx, file.ID)
	if err != nil || removed != 1 {
		t.Fatalf("delete = %d, %v", removed, err)
	}
	if _, _, err := svc.Open(ctx, file.ID); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("open after delete err = %v", err)
	}
	if _, err := store.Get(ctx, BlobPrefix+file.ID); err == nil {
		t.Fatal("blob survived delete")
	}
}

func TestUploadRejections(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input UploadInput
		key   string
	}{
		{name: "empty", input: UploadInput{Name: "a.txt", Body: strings.NewReader("")}, key: "error.file_empty"},
		{name: "no body", input: UploadInput{Name: "a.txt"}, key: "error.file_empty"},
		{name: "no name", input: UploadInput{Name: " ", Body: strings.NewReader("x")}, key: "error.required"},
		{name: "too large", input: UploadInput{Name: "big.bin", Body: bytes.NewReader(make([]byte, MaxSize+1))}, key: "error.file_too_large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, tt.input)
			if got := apperrors.LocalizationKey(err); got != tt.key {
				t.Fatalf("key = %q, want %q (err %v)", got, tt.key, err)
			}
		})
	}

	if _, err := svc.Upload(ctx, UploadInput{Name: "max.bin", Body: bytes.NewReader(make([]byte, MaxSize))}); err != nil {
		t.Fatalf("max size upload: %v", err)
	}
	if n, _ := svc.Count(ctx); n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}
