package httpserver

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phenrril/cosmetica/internal/adapters/storage/localfs"
	"github.com/phenrril/cosmetica/internal/domain"
)

// multipart bodies may carry one image plus the text fields
const maxFormBody = localfs.MaxImageBytes + 1<<20

func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	err := r.ParseMultipartForm(maxFormBody)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig):
		return fmt.Errorf("%w: file exceeds %d MB", domain.ErrInvalidInput, localfs.MaxImageBytes>>20)
	case err != nil:
		return fmt.Errorf("%w: invalid form body", domain.ErrInvalidInput)
	}
	return nil
}

// formFile returns the uploaded file under field, or nil when none was sent.
// The caller closes the returned file.
func formFile(r *http.Request, field string) (*domain.Upload, multipart.File, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	f, fh, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: unreadable %s", domain.ErrInvalidInput, field)
	}
	if fh.Size > localfs.MaxImageBytes {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%w: file exceeds %d MB", domain.ErrInvalidInput, localfs.MaxImageBytes>>20)
	}
	return &domain.Upload{Filename: fh.Filename, Size: fh.Size, Body: f}, f, nil
}

func closeFile(f multipart.File) {
	if f != nil {
		_ = f.Close()
	}
}

func formValue(r *http.Request, key string) (string, bool) {
	vs, ok := r.PostForm[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return strings.TrimSpace(vs[0]), true
}

func formString(r *http.Request, key string) domain.Optional[string] {
	if v, ok := formValue(r, key); ok {
		return domain.Some(v)
	}
	return domain.Optional[string]{}
}

func formInt(r *http.Request, key string) (domain.Optional[int], error) {
	v, ok := formValue(r, key)
	if !ok || v == "" {
		return domain.Optional[int]{}, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return domain.Optional[int]{}, fmt.Errorf("%w: %s must be a whole number", domain.ErrInvalidInput, key)
	}
	return domain.Some(n), nil
}

func formDecimal(r *http.Request, key string) (domain.Optional[decimal.Decimal], error) {
	v, ok := formValue(r, key)
	if !ok || v == "" {
		return domain.Optional[decimal.Decimal]{}, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return domain.Optional[decimal.Decimal]{}, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
	}
	return domain.Some(d), nil
}

func formUUID(r *http.Request, key string) (domain.Optional[uuid.UUID], error) {
	v, ok := formValue(r, key)
	if !ok || v == "" {
		return domain.Optional[uuid.UUID]{}, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return domain.Optional[uuid.UUID]{}, fmt.Errorf("%w: %s must be a valid id", domain.ErrInvalidInput, key)
	}
	return domain.Some(id), nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	kind := domain.MediaKind(chi.URLParam(r, "kind"))
	file := chi.URLParam(r, "file")
	if !kind.Valid() || file == "" || file != filepath.Base(file) || strings.HasPrefix(file, ".") {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, filepath.Join(s.UploadsDir, string(kind), file))
}
