package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	servertiming "github.com/mitchellh/go-server-timing"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/cosmetica/internal/domain"
)

const maxJSONBody = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// classify maps a usecase error to a status and a message safe to show.
func classify(err error) (int, string) {
	for _, c := range []struct {
		sentinel error
		code     int
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.ErrInactiveCategory, http.StatusBadRequest},
		{domain.ErrDuplicate, http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
	} {
		if errors.Is(err, c.sentinel) {
			return c.code, strings.TrimPrefix(err.Error(), c.sentinel.Error()+": ")
		}
	}
	return http.StatusInternalServerError, "internal server error"
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := classify(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Str("request_id", middleware.GetReqID(r.Context())).Msg("request failed")
	}
	writeError(w, code, msg)
}

// failWishlist keeps the {success, error} envelope the wishlist endpoints use.
func (s *Server) failWishlist(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := classify(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Str("request_id", middleware.GetReqID(r.Context())).Msg("wishlist request failed")
	}
	writeJSON(w, code, map[string]any{"success": false, "error": msg, "message": msg})
}

// decodeJSON reads a JSON body into dst and validates its struct tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", domain.ErrInvalidInput)
		}
		return fmt.Errorf("%w: invalid json body", domain.ErrInvalidInput)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: extra data after json body", domain.ErrInvalidInput)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, describe(verrs[0]))
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
}

// pathID parses a uuid route parameter; a malformed id is reported as
// not found since it cannot name anything.
func pathID(r *http.Request, param, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s not found", domain.ErrNotFound, what)
	}
	return id, nil
}

func userParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid user id", domain.ErrInvalidInput)
	}
	return id, nil
}

// parseID reads a body id; uuid.Parse accepts any hex case, like path ids.
func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a valid id", domain.ErrInvalidInput, field)
	}
	return id, nil
}

// bodyUser resolves the userId of a request body; when omitted it is the caller.
func bodyUser(raw string, p domain.Principal) (uuid.UUID, error) {
	if raw == "" {
		return p.UserID, nil
	}
	return parseID(raw, "userId")
}

// writeCachedJSON serves v with a weak ETag and answers If-None-Match.
func writeCachedJSON(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("marshal response")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	etag := fmt.Sprintf(`W/"%016x"`, xxhash.Sum64(body))
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" {
		for _, m := range strings.Split(match, ",") {
			if m = strings.TrimSpace(m); m == etag || m == "*" {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(body, '\n'))
}

// timed starts a Server-Timing metric; call the result to stop it.
func timed(r *http.Request, name string) func() {
	t := servertiming.FromContext(r.Context())
	if t == nil {
		return func() {}
	}
	m := t.NewMetric(name).Start()
	return func() { m.Stop() }
}
