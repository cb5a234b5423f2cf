package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/mmynk/formbuilder/internal/auth"
	"github.com/mmynk/formbuilder/internal/service"
	"github.com/mmynk/formbuilder/internal/storage"
)

const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error to an HTTP status and a client-safe message.
// Unrecognised errors fall back to 400 with the error text.
func statusFor(err error) (int, string) {
	var se *service.Error
	if errors.As(err, &se) {
		switch se.Kind {
		case service.KindUnauthenticated:
			return http.StatusUnauthorized, se.Message
		case service.KindForbidden:
			return http.StatusForbidden, se.Message
		case service.KindNotFound:
			return http.StatusNotFound, se.Message
		default:
			return http.StatusBadRequest, se.Message
		}
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized, auth.ErrMissingToken.Error()
	case errors.Is(err, auth.ErrTokenRevoked):
		return http.StatusUnauthorized, auth.ErrTokenRevoked.Error()
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, auth.ErrInvalidToken.Error()
	case errors.Is(err, auth.ErrIncorrectPassword):
		return http.StatusBadRequest, "Old password is not correct"
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrUsernameTaken):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, storage.ErrConflict):
		return http.StatusBadRequest, "conflicts with existing data"
	}
	return http.StatusBadRequest, err.Error()
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	var se *service.Error
	switch {
	case errors.As(err, &se), status == http.StatusUnauthorized,
		errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrUsernameTaken), errors.Is(err, auth.ErrIncorrectPassword):
		s.logger.Debug("Request rejected", "path", r.URL.Path, "status", status, "error", err)
	default:
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Error: msg})
}

// decode reads a JSON request body into v. Unknown fields are ignored.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &service.Error{Kind: service.KindValidation, Message: "request body is required"}
		}
		return &service.Error{Kind: service.KindValidation, Message: "invalid JSON body", Err: err}
	}
	return nil
}

// pathID parses the {id} wildcard. A malformed ID is reported as not found,
// the same as an ID that does not exist.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &service.Error{Kind: service.KindNotFound, Message: "Not found"}
	}
	return id, nil
}

// queryID parses an optional numeric query parameter.
func queryID(r *http.Request, key string) (*int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &service.Error{Kind: service.KindValidation, Message: fmt.Sprintf("%s must be an integer", key)}
	}
	return &id, nil
}

func queryString(r *http.Request, key string) *string {
	if !r.URL.Query().Has(key) {
		return nil
	}
	v := r.URL.Query().Get(key)
	return &v
}
