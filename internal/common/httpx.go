package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Page is a normalized limit/offset window.
type Page struct {
	Limit  int
	Offset int
}

// NewPage applies the listing defaults: limit 20 when unset, capped at 100,
// negative offsets start at zero.
func NewPage(limit, offset int) Page {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}

// ParsePage reads limit and offset query parameters.
func ParsePage(r *http.Request) Page {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	return NewPage(limit, offset)
}

// PathID parses a numeric mux path variable.
func PathID(r *http.Request, name string) (uint64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, NewValidationError(name, "invalid "+name)
	}
	return id, nil
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

type errorResponse struct {
	Message string `json:"message"`
}

// WriteError writes {"message": ...} with the status mapped from err.
// Internal errors never leak their text.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFromError(err)
	msg := err.Error()
	var vErr *ValidationError
	switch {
	case status == http.StatusInternalServerError:
		msg = "internal server error"
	case errors.As(err, &vErr):
		msg = vErr.Message
	}
	WriteJSON(w, status, errorResponse{Message: msg})
}

func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return NewValidationError("body", "invalid request body")
	}
	return nil
}
