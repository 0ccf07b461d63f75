package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// MaxJSONBodySize bounds every JSON request body
const MaxJSONBodySize = 1 << 20

var (
	// ErrEmptyBody is returned when a JSON body is required but missing
	ErrEmptyBody = errors.New("request body is empty")
	// ErrInvalidID is returned for a non-numeric or non-positive path id
	ErrInvalidID = errors.New("invalid id")
)

// DecodeJSON decodes a single JSON object from the request body into dst.
// Unknown fields are ignored so older clients keep working.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if decoder.More() {
		return errors.New("invalid JSON body: multiple values")
	}
	return nil
}

// PathID reads a positive integer path variable
func PathID(r *http.Request, name string) (int64, error) {
	raw, ok := mux.Vars(r)[name]
	if !ok || raw == "" {
		return 0, ErrInvalidID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
