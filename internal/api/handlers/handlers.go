// Package handlers implements the REST endpoints over the collection facade.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ramonehamilton/rifty/internal/api/response"
	"github.com/ramonehamilton/rifty/internal/collection"
	"github.com/ramonehamilton/rifty/internal/facade"
)

// maxBodyBytes caps request bodies; bulk input is the largest payload.
const maxBodyBytes = 1 << 20

// decode reads a JSON body into v, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, facade.ErrCardNotFound):
		response.NotFound(w, err)
	case errors.Is(err, facade.ErrUnknownSet),
		errors.Is(err, collection.ErrUnknownFilterKey),
		errors.Is(err, collection.ErrInvalidFilterValue),
		errors.Is(err, collection.ErrUnknownSortField):
		response.BadRequest(w, err)
	default:
		response.InternalError(w, err)
	}
}
