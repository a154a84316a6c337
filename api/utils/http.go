// Package utils carries the HTTP plumbing shared by the api
// subpackages: error-returning handlers, status mapping and JSON
// encoding.
package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/helmdao/helm/reverts"
)

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

// HTTPError creates an error carrying an http status code.
func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

// BadRequest creates an http bad request error.
func BadRequest(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusBadRequest,
	}
}

// Forbidden creates an http forbidden error.
func Forbidden(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusForbidden,
	}
}

// NotFound creates an http not found error.
func NotFound(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusNotFound,
	}
}

// ConvertEngineError maps engine failures onto http statuses.
// Authorization reverts (the "only..." family) become 403, all other
// reverts 400, anything else passes through as an internal error.
func ConvertEngineError(err error) error {
	if err == nil {
		return nil
	}
	if !reverts.IsRevert(err) {
		return err
	}
	if strings.HasPrefix(err.Error(), "only") {
		return Forbidden(err)
	}
	return BadRequest(err)
}

// HandlerFunc is like http.HandlerFunc, but returns an error.
// If the returned error is a httpError, its status is responded,
// otherwise http.StatusInternalServerError.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc converts HandlerFunc to http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err != nil {
			if he, ok := err.(*httpError); ok {
				if he.cause != nil {
					http.Error(w, he.cause.Error(), he.status)
				} else {
					w.WriteHeader(he.status)
				}
			} else {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

const (
	// JSONContentType is the content type of all api responses.
	JSONContentType = "application/json; charset=utf-8"
)

// ParseJSON parses a JSON object in strict mode.
func ParseJSON(r io.Reader, v interface{}) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON responds with an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj interface{}) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// M is a shortcut for map[string]interface{}.
type M map[string]interface{}
