// Package httputil holds the JSON request/response helpers shared by every
// casevault handler.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	dErrors "casevault/pkg/domain-errors"
	"casevault/pkg/platform/validation"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err onto a status code and error body. Internal errors never
// leak their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := ErrorResponse{Error: string(code)}
	if de, ok := dErrors.As(err); ok && code != dErrors.CodeInternal {
		resp.ErrorDescription = de.Message
	}
	WriteJSON(w, dErrors.HTTPStatus(code), resp)
}

// Validatable is implemented by request DTOs with rules beyond struct tags.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes a JSON body into T, trims its strings, runs tag
// validation and then T.Validate when implemented. On failure it writes the
// error response and returns ok=false.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req := new(T)
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		} else if strings.HasPrefix(err.Error(), "json: unknown field") {
			msg = strings.TrimPrefix(err.Error(), "json: ")
		}
		logger.WarnContext(ctx, "failed to decode request",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, msg))
		return nil, false
	}

	Sanitize(req)

	if err := validation.Struct(req); err != nil {
		logger.WarnContext(ctx, "invalid request",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, err)
		return nil, false
	}
	if v, ok := any(req).(Validatable); ok {
		if err := v.Validate(); err != nil {
			logger.WarnContext(ctx, "invalid request",
				"error", err,
				"request_id", requestID,
			)
			WriteError(w, err)
			return nil, false
		}
	}
	return req, true
}

// Sanitize trims whitespace from string and []string fields of a struct
// pointer, descending into nested structs and slices of structs. Fields
// tagged sanitize:"-" are left untouched.
func Sanitize(v any) {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return
	}
	sanitizeValue(val.Elem())
}

func sanitizeValue(val reflect.Value) {
	switch val.Kind() {
	case reflect.Struct:
		for i := 0; i < val.NumField(); i++ {
			if val.Type().Field(i).Tag.Get("sanitize") == "-" {
				continue
			}
			field := val.Field(i)
			if field.CanSet() {
				sanitizeValue(field)
			}
		}
	case reflect.String:
		if val.CanSet() {
			val.SetString(strings.TrimSpace(val.String()))
		}
	case reflect.Slice:
		for j := 0; j < val.Len(); j++ {
			sanitizeValue(val.Index(j))
		}
	case reflect.Ptr:
		if !val.IsNil() {
			sanitizeValue(val.Elem())
		}
	}
}
