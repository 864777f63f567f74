// Provides middleware for standardizing HTTP handlers.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"

	apierrors "github.com/snapdb/snapdb/internal/errors"
	"github.com/snapdb/snapdb/internal/server/reqctx"
)

// Wrap wraps a handler function to work as an http.Handler.
// The function must have signature: func(context.Context, In) (*Out, error)
// where In can be unmarshalled from JSON and Out is a struct.
// Path parameters can be extracted by tagging struct fields with `path:"name"`.
//
// Example:
//
//	type GetItemRequest struct {
//	    ID uint64 `path:"id"`
//	}
//
//	func (h *Handler) GetItem(ctx context.Context, req GetItemRequest) (*Response, error)
func Wrap[In any, Out any](fn func(context.Context, In) (*Out, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = reqctx.WithClientIP(ctx, reqctx.GetClientIP(r))
		ctx = reqctx.WithUserAgent(ctx, r.Header.Get("User-Agent"))

		body, err := io.ReadAll(r.Body)
		if err2 := r.Body.Close(); err == nil {
			err = err2
		}
		if err != nil {
			slog.ErrorContext(ctx, "Failed to read request body", "err", err)
			writeErrorResponse(w, http.StatusBadRequest, apierrors.ErrValidationFailed, "Failed to read request body")
			return
		}
		var input In
		if len(body) > 0 {
			d := json.NewDecoder(bytes.NewReader(body))
			d.DisallowUnknownFields()
			if err := d.Decode(&input); err != nil {
				slog.ErrorContext(ctx, "Failed to decode request body", "err", err)
				writeErrorResponse(w, http.StatusBadRequest, apierrors.ErrValidationFailed, "Invalid request body")
				return
			}
		}

		if err := populatePathParams(r, &input); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, apierrors.ErrValidationFailed, err.Error())
			return
		}

		output, err := fn(ctx, input)
		if err != nil {
			statusCode := http.StatusInternalServerError
			errorCode := apierrors.ErrInternal
			details := make(map[string]any)

			var ewsErr apierrors.ErrorWithStatus
			if errors.As(err, &ewsErr) {
				statusCode = ewsErr.StatusCode()
				errorCode = ewsErr.Code()
				if d := ewsErr.Details(); d != nil {
					details = d
				}
			}

			slog.ErrorContext(ctx, "Handler error", "err", err, "statusCode", statusCode, "code", errorCode)
			writeErrorResponseWithDetails(w, statusCode, errorCode, err.Error(), details)
			return
		}

		status := http.StatusOK
		if sc, ok := any(output).(StatusCoder); ok {
			status = sc.StatusCode()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(output); err != nil {
			slog.ErrorContext(ctx, "Failed to encode response", "err", err)
		}
	})
}

// StatusCoder lets a response type choose its success status code.
// Responses that do not implement it are written with 200.
type StatusCoder interface {
	StatusCode() int
}

// populatePathParams extracts path parameters from the request and populates
// struct fields tagged with `path:"paramName"`. A non-numeric value for an
// integer field is an error, so routes like /api/items/{id} reject garbage
// ids up front.
func populatePathParams(r *http.Request, input any) error {
	val := reflect.ValueOf(input)
	if val.Kind() != reflect.Ptr {
		return nil
	}

	elem := val.Elem()
	if elem.Kind() != reflect.Struct {
		return nil
	}

	typ := elem.Type()
	for i := range typ.NumField() {
		field := typ.Field(i)
		tag := field.Tag.Get("path")
		if tag == "" {
			continue
		}

		paramValue := r.PathValue(tag)
		if paramValue == "" {
			continue
		}

		//nolint:exhaustive // Only string and uint are used for path params.
		switch field.Type.Kind() {
		case reflect.String:
			elem.Field(i).SetString(paramValue)
		case reflect.Uint64, reflect.Uint:
			uintVal, err := strconv.ParseUint(paramValue, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for path parameter %s: %q", tag, paramValue)
			}
			elem.Field(i).SetUint(uintVal)
		default:
		}
	}
	return nil
}

// writeErrorResponse writes an error response as JSON.
func writeErrorResponse(w http.ResponseWriter, statusCode int, code apierrors.ErrorCode, message string) {
	writeErrorResponseWithDetails(w, statusCode, code, message, nil)
}

// writeErrorResponseWithDetails writes a detailed error response as JSON with code and details.
func writeErrorResponseWithDetails(w http.ResponseWriter, statusCode int, code apierrors.ErrorCode, message string, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}

	if len(details) > 0 {
		response["details"] = details
	}

	_ = json.NewEncoder(w).Encode(response)
}
