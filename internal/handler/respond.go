package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Tetsu-is/social-graph/internal/domain"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("invalid request body")

type errorSlotKey struct{}

// errorSlot carries the error behind a response back up to the request
// logger.
type errorSlot struct {
	err error
}

func withErrorSlot(ctx context.Context) (context.Context, *errorSlot) {
	slot := &errorSlot{}
	return context.WithValue(ctx, errorSlotKey{}, slot), slot
}

func recordError(r *http.Request, err error) {
	if slot, ok := r.Context().Value(errorSlotKey{}).(*errorSlot); ok {
		slot.err = err
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// statusFor maps an error returned by the service layer to its HTTP status
// and client-facing message.
func statusFor(err error) (int, string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "validation failed"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, errBadRequest.Error()
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, domain.ErrUnauthenticated.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, domain.ErrForbidden.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	recordError(r, err)

	status, message := statusFor(err)
	resp := domain.ErrorResponse{Code: status, Message: message}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	writeJSON(w, status, resp)
}
