package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"campusconnect/internal/entity"
	"campusconnect/internal/repository"
	"campusconnect/internal/usecase"
	"campusconnect/pkg/identity"
	"campusconnect/pkg/logging"
)

type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Message: "success", Data: data})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, Response{Message: message})
}

// decodeBody reports false after answering 400 when the body is not valid JSON.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeBadRequest(w, "invalid request body")
		return false
	}
	return true
}

// errorStatus maps a use case error to its HTTP status and the message shown
// to the caller.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, identity.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, usecase.ErrReverseRequestExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, entity.ErrRequestNotPending), errors.Is(err, entity.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, usecase.ErrExpired):
		return http.StatusGone, err.Error()
	case errors.Is(err, usecase.ErrForbidden), errors.Is(err, usecase.ErrNotParticipant):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, usecase.ErrEmptyParticipants),
		errors.Is(err, usecase.ErrCannotRequestSelf):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, repository.ErrStoreWriteFailed):
		return http.StatusServiceUnavailable, "temporarily unavailable, please try again"
	}
	return http.StatusInternalServerError, "internal server error"
}

func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, message := errorStatus(err)
	log := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(op+" failed", logging.Err(err))
	} else {
		log.Debug(op+" rejected", logging.Err(err))
	}
	writeJSON(w, status, Response{Message: message})
}
