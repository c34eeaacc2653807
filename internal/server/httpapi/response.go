package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Batajoo/youtube-backend-clone/internal/common"
)

const maxJSONBody = 16 << 10

// Response is the envelope of every API reply.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	if data == nil {
		data = struct{}{}
	}
	writeJSON(w, status, Response{StatusCode: status, Data: data, Message: message, Success: status < 400})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{StatusCode: status, Data: nil, Message: message, Success: false})
}

// requestError is a malformed request rejected before it reaches the service.
type requestError struct {
	status int
	msg    string
	cause  error
}

func (e *requestError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

func (e *requestError) Unwrap() error { return e.cause }

func badRequest(msg string, cause error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(cause, &tooLarge) {
		return &requestError{status: http.StatusRequestEntityTooLarge, msg: "request body too large", cause: cause}
	}
	return &requestError{status: http.StatusBadRequest, msg: msg, cause: cause}
}

// statusFor maps an error to its HTTP status and client-facing message. The
// boolean reports whether the error is unexpected and must be logged.
func statusFor(err error) (int, string, bool) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.status, reqErr.msg, false
	case errors.Is(err, common.ErrValidationEmpty):
		return http.StatusBadRequest, "All fields are required", false
	case errors.Is(err, common.ErrPasswordTooLong):
		return http.StatusBadRequest, "Password must be at most 72 bytes", false
	case errors.Is(err, common.ErrAvatarRequired):
		return http.StatusBadRequest, "Avatar file is required", false
	case errors.Is(err, common.ErrInvalidCredential):
		return http.StatusBadRequest, "Invalid user credentials", false
	case errors.Is(err, common.ErrMissingToken):
		return http.StatusBadRequest, "Refresh token is missing", false
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusBadRequest, "Refresh token is invalid or expired", false
	case errors.Is(err, common.ErrTokenMismatch):
		return http.StatusBadRequest, "Refresh token is expired or used", false
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "User does not exist", false
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "Unauthorized request", false
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusConflict, "User with email or username already exists", false
	case errors.Is(err, common.ErrMediaUpload):
		return http.StatusBadGateway, "Error while uploading file", false
	default:
		return http.StatusInternalServerError, "Internal server error", true
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg, unexpected := statusFor(err)
	if unexpected {
		h.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeFailure(w, status, msg)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	if r.Body == nil {
		return badRequest("request body is required", nil)
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is required", nil)
		}
		return badRequest("invalid request body", err)
	}
	return nil
}
