// Package errors centralizes error responses. Handlers hand internal errors
// to the ErrorLogger, which logs the detail server-side and sends the client
// a generic JSON message, so internal state never leaks into responses.
package errors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// errorBody is the uniform JSON error envelope.
type errorBody struct {
	Error string `json:"error"`
}

// RenderError writes a JSON error response with the given status.
func RenderError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}

// ErrorLogger pairs a structured log entry with a client-safe response.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs the internal detail and responds 500 with clientMsg.
func (el *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, op string, err error, clientMsg string) {
	el.log.Error(op,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	RenderError(w, http.StatusInternalServerError, clientMsg)
}

// LogBadRequest logs the internal detail and responds 400 with clientMsg.
func (el *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, op string, err error, clientMsg string) {
	el.log.Warn(op,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	RenderError(w, http.StatusBadRequest, clientMsg)
}
