package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ErrorResponse is the uniform error envelope. Error carries the underlying
// detail and is omitted in production so internals never leak to clients.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// exposeErrorDetails is set once at startup from the environment
var exposeErrorDetails = true

// SetEnvironment configures whether error responses carry the underlying
// error detail. Production responses carry the message only.
func SetEnvironment(env string) {
	exposeErrorDetails = env != "production"
}

// respondWithError sends the error envelope with no underlying detail
func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	writeError(w, statusCode, ErrorResponse{Message: message})
}

// RespondWithError sends the error envelope with no underlying detail
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithError(w, statusCode, message)
}

// RespondWithErrorDetail sends the error envelope, attaching the underlying
// error outside production
func RespondWithErrorDetail(w http.ResponseWriter, statusCode int, message string, err error) {
	response := ErrorResponse{Message: message}
	if err != nil && exposeErrorDetails {
		response.Error = err.Error()
	}
	writeError(w, statusCode, response)
}

func writeError(w http.ResponseWriter, statusCode int, response ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// RespondWithValidationErrors sends a 400 naming the first failing field,
// with the full list as detail
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	message := "validation failed"
	if len(errors) > 0 {
		message = fmt.Sprintf("validation failed: %s: %s", errors[0].Field, errors[0].Message)
	}

	fields := make([]string, 0, len(errors))
	for _, e := range errors {
		fields = append(fields, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}

	RespondWithErrorDetail(w, http.StatusBadRequest, message, fmt.Errorf("%s", strings.Join(fields, "; ")))
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					respondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
