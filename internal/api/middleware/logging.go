package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/impostorgame/internal/middleware"
)

// Logging creates request logging middleware for the API
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}

// RequestID tags each API request with an id
func RequestID() func(http.Handler) http.Handler {
	return middleware.RequestID()
}
