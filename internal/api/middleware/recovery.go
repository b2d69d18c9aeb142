package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/wordlegame-go/internal/api/apierr"
	"github.com/mcoot/wordlegame-go/internal/middleware"
)

// Recovery creates panic recovery middleware that answers with a JSON error
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
