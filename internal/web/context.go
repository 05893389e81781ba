package web

import (
	"net/http"

	"github.com/JonMunkholm/runplan/internal/audit"
	webmw "github.com/JonMunkholm/runplan/internal/web/middleware"
)

// requestMetadata stores the client IP and User-Agent in the request
// context, where the edit history picks them up.
func requestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := audit.ContextWithIPAddress(r.Context(), webmw.ClientIP(r))
		ctx = audit.ContextWithUserAgent(ctx, r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
