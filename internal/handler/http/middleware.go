package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/brewhouse/internal/session"
	"github.com/utafrali/brewhouse/pkg/httputil"
	"github.com/utafrali/brewhouse/pkg/logger"
	"github.com/utafrali/brewhouse/pkg/middleware"
)

// Session resolves the storefront session from the X-Session-ID header. A
// missing or malformed id is replaced by a fresh one. The id is echoed on
// the response so the client can send it back.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sid := r.Header.Get(middleware.SessionHeader)

		if !session.ValidID(sid) {
			sid = session.NewID()
			l := logger.FromContext(ctx).With(slog.String("session_id", sid))
			ctx = logger.NewContext(ctx, l)
		}
		ctx = logger.WithSessionID(ctx, sid)

		w.Header().Set(middleware.SessionHeader, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "Content-Type must be application/json",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
