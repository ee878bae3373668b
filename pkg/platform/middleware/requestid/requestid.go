package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"healthcred/pkg/requestcontext"
)

// Header carries the correlation ID on responses and inbound requests.
const Header = "X-Request-Id"

// Middleware assigns a correlation ID to every request, honoring one supplied
// by the caller, and stamps it on the response and request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(Header, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
