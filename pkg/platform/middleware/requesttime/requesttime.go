// Package requesttime stamps each request with a single "now" so every
// createdAt/updatedAt written during the request agrees.
package requesttime

import (
	"net/http"
	"time"

	"gamelib/pkg/requestcontext"
)

// WithClock stores now() at request start in the context, in UTC. The router
// passes time.Now in production and a fixed clock in tests.
func WithClock(now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), now().UTC())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
