package guard

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tahsinratul/life-client/internal/navigation"
)

// PendingBody is the payload served while a guard is still Pending.
type PendingBody struct {
	State string `json:"state"`
	Path  string `json:"path"`
}

// Middleware gates an HTTP handler. It waits up to wait for a verdict:
// Granted serves next, Denied answers 303 to the redirect target with the
// attempted path, and Pending answers 202 asking the client to retry.
func (g *Guard) Middleware(wait time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			ctx := r.Context()
			if navigation.LocationFromContext(ctx) == "" {
				ctx = navigation.WithLocation(ctx, path)
			}

			waitCtx, cancel := context.WithTimeout(ctx, wait)
			outcome, _ := g.Await(waitCtx, path)
			cancel()

			switch outcome {
			case Granted:
				next.ServeHTTP(w, r.WithContext(ctx))
			case Denied:
				to, from := g.RedirectTarget(), path
				if slot, ok := navigation.SlotFromContext(ctx); ok {
					if slotTo, slotFrom, held := slot.Redirect(); held {
						to, from = slotTo, slotFrom
					}
				}
				http.Redirect(w, r, navigation.RedirectURL(to, from), http.StatusSeeOther)
			default:
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusAccepted)
				_ = json.NewEncoder(w).Encode(PendingBody{State: Pending.String(), Path: path})
			}
		})
	}
}
