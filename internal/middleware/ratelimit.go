// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimit allows limit requests per window for each client IP. Excess
// requests get 429 with a Retry-After header set by httprate; API calls
// receive a JSON body.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			slog.Warn("rate limit exceeded", "path", r.URL.Path, "remote", r.RemoteAddr)
			if IsAPI(r) {
				WriteJSONError(w, http.StatusTooManyRequests, "Too Many Requests")
				return
			}
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		}),
	)
}
