// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// hstsValue pins HTTPS for a year once the site is served over TLS.
const hstsValue = "max-age=31536000; includeSubDomains"

// SecureHeaders returns middleware that adds security-related HTTP headers
// to every response. These headers protect against clickjacking,
// MIME-sniffing and referrer leakage. When tls is true the response also
// carries Strict-Transport-Security.
func SecureHeaders(tls bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			// Prevent the browser from MIME-sniffing the Content-Type.
			h.Set("X-Content-Type-Options", "nosniff")

			// Prevent embedding in iframes from other origins (clickjacking).
			h.Set("X-Frame-Options", "SAMEORIGIN")

			// Disable the legacy XSS filter (can cause issues; CSP is preferred).
			h.Set("X-XSS-Protection", "0")

			// Control what information is sent in the Referer header.
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// The site never needs device APIs.
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

			// Keep cross-origin popups out of our browsing context.
			h.Set("Cross-Origin-Opener-Policy", "same-origin")

			if tls {
				h.Set("Strict-Transport-Security", hstsValue)
			}

			next.ServeHTTP(w, r)
		})
	}
}
