// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// SecureHeaders sets a fixed set of hardening headers on every response,
// admin pages and public article pages alike.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		// No MIME sniffing.
		h.Set("X-Content-Type-Options", "nosniff")

		// Only same-origin frames; the delete confirmations must not be
		// clickjackable.
		h.Set("X-Frame-Options", "SAMEORIGIN")

		// Legacy XSS filter off.
		h.Set("X-XSS-Protection", "0")

		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Opt out of FLoC cohorts.
		h.Set("Permissions-Policy", "interest-cohort=()")

		next.ServeHTTP(w, r)
	})
}
