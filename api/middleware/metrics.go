package middleware

import (
	"net/http"

	"github.com/closingdesk/commission-backend/pkg/metrics"
)

// Metrics counts requests by chi route pattern so path ids do not explode label cardinality.
func Metrics(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			m.IncRequest(routePattern(r), r.Method, rec.code())
		})
	}
}
