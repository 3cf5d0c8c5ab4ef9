package middleware

import (
	"net/http"
	"time"

	"github.com/cresol/hub-api/internal/pkg/logger"
)

// UploadTimeout replaces the server read/write timeouts on upload routes.
const UploadTimeout = 120 * time.Second

// Deadline extends the connection deadlines of the request to d.
func Deadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := http.NewResponseController(w)
			until := time.Now().Add(d)
			if err := rc.SetReadDeadline(until); err != nil {
				logger.FromContext(r.Context()).Debug().Err(err).Msg("Read deadline not supported")
			}
			if err := rc.SetWriteDeadline(until); err != nil {
				logger.FromContext(r.Context()).Debug().Err(err).Msg("Write deadline not supported")
			}
			next.ServeHTTP(w, r)
		})
	}
}
