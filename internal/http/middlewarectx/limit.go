package middlewarectx

import (
	"fmt"
	"math"
	"net"
	"net/http"

	"github.com/magabrotheeeer/staffdesk/internal/http/pipeline"
	"github.com/magabrotheeeer/staffdesk/internal/lib/httperr"
	"github.com/magabrotheeeer/staffdesk/internal/lib/ratelimit"
	"github.com/magabrotheeeer/staffdesk/internal/metrics"
)

// RateLimit отклоняет запросы сверх лимита для IP клиента.
// IP берётся из RemoteAddr; за доверенным прокси его заранее переписывает middleware.RealIP.
func RateLimit(l *ratelimit.Limiter) pipeline.Step {
	minutes := int(math.Ceil(l.Window().Minutes()))
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	return func(_ http.ResponseWriter, r *http.Request) (*http.Request, error) {
		ip := clientIP(r)
		if !l.Allow(ip) {
			metrics.ObserveRateLimited()
			return nil, httperr.TooManyRequests(fmt.Sprintf(
				"Too many requests (%d) from IP %s. Please try again in %d %s.",
				l.Limit(), ip, minutes, unit))
		}
		return r, nil
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return "unknown"
	}
	return host
}
