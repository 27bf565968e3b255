package servehttp

import (
	"net"
	"net/http"
	"strings"
)

// AdminHostRewrite serves requests for the distinguished admin hostname under
// the /admin path prefix. All other hosts pass through untouched.
func AdminHostRewrite(next http.Handler, adminHost string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if adminHost != "" && hostname(r.Host) == adminHost && !strings.HasPrefix(r.URL.Path, "/admin") {
			r.URL.Path = "/admin" + r.URL.Path
		}
		next.ServeHTTP(w, r)
	})
}

func hostname(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
