package middleware

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// StaticFiles serves GET requests from dir when the requested path is an
// existing regular file, and falls through to the next handler otherwise.
// This mirrors how the legacy server mounted its static directory in front
// of the generic CRUD router. It must wrap the router from the outside:
// router-level middleware only runs for matched routes, and most static
// paths match none.
func StaticFiles(dir string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if dir == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			cleaned := filepath.Clean(strings.TrimPrefix(r.URL.Path, "/"))
			if cleaned == "." || strings.HasPrefix(cleaned, "..") {
				next.ServeHTTP(w, r)
				return
			}

			candidate := filepath.Join(dir, cleaned)
			info, err := os.Stat(candidate)
			if err != nil || !info.Mode().IsRegular() {
				next.ServeHTTP(w, r)
				return
			}

			file, err := os.Open(candidate)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			defer file.Close()

			// ServeContent rather than ServeFile: the latter answers
			// requests for index.html with a redirect instead of the file.
			http.ServeContent(w, r, info.Name(), info.ModTime(), file)
		})
	}
}
