package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Assets serves files under dir mounted at prefix with long-lived caching and
// content-hash ETags.
type Assets struct {
	prefix string
	etags  map[string]string
	fs     http.Handler
}

// AssetsWithCache walks dir once to precompute ETags.
func AssetsWithCache(dir, prefix string) *Assets {
	a := &Assets{
		prefix: strings.TrimRight(prefix, "/"),
		etags:  map[string]string{},
		fs:     http.StripPrefix(strings.TrimRight(prefix, "/"), http.FileServer(http.Dir(dir))),
	}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		et, err := fileETag(path)
		if err != nil {
			return nil
		}
		if rel, err := filepath.Rel(dir, path); err == nil {
			a.etags["/"+filepath.ToSlash(rel)] = et
		}
		return nil
	})
	return a
}

// ETag returns the precomputed tag for a URL path under the prefix.
func (a *Assets) ETag(urlPath string) string {
	return a.etags[strings.TrimPrefix(urlPath, a.prefix)]
}

// Version returns a short content hash for cache-busting query strings.
func (a *Assets) Version(urlPath string) string {
	et := a.ETag(urlPath)
	et = strings.TrimSuffix(strings.TrimPrefix(et, `W/"`), `"`)
	if len(et) > 10 {
		return et[:10]
	}
	return et
}

func (a *Assets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/") {
		http.NotFound(w, r)
		return
	}
	w.Header().Add("Vary", "Accept-Encoding")
	w.Header().Set("Cache-Control", CacheControlFor(r.URL.Path))
	if et := a.ETag(r.URL.Path); et != "" {
		w.Header().Set("ETag", et)
		if etagMatches(r.Header.Get("If-None-Match"), et) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	a.fs.ServeHTTP(w, r)
}

func etagMatches(header, etag string) bool {
	if strings.TrimSpace(header) == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		c := strings.TrimSpace(candidate)
		if c == "*" || c == etag || "W/"+c == etag {
			return true
		}
	}
	return false
}

func fileETag(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil)) + `"`, nil
}
