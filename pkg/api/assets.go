// Adapted from https://github.com/mandrigin/gin-spa (MIT License,
// Copyright (c) 2020 Igor Mandrigin).

package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

// cacheControlWriter sets Cache-Control from the request path before the
// first write.
type cacheControlWriter struct {
	http.ResponseWriter
	path        string
	wroteHeader bool
}

func (w *cacheControlWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		if isFingerprinted(w.path) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		}
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *cacheControlWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// isFingerprinted reports whether the file name carries a content hash,
// e.g. app.3f9a1c2b.js.
func isFingerprinted(path string) bool {
	name := path[strings.LastIndex(path, "/")+1:]
	parts := strings.Split(name, ".")
	if len(parts) < 3 {
		return false
	}
	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, r := range hash {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

// ServeAssets serves files below dir under urlPrefix. Requests for missing
// files fall through to the next handler.
func ServeAssets(urlPrefix, dir string) gin.HandlerFunc {
	fs := static.LocalFile(dir, false)
	fileserver := http.StripPrefix(urlPrefix, http.FileServer(fs))
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !strings.HasPrefix(path, urlPrefix+"/") || !fs.Exists(urlPrefix, path) {
			return
		}
		fileserver.ServeHTTP(&cacheControlWriter{ResponseWriter: c.Writer, path: path}, c.Request)
		c.Abort()
	}
}
