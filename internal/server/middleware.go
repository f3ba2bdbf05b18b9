package server

import (
	"context"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	ReservedSegment = "data"
	RequestIDHeader = "X-Request-Id"
)

// ReservedPathGuard answers 404 for every request under /data or under any of
// the extra prefixes, whatever the method. It must wrap everything that can
// serve files so the data directory is never reachable as static content.
func ReservedPathGuard(next http.Handler, extra ...string) http.Handler {
	prefixes := append([]string{ReservedSegment}, extra...)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range prefixes {
			if isReservedPath(r.URL.Path, prefix) {
				http.Error(w, "Not Found", http.StatusNotFound)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// ReservedPrefixes returns the URL prefix of dataDir when it lives inside the
// static root, so a relocated data directory is guarded as well as /data.
func ReservedPrefixes(root, dataDir string) []string {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil
	}
	absData, err := filepath.Abs(dataDir)
	if err != nil {
		return nil
	}
	rel, err := filepath.Rel(absRoot, absData)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	rel = filepath.ToSlash(rel)
	if strings.EqualFold(rel, ReservedSegment) {
		return nil
	}
	return []string{rel}
}

// isReservedPath reports whether p equals prefix or lies beneath it,
// comparing segment by segment without regard to case.
func isReservedPath(p, prefix string) bool {
	segs := strings.Split(strings.TrimPrefix(path.Clean("/"+p), "/"), "/")
	want := strings.Split(strings.Trim(prefix, "/"), "/")
	if len(segs) < len(want) {
		return false
	}
	for i, w := range want {
		// Windows resolves "data." and "data " to "data"
		if !strings.EqualFold(strings.TrimRight(segs[i], ". "), w) {
			return false
		}
	}
	return true
}

type ctxKey int

const loggerKey ctxKey = iota

func loggerFromContext(ctx context.Context) logrus.FieldLogger {
	l, _ := ctx.Value(loggerKey).(logrus.FieldLogger)
	return l
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// RequestLogger tags each request with an ID, puts a request-scoped logger in
// the context, and writes one access line when the handler returns.
func RequestLogger(log logrus.FieldLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		entry := log.WithField("request_id", id)
		r = r.WithContext(context.WithValue(r.Context(), loggerKey, logrus.FieldLogger(entry)))

		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		entry.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}
