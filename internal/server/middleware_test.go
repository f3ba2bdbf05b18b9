package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestIsReservedPath(t *testing.T) {
	cases := map[string]bool{
		"/data":             true,
		"/data/":            true,
		"/data/x/y":         true,
		"data":              true,
		"/Data/x":           true,
		"/./data":           true,
		"/x/../data/y":      true,
		"/data. /x":         true,
		"/":                 false,
		"":                  false,
		"/database":         false,
		"/api/gemini-key":   false,
		"/static/data":      false,
		"/data-export.json": false,
	}
	for p, want := range cases {
		assert.Equal(t, isReservedPath(p, ReservedSegment), want, "%q", p)
	}

	nested := map[string]bool{
		"/private/keys":         true,
		"/Private/Keys/x.json":  true,
		"/private/keys./x.json": true,
		"/private":              false,
		"/private/keyset":       false,
		"/keys":                 false,
	}
	for p, want := range nested {
		assert.Equal(t, isReservedPath(p, "private/keys"), want, "%q", p)
	}
}

func TestReservedPrefixes(t *testing.T) {
	root := t.TempDir()

	assert.Check(t, is.Len(ReservedPrefixes(root, filepath.Join(root, "data")), 0))
	assert.Check(t, is.Len(ReservedPrefixes(root, filepath.Join(root, "Data")), 0))
	assert.Check(t, is.Len(ReservedPrefixes(root, filepath.Join(t.TempDir(), "data")), 0))
	assert.Check(t, is.Len(ReservedPrefixes(root, filepath.Dir(root)), 0))
	assert.DeepEqual(t, ReservedPrefixes(root, filepath.Join(root, "secrets")), []string{"secrets"})
	assert.DeepEqual(t, ReservedPrefixes(root, filepath.Join(root, "private", "keys")), []string{"private/keys"})
	assert.DeepEqual(t, ReservedPrefixes(root, filepath.Join(root, "assets", "..", "secrets")), []string{"secrets"})
}

func TestRequestLoggerAssignsID(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.InfoLevel)

	var seen logrus.FieldLogger
	h := RequestLogger(log, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = loggerFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	id := rec.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	assert.NilError(t, err)
	assert.Check(t, seen != nil)

	entry := hook.LastEntry()
	assert.Assert(t, entry != nil)
	assert.Equal(t, entry.Level, logrus.InfoLevel)
	assert.Equal(t, entry.Data["request_id"], id)
	assert.Equal(t, entry.Data["status"], http.StatusTeapot)
	assert.Equal(t, entry.Data["path"], "/x")
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	h := RequestLogger(log, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, rec.Header().Get(RequestIDHeader), "abc-123")
}
