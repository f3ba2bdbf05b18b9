package main

import (
	"bytes"
	"errors"
	iofs "io/fs"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"keyhost/internal/server"
	"keyhost/internal/shared"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/fs"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func runInspect(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return run(t, append([]string{"inspect"}, args...)...)
}

func newKeyServer(t *testing.T) (string, server.Store) {
	t.Helper()
	store := server.NewMemStore()
	root := fs.NewDir(t, "kh-ctl", fs.WithFile("index.html", "<html></html>"))
	log, _ := logtest.NewNullLogger()
	api := &server.API{Store: store, Log: log, BodyLimit: 2 << 10}
	srv := httptest.NewServer(server.NewHandler(api, server.NewStaticHandler(root.Path())))
	t.Cleanup(srv.Close)
	return srv.URL, store
}

func TestRemoteCommands(t *testing.T) {
	url, store := newKeyServer(t)

	out, err := run(t, "get", "--server", url)
	assert.NilError(t, err)
	assert.Equal(t, out, "no key stored\n")

	out, err = run(t, "set", "  AIzaSy123 ", "--server", url)
	assert.NilError(t, err)
	assert.Equal(t, out, "stored key "+shared.Fingerprint("AIzaSy123")+"\n")

	key, err := store.ReadKey()
	assert.NilError(t, err)
	assert.Equal(t, key, "AIzaSy123")

	out, err = run(t, "get", "--server", url)
	assert.NilError(t, err)
	assert.Equal(t, out, "AIzaSy123\n")

	out, err = run(t, "rm", "--server", url)
	assert.NilError(t, err)
	assert.Equal(t, out, "removed\n")

	out, err = run(t, "get", "--server", url)
	assert.NilError(t, err)
	assert.Equal(t, out, "no key stored\n")
}

func TestSetSurfacesValidationMessage(t *testing.T) {
	url, store := newKeyServer(t)
	assert.NilError(t, store.WriteKey("prior"))

	_, err := run(t, "set", strings.Repeat("k", shared.MaxKeyLength+1), "--server", url)
	assert.Check(t, is.ErrorContains(err, "400"))
	assert.Check(t, is.ErrorContains(err, "The API key appears to be invalid."))

	_, err = run(t, "set", "   ", "--server", url)
	assert.Check(t, is.ErrorContains(err, "A non-empty API key is required."))

	key, err := store.ReadKey()
	assert.NilError(t, err)
	assert.Equal(t, key, "prior")
}

func TestSetFingerprintMatchesInspect(t *testing.T) {
	url, _ := newKeyServer(t)
	out, err := run(t, "set", " abc ", "--server", url)
	assert.NilError(t, err)
	assert.Check(t, is.Contains(out, shared.Fingerprint("abc")))

	dir := filepath.Join(t.TempDir(), "data")
	assert.NilError(t, server.NewFileStore(dir).WriteKey("abc"))
	out, err = runInspect(t, "--data-dir", dir)
	assert.NilError(t, err)
	assert.Check(t, is.Contains(out, shared.Fingerprint("abc")))
}

func TestInspectMissingSQLiteLeavesDiskAlone(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	out, err := runInspect(t, "--data-dir", dir, "--store", shared.StoreSQLite)
	assert.NilError(t, err)
	assert.Check(t, is.Contains(out, "key: absent"))

	_, err = os.Stat(dir)
	assert.Check(t, errors.Is(err, iofs.ErrNotExist), "inspect created %s", dir)
}

func TestInspectAbsent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	out, err := runInspect(t, "--data-dir", dir)
	assert.NilError(t, err)
	assert.Check(t, is.Contains(out, "key: absent"))
}

func TestInspectPrintsFingerprintOnly(t *testing.T) {
	for _, kind := range []string{shared.StoreFile, shared.StoreSQLite} {
		t.Run(kind, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "data")
			s, err := server.OpenStore(&shared.ServerConfig{Store: kind, DataDir: dir})
			assert.NilError(t, err)
			assert.NilError(t, s.WriteKey("AIzaSy123"))
			assert.NilError(t, s.Close())

			out, err := runInspect(t, "--data-dir", dir, "--store", kind)
			assert.NilError(t, err)
			assert.Check(t, is.Contains(out, "present, 9 chars"))
			assert.Check(t, is.Contains(out, shared.Fingerprint("AIzaSy123")))
			assert.Check(t, !strings.Contains(out, "AIzaSy123"))
		})
	}
}

func TestInspectMemoryStore(t *testing.T) {
	_, err := runInspect(t, "--store", shared.StoreMemory)
	assert.Check(t, is.ErrorContains(err, "nothing on disk"))
}
