package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"keyhost/internal/shared"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	msgKeyRequired = "A non-empty API key is required."
	msgKeyInvalid  = "The API key appears to be invalid."
	msgBodyTooBig  = "Request body too large."
	msgReadFailed  = "Failed to read stored API key."
	msgStoreFailed = "Failed to store the API key."
	msgDropFailed  = "Failed to remove the stored API key."
)

type API struct {
	Store     Store
	Log       logrus.FieldLogger
	BodyLimit int64
	Metrics   *Metrics
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	limit := a.BodyLimit
	if limit <= 0 {
		limit = 2 << 10
	}
	return io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
}

func (a *API) logger(r *http.Request) logrus.FieldLogger {
	if l := loggerFromContext(r.Context()); l != nil {
		return l
	}
	if a.Log != nil {
		return a.Log
	}
	return logrus.StandardLogger()
}

// Key dispatches the key resource by method.
func (a *API) Key(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		a.GetKey(w, r)
	case http.MethodPost:
		a.PostKey(w, r)
	case http.MethodDelete:
		a.DeleteKey(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (a *API) GetKey(w http.ResponseWriter, r *http.Request) {
	key, err := a.Store.ReadKey()
	if err != nil {
		a.logger(r).WithError(err).Error("failed to read stored API key")
		a.Metrics.keyOp("read", resultError)
		http.Error(w, msgReadFailed, http.StatusInternalServerError)
		return
	}
	if key == "" {
		a.Metrics.keyOp("read", resultAbsent)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	a.Metrics.keyOp("read", resultOK)
	writeJSON(w, http.StatusOK, shared.KeyResponse{Key: key})
}

func (a *API) PostKey(w http.ResponseWriter, r *http.Request) {
	body, err := a.readBody(w, r)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			a.Metrics.keyOp("write", resultInvalid)
			http.Error(w, msgBodyTooBig, http.StatusRequestEntityTooLarge)
			return
		}
		a.Metrics.keyOp("write", resultInvalid)
		http.Error(w, msgKeyRequired, http.StatusBadRequest)
		return
	}

	key, msg := parseKey(body)
	if msg != "" {
		a.Metrics.keyOp("write", resultInvalid)
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	if err := a.Store.WriteKey(key); err != nil {
		a.logger(r).WithError(err).Error("failed to store API key")
		a.Metrics.keyOp("write", resultError)
		http.Error(w, msgStoreFailed, http.StatusInternalServerError)
		return
	}
	a.logger(r).WithField("fingerprint", shared.Fingerprint(key)).Info("stored API key")
	a.Metrics.keyOp("write", resultOK)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) DeleteKey(w http.ResponseWriter, r *http.Request) {
	if err := a.Store.DeleteKey(); err != nil {
		a.logger(r).WithError(err).Error("failed to delete API key")
		a.Metrics.keyOp("delete", resultError)
		http.Error(w, msgDropFailed, http.StatusInternalServerError)
		return
	}
	a.logger(r).Info("removed stored API key")
	a.Metrics.keyOp("delete", resultOK)
	w.WriteHeader(http.StatusNoContent)
}

// parseKey extracts and trims the "key" field. A non-empty msg means the
// request is rejected with that message.
func parseKey(body []byte) (key string, msg string) {
	var req shared.KeyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", msgKeyRequired
	}
	if len(req.Key) == 0 {
		return "", msgKeyRequired
	}
	var raw string
	if err := json.Unmarshal(req.Key, &raw); err != nil {
		return "", msgKeyRequired
	}
	key = strings.TrimSpace(raw)
	if key == "" {
		return "", msgKeyRequired
	}
	if utf8.RuneCountInString(key) > shared.MaxKeyLength {
		return "", msgKeyInvalid
	}
	return key, ""
}
