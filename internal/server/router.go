package server

import (
	"net/http"
	"strings"

	"keyhost/internal/shared"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewHandler assembles the full HTTP surface. From the outside in: request
// logging, request metrics, the reserved-path guard, then routing to the key
// resource, /metrics, and static files. reserved names URL prefixes refused
// alongside /data (see ReservedPrefixes).
func NewHandler(api *API, static http.Handler, reserved ...string) http.Handler {
	r := mux.NewRouter()
	r.MatcherFunc(isKeyPath).HandlerFunc(api.Key)
	if api.Metrics != nil {
		r.Handle("/metrics", api.Metrics.Handler())
	}
	r.PathPrefix("/").Handler(static)

	var log logrus.FieldLogger = api.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	var h http.Handler = r
	h = ReservedPathGuard(h, reserved...)
	h = api.Metrics.Instrument(h)
	h = RequestLogger(log, h)
	return h
}

// isKeyPath matches the key resource ignoring case and one trailing slash.
func isKeyPath(r *http.Request, _ *mux.RouteMatch) bool {
	return strings.EqualFold(strings.TrimSuffix(r.URL.Path, "/"), shared.KeyPath)
}
