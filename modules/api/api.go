package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/grafana/dskit/services"

	"github.com/zachfi/nowplaying/pkg/pipeline"
)

var module = "api"

// API serves the track history over HTTP and streams updates to websocket
// clients.
type API struct {
	services.Service
	cfg     *Config
	logger  *slog.Logger
	session *pipeline.Session

	hub      *hub
	upgrader websocket.Upgrader
}

// New registers the API routes on router and its websocket feed as a sink
// of session.
func New(cfg Config, session *pipeline.Session, router *mux.Router, logger slog.Logger) (*API, error) {
	if cfg.ClientBuffer <= 0 {
		cfg.ClientBuffer = 16
	}

	a := &API{
		cfg:     &cfg,
		logger:  logger.With("module", module),
		session: session,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	a.hub = newHub(cfg.ClientBuffer, a.logger)
	session.Register(a.hub)

	r := router.PathPrefix(cfg.PathPrefix).Subrouter()
	r.HandleFunc("/tracks", a.tracksHandler).Methods(http.MethodGet)
	r.HandleFunc("/tracks/latest", a.latestHandler).Methods(http.MethodGet)
	r.HandleFunc("/ws", a.wsHandler).Methods(http.MethodGet)

	a.Service = services.NewIdleService(nil, a.stopping)

	return a, nil
}

func (a *API) stopping(_ error) error {
	a.logger.Info("stopping", "clients", a.hub.len())
	a.hub.closeAll()
	return nil
}

func (a *API) tracksHandler(w http.ResponseWriter, _ *http.Request) {
	records := a.session.History().Snapshot()

	out := make([]map[string]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Map())
	}
	a.writeJSON(w, out)
}

func (a *API) latestHandler(w http.ResponseWriter, _ *http.Request) {
	r, ok := a.session.History().Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	a.writeJSON(w, r.Map())
}

func (a *API) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	a.hub.serve(conn)
}

func (a *API) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("error writing response", "err", err)
	}
}
