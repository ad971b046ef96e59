package main

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kaiwa-ai/reserve-gateway/internal/carrier"
	"github.com/kaiwa-ai/reserve-gateway/internal/convlog"
	"github.com/kaiwa-ai/reserve-gateway/internal/session"
	"github.com/kaiwa-ai/reserve-gateway/internal/tts"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16384,
	WriteBufferSize: 16384,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type deps struct {
	sessionConfig func() session.Config
	logStore      *convlog.Store
	newTTS        func() *tts.Bridge
}

// registerRoutes wires all HTTP endpoints to the shared mux.
func registerRoutes(mux *http.ServeMux, d deps) {
	mux.HandleFunc("/ws", d.handleMediaStream)
	mux.HandleFunc("/healthz", handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/conversations/{id}/export", d.handleExport)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleMediaStream upgrades the carrier connection and runs the call
// session to completion.
func (d deps) handleMediaStream(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	cfg := d.sessionConfig()
	cfg.TTS = d.newTTS()
	sess := session.New(cfg, carrier.NewConn(ws))
	if err := sess.Run(r.Context()); err != nil {
		slog.Error("session ended with error", "error", err)
	}
}

// handleExport streams a conversation's event log as CSV.
func (d deps) handleExport(w http.ResponseWriter, r *http.Request) {
	if d.logStore == nil {
		http.Error(w, "conversation log store not configured", http.StatusNotFound)
		return
	}
	id := r.PathValue("id")
	events, err := d.logStore.ListEvents(id)
	if err != nil {
		slog.Error("list conversation events", "conversation_id", id, "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+id+".csv")
	if err = convlog.ExportCSV(w, events); err != nil {
		slog.Error("export conversation csv", "conversation_id", id, "error", err)
	}
}
