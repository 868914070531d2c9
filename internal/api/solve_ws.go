package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"routesolver/internal/model"
	"routesolver/internal/solver"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

// SolveWSHandler handles GET /v1/solve/ws. The client sends one
// SolveRequest as JSON; the server streams progress events while the
// annealer runs and finishes with a solve.result message carrying the
// persisted run. Events travel through the broker, so a Redis-backed
// deployment fans them out across instances.
func (s *Server) SolveWSHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	var req model.SolveRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(Event{Type: "solve.error", Data: map[string]any{"detail": "invalid JSON: " + err.Error()}})
		return
	}
	if err := validateSolveRequest(&req, s.Cfg.Limits); err != nil {
		_ = conn.WriteJSON(Event{Type: "solve.error", Data: map[string]any{"detail": err.Error()}})
		return
	}

	jobID := uuid.NewString()
	ch := s.Broker.Subscribe(jobID)

	inst := s.resolveInstance(&req)
	cfg := solver.ConfigFromWire(req.Config)
	cfg.Progress = func(ev solver.ProgressEvent) {
		s.Broker.Publish(jobID, Event{Type: "solve.progress", Data: map[string]any{
			"iteration": ev.Iteration,
			"temp":      ev.Temp,
			"current":   ev.Current,
			"best":      ev.Best,
		}})
	}

	// terminal events bypass the broker's lossy buffer
	done := make(chan Event, 1)
	go func() {
		res, err := solver.Solve(inst, cfg)
		if err != nil {
			done <- Event{Type: "solve.error", Data: map[string]any{"detail": err.Error()}}
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		run, err := s.Store.CreateRun(ctx, model.Run{Request: req, Result: res.Wire()})
		if err != nil {
			done <- Event{Type: "solve.error", Data: map[string]any{"detail": err.Error()}}
			return
		}
		done <- Event{Type: "solve.result", Data: map[string]any{"run": run}}
	}()

	// single writer: only this loop touches the connection
	for {
		var evt Event
		select {
		case e, ok := <-ch:
			if !ok {
				evt = <-done
			} else {
				evt = e
			}
		case evt = <-done:
		}
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(evt); err != nil {
			break
		}
		if evt.Type == "solve.result" || evt.Type == "solve.error" {
			break
		}
	}
	s.Broker.Unsubscribe(jobID, ch)
}
