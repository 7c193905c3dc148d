package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/avencall/homegrid-core/internal/history"
)

// defaultHistoryLimit bounds unqualified history queries.
const defaultHistoryLimit = 50

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Get("/grid", s.handleGrid)

		r.Route("/sensors", func(r chi.Router) {
			r.Get("/", s.handleListSensors)
			r.Get("/{id}", s.handleGetSensor)
		})

		r.Route("/equipments", func(r chi.Router) {
			r.Get("/", s.handleListEquipments)
			r.Get("/{id}", s.handleGetEquipment)
		})

		r.Get("/rules", s.handleListRules)
		r.Get("/positions", s.handleListPositions)
		r.Get("/history", s.handleHistory)
	})

	return r
}

// handleHealth reports the agent and each wired component. Any failing
// component degrades the response to 503 so probes catch broken
// dependencies, not just a dead listener.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	components := make(map[string]string, len(s.components))
	healthy := true
	for name, checker := range s.components {
		if err := checker.HealthCheck(r.Context()); err != nil {
			components[name] = err.Error()
			healthy = false
		} else {
			components[name] = "ok"
		}
	}

	status := http.StatusOK
	overall := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	writeJSON(w, status, map[string]any{
		"status":     overall,
		"version":    s.version,
		"components": components,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"house_id":   s.house.HouseID(),
		"last_sync":  s.house.LastSync(),
		"sensors":    len(s.house.Sensors()),
		"equipments": len(s.house.Equipments()),
		"rules":      len(s.house.Rules()),
		"positions":  len(s.house.Positions()),
	}
	if pos := s.house.Position(); pos != nil {
		body["walking_at"] = pos
	}
	if s.connState != nil {
		body["realtime"] = s.connState()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleGrid(w http.ResponseWriter, _ *http.Request) {
	g := s.house.Grid()
	writeJSON(w, http.StatusOK, map[string]any{
		"rows": g.Height(),
		"cols": g.Width(),
		"grid": g,
	})
}

func (s *Server) handleListSensors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.house.Sensors())
}

func (s *Server) handleGetSensor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "sensor id must be numeric")
		return
	}
	sn, err := s.house.Sensor(id)
	if err != nil {
		writeNotFound(w, "sensor not found")
		return
	}
	writeJSON(w, http.StatusOK, sn)
}

func (s *Server) handleListEquipments(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.house.Equipments())
}

// handleGetEquipment resolves through the role-filtered listing, so
// equipment hidden from the agent's role reads as absent rather than
// forbidden.
func (s *Server) handleGetEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "equipment id must be numeric")
		return
	}
	for _, e := range s.house.Equipments() {
		if e.ID == id {
			writeJSON(w, http.StatusOK, e)
			return
		}
	}
	writeNotFound(w, "equipment not found")
}

func (s *Server) handleListRules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.house.Rules())
}

func (s *Server) handleListPositions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.house.Positions())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeNotFound(w, "event history not enabled")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	var (
		events []history.Event
		err    error
	)
	if cat := r.URL.Query().Get("category"); cat != "" {
		events, err = s.history.ByCategory(r.Context(), s.house.HouseID(), history.Category(cat), limit)
	} else {
		events, err = s.history.Recent(r.Context(), s.house.HouseID(), limit)
	}
	if err != nil {
		s.logger.Error("history query failed", "error", err)
		writeInternalError(w, "history query failed")
		return
	}
	if events == nil {
		events = []history.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
