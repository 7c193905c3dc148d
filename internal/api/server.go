package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avencall/homegrid-core/internal/automation"
	"github.com/avencall/homegrid-core/internal/equipment"
	"github.com/avencall/homegrid-core/internal/grid"
	"github.com/avencall/homegrid-core/internal/history"
	"github.com/avencall/homegrid-core/internal/infrastructure/config"
	"github.com/avencall/homegrid-core/internal/movement"
	"github.com/avencall/homegrid-core/internal/sensor"
)

// gracefulShutdownTimeout bounds the wait for in-flight requests during
// shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// House is the slice of the session mirror the API reads. Satisfied by
// session.Session.
type House interface {
	HouseID() int
	LastSync() time.Time
	Grid() grid.Grid
	Sensors() []sensor.Sensor
	Sensor(id int) (sensor.Sensor, error)
	Equipments() []equipment.Equipment
	Rules() []automation.Rule
	Positions() []movement.UserPosition
	Position() *grid.Coord
}

// HistoryReader reads the local event history. Satisfied by history.Store.
type HistoryReader interface {
	Recent(ctx context.Context, houseID, limit int) ([]history.Event, error)
	ByCategory(ctx context.Context, houseID int, cat history.Category, limit int) ([]history.Event, error)
}

// HealthChecker reports one component's liveness.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Logger is the logging surface the server needs.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Deps holds the dependencies required by the status API server.
type Deps struct {
	Config  config.APIConfig
	Logger  Logger
	House   House
	History HistoryReader // optional

	// Components are health-checked under /health; keys name them in the
	// response.
	Components map[string]HealthChecker

	// ConnState reports the realtime connection's state, if wired.
	ConnState func() string

	Version string
}

// Server is the local read-only status API. It exposes the mirrored house
// state and the event history to tools on the same network; all writes
// keep going through the backend.
type Server struct {
	cfg        config.APIConfig
	logger     Logger
	house      House
	history    HistoryReader
	components map[string]HealthChecker
	connState  func() string
	version    string
	server     *http.Server
}

// New creates a server; Start begins listening.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, errors.New("api: logger is required")
	}
	if deps.House == nil {
		return nil, errors.New("api: house mirror is required")
	}

	return &Server{
		cfg:        deps.Config,
		logger:     deps.Logger,
		house:      deps.House,
		history:    deps.History,
		components: deps.Components,
		connState:  deps.ConnState,
		version:    deps.Version,
	}, nil
}

// Start launches the HTTP listener in a background goroutine.
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("status api error", "error", err)
		}
	}()

	s.logger.Info("status api listening", "address", s.server.Addr)
	return nil
}

// Close drains in-flight requests, then stops the listener.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down status api: %w", err)
	}
	return nil
}
