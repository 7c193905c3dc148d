// homegrid is the edge agent for the homegrid smart-home platform.
//
// It mirrors one house's floor plan, sensors, equipments and automation
// rules from the backend, keeps the mirror live over the realtime
// WebSocket, and re-exposes the state locally: a read-only status API,
// retained MQTT topics, InfluxDB telemetry and a SQLite event history.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/avencall/homegrid-core/internal/api"
	"github.com/avencall/homegrid-core/internal/apiclient"
	"github.com/avencall/homegrid-core/internal/bridge"
	"github.com/avencall/homegrid-core/internal/history"
	"github.com/avencall/homegrid-core/internal/infrastructure/config"
	"github.com/avencall/homegrid-core/internal/infrastructure/database"
	"github.com/avencall/homegrid-core/internal/infrastructure/logging"
	"github.com/avencall/homegrid-core/internal/infrastructure/mqtt"
	"github.com/avencall/homegrid-core/internal/realtime"
	"github.com/avencall/homegrid-core/internal/session"
	"github.com/avencall/homegrid-core/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting homegrid agent",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)

	// Each run gets its own instance id, so overlapping restarts never
	// fight over MQTT client identity or show up ambiguously in logs.
	instanceID := uuid.NewString()
	log.Info("agent instance", "name", cfg.Agent.Name, "instance_id", instanceID, "house_id", cfg.Agent.HouseID)

	// Local event history
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	store, err := history.NewStore(ctx, db)
	if err != nil {
		return fmt.Errorf("initialising event history: %w", err)
	}

	// InfluxDB telemetry (optional)
	var influxClient *telemetry.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = telemetry.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	// MQTT bridge (optional)
	var (
		mqttClient *mqtt.Client
		houseMQTT  *bridge.Bridge
	)
	if cfg.MQTT.Enabled {
		mqttCfg := cfg.MQTT
		mqttCfg.Broker.ClientID = fmt.Sprintf("%s-%s", mqttCfg.Broker.ClientID, instanceID[:8])

		mqttClient, err = mqtt.Connect(mqttCfg)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", mqttCfg.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Backend REST client
	backend := apiclient.New(apiclient.Options{
		BaseURL: cfg.Backend.BaseURL,
		Token:   cfg.Backend.Token,
		Timeout: cfg.GetBackendTimeout(),
		Logger:  log,
	})

	// House session. The MQTT bridge publishes for the session and the
	// session executes the bridge's commands, so the driver is wired after
	// both exist.
	sinks := session.Sinks{Recorder: store}
	if influxClient != nil {
		sinks.Metrics = influxClient
	}
	if mqttClient != nil {
		houseMQTT = bridge.New(bridge.Options{
			HouseID: cfg.Agent.HouseID,
			QoS:     byte(cfg.MQTT.QoS),
			Broker:  mqttClient,
			Logger:  log,
		})
		sinks.Publisher = houseMQTT
	}

	sess := session.New(session.Options{
		HouseID:     cfg.Agent.HouseID,
		Role:        cfg.Agent.Role,
		IsOwner:     cfg.Agent.Role == "owner",
		AutoTrigger: cfg.Automation.AutoTrigger,
		Backend:     backend,
		Logger:      log,
		Sinks:       sinks,
	})

	if houseMQTT != nil {
		houseMQTT.SetDriver(sess)
		if err := houseMQTT.Start(ctx); err != nil {
			return fmt.Errorf("starting MQTT bridge: %w", err)
		}
		log.Info("MQTT bridge started")
	}

	// Realtime dispatcher and client
	dispatcher := realtime.NewDispatcher(cfg.Agent.HouseID, log)
	sess.BindDispatcher(ctx, dispatcher)

	rt := realtime.NewClient(realtime.Options{
		URL:                  wsURL(cfg),
		PingInterval:         cfg.GetPingInterval(),
		ReconnectBaseDelay:   cfg.GetReconnectBaseDelay(),
		MaxReconnectAttempts: cfg.Realtime.MaxReconnectAttempts,
		MaxMessageSize:       int64(cfg.Realtime.MaxMessageSize),
		Logger:               log,
		Dispatcher:           dispatcher,
		OnConnect: func(ctx context.Context) {
			if err := sess.Resync(ctx); err != nil {
				log.Error("mirror resync failed", "error", err)
			}
		},
	})

	rtDone := make(chan error, 1)
	go func() { rtDone <- rt.Run(ctx) }()

	// Local status API (optional)
	if cfg.API.Enabled {
		components := map[string]api.HealthChecker{
			"database": db,
		}
		if mqttClient != nil {
			components["mqtt"] = mqttClient
		}
		if influxClient != nil {
			components["influxdb"] = influxClient
		}

		statusAPI, err := api.New(api.Deps{
			Config:     cfg.API,
			Logger:     log,
			House:      sess,
			History:    store,
			Components: components,
			ConnState:  func() string { return rt.State().String() },
			Version:    version,
		})
		if err != nil {
			return fmt.Errorf("creating status api: %w", err)
		}
		if err := statusAPI.Start(ctx); err != nil {
			return fmt.Errorf("starting status api: %w", err)
		}
		defer func() {
			log.Info("stopping status api")
			if closeErr := statusAPI.Close(); closeErr != nil {
				log.Error("error closing status api", "error", closeErr)
			}
		}()
	} else {
		log.Info("status api disabled")
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, cleaning up")
		stopWalk(sess, log)
		if closeErr := rt.Close(); closeErr != nil {
			log.Warn("realtime close", "error", closeErr)
		}
		<-rtDone
	case err := <-rtDone:
		// The realtime loop only returns early when the reconnect budget
		// is exhausted; the agent keeps serving its stale mirror.
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("realtime session ended", "error", err)
		}
		<-ctx.Done()
		log.Info("shutdown signal received, cleaning up")
		stopWalk(sess, log)
	}

	log.Info("homegrid agent stopped")
	return nil
}

// stopWalk withdraws the agent's avatar if a walk is active. Best effort:
// the backend prunes dead positions anyway, this just keeps the floor plan
// tidy on clean shutdowns.
func stopWalk(sess *session.Session, log *logging.Logger) {
	if sess.Position() == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := sess.StopWalk(ctx); err != nil {
		log.Warn("clearing position on shutdown failed", "error", err)
	}
}

// getConfigPath returns the configuration file path.
// Uses HOMEGRID_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HOMEGRID_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// wsURL derives the realtime endpoint, passing the bearer token as a
// query parameter since websocket dials cannot carry custom auth headers
// through every proxy.
func wsURL(cfg *config.Config) string {
	endpoint := cfg.WSEndpoint()
	if cfg.Backend.Token == "" {
		return endpoint
	}
	return endpoint + "?token=" + url.QueryEscape(cfg.Backend.Token)
}
