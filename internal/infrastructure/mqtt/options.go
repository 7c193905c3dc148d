package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/avencall/homegrid-core/internal/infrastructure/config"
)

const (
	// defaultConnectTimeout is the maximum wait for the initial connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum wait for publish acknowledgement.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the wait for pending operations on
	// disconnect, in milliseconds.
	defaultDisconnectQuiesce = 1000

	// defaultKeepAlive is the connection keepalive interval.
	defaultKeepAlive = 60 * time.Second

	// reconnectInitialDelay and reconnectMaxDelay bound paho's retry backoff.
	reconnectInitialDelay = 2 * time.Second
	reconnectMaxDelay     = 60 * time.Second

	// maxQoS is the highest QoS level MQTT defines.
	maxQoS = 2

	tlsMinVersion = tls.VersionTLS12
)

// buildClientOptions maps the agent configuration onto paho options:
// broker URL, client identity, credentials, clean session and
// auto-reconnect with backoff.
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))
	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(reconnectInitialDelay)
	opts.SetMaxReconnectInterval(reconnectMaxDelay)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}

	return opts
}

// configureLWT registers the Last Will so subscribers see the agent go
// offline when it crashes or loses the network. Retained so late joiners
// get the last status.
func configureLWT(opts *pahomqtt.ClientOptions, clientID string) {
	willTopic := Topics{}.AgentStatus()
	willPayload := fmt.Sprintf(
		`{"status":"offline","client_id":"%s","reason":"unexpected_disconnect","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
	opts.SetWill(willTopic, willPayload, 1, true)
}

func buildOnlinePayload(clientID string) string {
	return fmt.Sprintf(
		`{"status":"online","client_id":"%s","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
}

func buildOfflinePayload(clientID string) string {
	return fmt.Sprintf(
		`{"status":"offline","client_id":"%s","reason":"graceful_shutdown","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
}
