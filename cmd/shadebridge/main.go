// shade-bridge - Hunter Douglas PowerView to MQTT bridge
//
// This is the main entry point for the bridge. It connects a PowerView
// Generation 2 hub to an MQTT broker, publishes Home Assistant discovery
// documents for every shade and scene, and relays commands and motion
// events between the two.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/shade-bridge/internal/bridge"
	"github.com/nerrad567/shade-bridge/internal/bridge/callback"
	"github.com/nerrad567/shade-bridge/internal/hub"
	"github.com/nerrad567/shade-bridge/internal/infrastructure/config"
	"github.com/nerrad567/shade-bridge/internal/infrastructure/influxdb"
	"github.com/nerrad567/shade-bridge/internal/infrastructure/logging"
	"github.com/nerrad567/shade-bridge/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// discoveryWindow bounds the initial mDNS browse when no hub address is
// configured.
const discoveryWindow = 30 * time.Second

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting shade-bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Locate the hub: configured address first, mDNS browse otherwise
	hubClient, user, err := locateHub(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("locating hub: %w", err)
	}
	log.Info("hub located",
		"serial", user.SerialNumber,
		"name", user.HubName.String(),
		"address", hubClient.Addr(),
	)

	// Build the callback URL the hub will push motion events to
	callbackURL, err := buildCallbackURL(cfg, hubClient.Addr(), user.SerialNumber)
	if err != nil {
		return fmt.Errorf("building callback url: %w", err)
	}

	// Create the bridge server
	opts := bridge.Options{
		Transport:       mqttClient,
		Hub:             hubClient,
		User:            *user,
		DiscoveryPrefix: cfg.Discovery.Prefix,
		Version:         version,
		CallbackURL:     callbackURL,
		PollInterval:    cfg.GetPollInterval(),
		HubTimeout:      cfg.GetRequestTimeout(),
		QoS:             byte(cfg.MQTT.QoS),
		Logger:          log,
	}
	if influxClient != nil {
		opts.Metrics = influxClient
	}

	srv, err := bridge.NewServer(opts)
	if err != nil {
		return fmt.Errorf("creating bridge server: %w", err)
	}

	// Start the callback listener
	listener, err := callback.New(cfg.Callback, srv, log)
	if err != nil {
		return fmt.Errorf("creating callback listener: %w", err)
	}
	if err := listener.Start(); err != nil {
		return fmt.Errorf("starting callback listener: %w", err)
	}
	defer func() {
		log.Info("stopping callback listener")
		if closeErr := listener.Close(); closeErr != nil {
			log.Error("error closing callback listener", "error", closeErr)
		}
	}()
	log.Info("callback listener started", "url", callbackURL)

	// Keep browsing for the hub so IP changes are picked up
	if sightings, browseErr := hub.Discover(ctx, cfg.GetRequestTimeout()); browseErr != nil {
		log.Warn("mdns browsing unavailable, hub moves will not be tracked", "error", browseErr)
	} else {
		go func() {
			for sighting := range sightings {
				if enqErr := srv.EnqueueRediscovery(sighting); enqErr != nil {
					return
				}
			}
		}()
	}

	log.Info("initialisation complete, running bridge")

	// Run the event loop until the shutdown signal arrives
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("bridge server: %w", err)
	}

	log.Info("shade-bridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SHADEBRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SHADEBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// locateHub resolves the hub to track at startup.
//
// A configured hub.host short-circuits discovery; its identity is still
// probed so the bridge starts with a known serial number. With no host
// configured, the local network is browsed until a reachable hub answers
// or the discovery window closes.
//
// Parameters:
//   - ctx: Context for cancellation
//   - cfg: Application configuration
//   - log: Logger instance
//
// Returns:
//   - *hub.Client: REST client for the located hub
//   - *hub.UserData: The hub's identity
//   - error: If no reachable hub was found
func locateHub(ctx context.Context, cfg *config.Config, log *logging.Logger) (*hub.Client, *hub.UserData, error) {
	timeout := cfg.GetRequestTimeout()

	if cfg.Hub.Host != "" {
		client := hub.NewClient(cfg.Hub.Host, timeout)
		user, err := client.UserData(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("probing configured hub %q: %w", cfg.Hub.Host, err)
		}
		return client, user, nil
	}

	log.Info("no hub address configured, browsing via mdns", "window", discoveryWindow)

	browseCtx, cancel := context.WithTimeout(ctx, discoveryWindow)
	defer cancel()

	sightings, err := hub.Discover(browseCtx, timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("browsing for hubs: %w", err)
	}

	for sighting := range sightings {
		if !sighting.Reachable || sighting.UserData == nil {
			log.Debug("ignoring unreachable mdns answer", "address", sighting.Addr)
			continue
		}
		return hub.NewClient(sighting.Addr, timeout), sighting.UserData, nil
	}

	return nil, nil, errors.New("no reachable hub found on the local network")
}

// buildCallbackURL assembles the URL registered with the hub for motion
// event pushes.
//
// The advertised address comes from configuration when set; otherwise the
// local address the OS would use to reach the hub is resolved, which is
// correct on multi-homed machines where the wildcard listen address says
// nothing about reachability.
func buildCallbackURL(cfg *config.Config, hubAddr, serial string) (string, error) {
	addr := cfg.Callback.AdvertiseAddress
	if addr == "" {
		local, err := localAddrFor(hubAddr)
		if err != nil {
			return "", err
		}
		addr = local
	}
	return fmt.Sprintf("http://%s:%d/hub/%s/events", addr, cfg.Callback.Port, serial), nil
}

// localAddrFor returns the local IP the OS routes toward addr.
// No packets are sent; a UDP "dial" only selects a source address.
func localAddrFor(addr string) (string, error) {
	conn, err := net.Dial("udp", net.JoinHostPort(addr, "80"))
	if err != nil {
		return "", fmt.Errorf("resolving local address toward hub %q: %w", addr, err)
	}
	defer conn.Close()

	local, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", fmt.Errorf("unexpected local address type %T", conn.LocalAddr())
	}
	return local.IP.String(), nil
}
