// Package config provides configuration loading and validation for shade-bridge.
//
// Configuration is loaded from a YAML file with three layers of precedence:
//
//  1. Hardcoded defaults (lowest)
//  2. YAML file values
//  3. SHADEBRIDGE_* environment variables (highest)
//
// Secrets (broker password, InfluxDB token) should be supplied via
// environment variables rather than committed to the config file.
//
// Example:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.MQTT.Broker.Host)
package config
