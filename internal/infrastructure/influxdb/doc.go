// Package influxdb provides InfluxDB connectivity for the shade bridge.
//
// It wraps the official influxdb-client-go v2 library's non-blocking
// write API behind the three samples the bridge records.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Shade position history
//   - Battery level tracking
//   - Hub reachability
//
// The integration is optional and disabled by default; the bridge runs
// fully without it.
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    Enabled: true,
//	    URL:     "http://localhost:8086",
//	    Token:   "your-token",
//	    Org:     "home",
//	    Bucket:  "shades",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteShadePosition("A1B2C3", "7", 42)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection errors are returned directly from Connect.
package influxdb
