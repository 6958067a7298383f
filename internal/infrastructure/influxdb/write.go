package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// writePoint batches one sample for asynchronous delivery. A no-op when
// the client is disconnected, so callers never need to guard.
func (c *Client) writePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}

// WriteShadePosition records a shade position sample.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Position history lets dashboards show shade movement over time and
// correlate it with scene activations.
//
// Parameters:
//   - hubSerial: Serial number of the owning hub
//   - shadeID: Shade identifier (includes the _2 suffix for secondary rails)
//   - percent: Position as 0-100, where 100 is fully open
//
// Example:
//
//	client.WriteShadePosition("A1B2C3", "7", 42)
func (c *Client) WriteShadePosition(hubSerial, shadeID string, percent int) {
	c.writePoint(
		"shade_position",
		map[string]string{
			"hub_serial": hubSerial,
			"shade_id":   shadeID,
		},
		map[string]interface{}{
			"percent": percent,
		},
	)
}

// WriteShadeBattery records a shade battery sample.
//
// Parameters:
//   - hubSerial: Serial number of the owning hub
//   - shadeID: Shade identifier
//   - level: Battery strength reported by the hub
//   - status: Coarse battery status (0-3 per the hub's enumeration)
func (c *Client) WriteShadeBattery(hubSerial, shadeID string, level int, status int) {
	c.writePoint(
		"shade_battery",
		map[string]string{
			"hub_serial": hubSerial,
			"shade_id":   shadeID,
		},
		map[string]interface{}{
			"level":  level,
			"status": status,
		},
	)
}

// WriteHubReachability records whether the hub answered its last poll.
//
// Parameters:
//   - hubSerial: Serial number of the hub
//   - reachable: true if the hub responded
func (c *Client) WriteHubReachability(hubSerial string, reachable bool) {
	up := 0
	if reachable {
		up = 1
	}

	c.writePoint(
		"hub_reachability",
		map[string]string{
			"hub_serial": hubSerial,
		},
		map[string]interface{}{
			"up": up,
		},
	)
}
