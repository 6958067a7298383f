package mqtt

import "fmt"

// Topic prefixes for the bridge's MQTT namespace.
//
// All bridge topics live under pv2mqtt and carry the hub serial so that
// multiple hubs can share one broker without colliding:
//
//	pv2mqtt/{kind}/{serial}/{id}/{leaf}
const (
	// TopicPrefix is the base for all bridge topics.
	TopicPrefix = "pv2mqtt"

	// TopicPrefixShade is the base for per-shade topics.
	TopicPrefixShade = "pv2mqtt/shade"

	// TopicPrefixScene is the base for per-scene topics.
	TopicPrefixScene = "pv2mqtt/scene"

	// TopicPrefixHub is the base for per-hub topics.
	TopicPrefixHub = "pv2mqtt/hub"
)

// Topics provides builders for bridge MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.ShadeState("A1B2C3", "7")
//	// Returns: "pv2mqtt/shade/A1B2C3/7/state"
type Topics struct{}

// =============================================================================
// Shade Topics
// =============================================================================

// ShadeState returns the topic for a shade's cover state (open/closed/...).
//
// Example: pv2mqtt/shade/A1B2C3/7/state
func (Topics) ShadeState(serial, shadeID string) string {
	return fmt.Sprintf("%s/%s/%s/state", TopicPrefixShade, serial, shadeID)
}

// ShadePosition returns the topic for a shade's position percentage.
//
// Example: pv2mqtt/shade/A1B2C3/7/position
func (Topics) ShadePosition(serial, shadeID string) string {
	return fmt.Sprintf("%s/%s/%s/position", TopicPrefixShade, serial, shadeID)
}

// ShadeBattery returns the topic for a shade's battery level.
//
// Example: pv2mqtt/shade/A1B2C3/7/battery
func (Topics) ShadeBattery(serial, shadeID string) string {
	return fmt.Sprintf("%s/%s/%s/battery", TopicPrefixShade, serial, shadeID)
}

// ShadeSignal returns the topic for a shade's radio signal strength.
//
// Example: pv2mqtt/shade/A1B2C3/7/signal
func (Topics) ShadeSignal(serial, shadeID string) string {
	return fmt.Sprintf("%s/%s/%s/signal", TopicPrefixShade, serial, shadeID)
}

// ShadeAvailability returns the availability topic for a shade.
//
// Example: pv2mqtt/shade/A1B2C3/7/availability
func (Topics) ShadeAvailability(serial, shadeID string) string {
	return fmt.Sprintf("%s/%s/%s/availability", TopicPrefixShade, serial, shadeID)
}

// ShadeSetPosition returns the inbound topic for position commands.
//
// Example: pv2mqtt/shade/A1B2C3/7/set_position
func (Topics) ShadeSetPosition(serial, shadeID string) string {
	return fmt.Sprintf("%s/%s/%s/set_position", TopicPrefixShade, serial, shadeID)
}

// ShadeCommand returns the inbound topic for named shade commands.
//
// Example: pv2mqtt/shade/A1B2C3/7/command
func (Topics) ShadeCommand(serial, shadeID string) string {
	return fmt.Sprintf("%s/%s/%s/command", TopicPrefixShade, serial, shadeID)
}

// =============================================================================
// Scene Topics
// =============================================================================

// SceneActivate returns the inbound topic for scene activation.
//
// Example: pv2mqtt/scene/A1B2C3/12/activate
func (Topics) SceneActivate(serial, sceneID string) string {
	return fmt.Sprintf("%s/%s/%s/activate", TopicPrefixScene, serial, sceneID)
}

// SceneAvailability returns the availability topic for a scene.
//
// Example: pv2mqtt/scene/A1B2C3/12/availability
func (Topics) SceneAvailability(serial, sceneID string) string {
	return fmt.Sprintf("%s/%s/%s/availability", TopicPrefixScene, serial, sceneID)
}

// =============================================================================
// Hub Topics
// =============================================================================

// HubStatus returns the topic for hub reachability status.
//
// Example: pv2mqtt/hub/A1B2C3/status
func (Topics) HubStatus(serial string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefixHub, serial)
}

// HubIP returns the topic carrying the hub's current IP address.
//
// Example: pv2mqtt/hub/A1B2C3/ip
func (Topics) HubIP(serial string) string {
	return fmt.Sprintf("%s/%s/ip", TopicPrefixHub, serial)
}

// HubAvailability returns the availability topic for hub diagnostic entities.
//
// Example: pv2mqtt/hub/A1B2C3/availability
func (Topics) HubAvailability(serial string) string {
	return fmt.Sprintf("%s/%s/availability", TopicPrefixHub, serial)
}

// =============================================================================
// Bridge Topics
// =============================================================================

// BridgeStatus returns the bridge process status topic.
// This is also the LWT topic: the broker publishes "offline" here if the
// bridge disconnects unexpectedly.
//
// Example: pv2mqtt/bridge/status
func (Topics) BridgeStatus() string {
	return fmt.Sprintf("%s/bridge/status", TopicPrefix)
}

// DiscoveryStatus returns Home Assistant's birth/will topic under the
// configured discovery prefix.
//
// Example: homeassistant/status
func (Topics) DiscoveryStatus(prefix string) string {
	return fmt.Sprintf("%s/status", prefix)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllShadeCommands returns a pattern matching command topics for every shade.
//
// Pattern: pv2mqtt/shade/+/+/command
func (Topics) AllShadeCommands() string {
	return fmt.Sprintf("%s/+/+/command", TopicPrefixShade)
}

// AllShadeSetPositions returns a pattern matching set_position topics for
// every shade.
//
// Pattern: pv2mqtt/shade/+/+/set_position
func (Topics) AllShadeSetPositions() string {
	return fmt.Sprintf("%s/+/+/set_position", TopicPrefixShade)
}

// AllSceneActivations returns a pattern matching activation topics for every
// scene.
//
// Pattern: pv2mqtt/scene/+/+/activate
func (Topics) AllSceneActivations() string {
	return fmt.Sprintf("%s/+/+/activate", TopicPrefixScene)
}

// AllTopics returns a pattern matching every bridge topic.
// Use with caution - this receives ALL traffic.
//
// Pattern: pv2mqtt/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
