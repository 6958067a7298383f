package bridge

import "fmt"

// Discovery payload constants shared by every entity.
const (
	manufacturer = "Hunter Douglas"
	model        = "pv2mqtt"
	projectURL   = "https://github.com/nerrad567/shade-bridge"
)

// Home Assistant component names used in discovery config topics.
const (
	componentCover  = "cover"
	componentSensor = "sensor"
	componentScene  = "scene"
	componentButton = "button"
	componentSelect = "select"
)

// Entity categories recognised by the discovery consumer.
const (
	categoryDiagnostic = "diagnostic"
	categoryConfig     = "config"
)

// EntityConfig is the part of a discovery payload common to every entity
// kind. Name marshals as null when unset, which tells the consumer to use
// the device name.
type EntityConfig struct {
	AvailabilityTopic string  `json:"availability_topic"`
	Name              *string `json:"name"`
	DeviceClass       string  `json:"device_class,omitempty"`
	Origin            Origin  `json:"origin"`
	Device            Device  `json:"device"`
	UniqueID          string  `json:"unique_id"`
	EntityCategory    string  `json:"entity_category,omitempty"`
	Icon              string  `json:"icon,omitempty"`
}

// Origin identifies the bridge in discovery payloads.
type Origin struct {
	Name      string `json:"name"`
	SWVersion string `json:"sw_version"`
	URL       string `json:"url"`
}

// newOrigin returns the bridge origin block for a discovery payload.
func newOrigin(version string) Origin {
	return Origin{Name: model, SWVersion: version, URL: projectURL}
}

// Device is the discovery device block that groups entities in the
// consumer's device registry.
type Device struct {
	Name          string   `json:"name"`
	Manufacturer  string   `json:"manufacturer"`
	Model         string   `json:"model"`
	SWVersion     string   `json:"sw_version,omitempty"`
	SuggestedArea string   `json:"suggested_area,omitempty"`
	ViaDevice     string   `json:"via_device,omitempty"`
	Identifiers   []string `json:"identifiers,omitempty"`
}

// CoverConfig is the discovery payload for a shade rail.
type CoverConfig struct {
	EntityConfig

	StateTopic       string `json:"state_topic"`
	PositionTopic    string `json:"position_topic"`
	SetPositionTopic string `json:"set_position_topic"`
	CommandTopic     string `json:"command_topic"`
}

// SceneConfig is the discovery payload for a hub scene.
type SceneConfig struct {
	EntityConfig

	CommandTopic string `json:"command_topic"`
	PayloadOn    string `json:"payload_on"`
}

// SensorConfig is the discovery payload for a read-only value.
type SensorConfig struct {
	EntityConfig

	StateTopic        string `json:"state_topic"`
	UnitOfMeasurement string `json:"unit_of_measurement,omitempty"`
}

// ButtonConfig is the discovery payload for a momentary action.
type ButtonConfig struct {
	EntityConfig

	CommandTopic string `json:"command_topic"`
	PayloadPress string `json:"payload_press,omitempty"`
}

// SelectConfig is the discovery payload for an option picker.
type SelectConfig struct {
	EntityConfig

	CommandTopic string `json:"command_topic"`
	Options      []string `json:"options"`
}

// uniqueID builds the stable entity identifier {serial}-{id}. Sub-entities
// append a suffix ("-battery", "-jog", ...) to the primary id.
func uniqueID(serial, id string) string {
	return serial + "-" + id
}

// configTopic returns the retained discovery config topic for an entity.
func configTopic(prefix, component, uniqueID string) string {
	return fmt.Sprintf("%s/%s/%s/config", prefix, component, uniqueID)
}

// entityName returns a Name pointer for entities that carry their own
// label instead of inheriting the device name.
func entityName(name string) *string {
	return &name
}
