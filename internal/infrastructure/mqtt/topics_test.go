package mqtt

import "testing"

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		name     string
		builder  func() string
		expected string
	}{
		{
			name: "ShadeState",
			builder: func() string {
				return Topics{}.ShadeState("A1B2C3", "7")
			},
			expected: "pv2mqtt/shade/A1B2C3/7/state",
		},
		{
			name: "ShadeState secondary rail",
			builder: func() string {
				return Topics{}.ShadeState("A1B2C3", "7_2")
			},
			expected: "pv2mqtt/shade/A1B2C3/7_2/state",
		},
		{
			name: "ShadePosition",
			builder: func() string {
				return Topics{}.ShadePosition("A1B2C3", "7")
			},
			expected: "pv2mqtt/shade/A1B2C3/7/position",
		},
		{
			name: "ShadeBattery",
			builder: func() string {
				return Topics{}.ShadeBattery("A1B2C3", "7")
			},
			expected: "pv2mqtt/shade/A1B2C3/7/battery",
		},
		{
			name: "ShadeSignal",
			builder: func() string {
				return Topics{}.ShadeSignal("A1B2C3", "7")
			},
			expected: "pv2mqtt/shade/A1B2C3/7/signal",
		},
		{
			name: "ShadeAvailability",
			builder: func() string {
				return Topics{}.ShadeAvailability("A1B2C3", "7")
			},
			expected: "pv2mqtt/shade/A1B2C3/7/availability",
		},
		{
			name: "ShadeSetPosition",
			builder: func() string {
				return Topics{}.ShadeSetPosition("A1B2C3", "7")
			},
			expected: "pv2mqtt/shade/A1B2C3/7/set_position",
		},
		{
			name: "ShadeCommand",
			builder: func() string {
				return Topics{}.ShadeCommand("A1B2C3", "7")
			},
			expected: "pv2mqtt/shade/A1B2C3/7/command",
		},
		{
			name: "SceneActivate",
			builder: func() string {
				return Topics{}.SceneActivate("A1B2C3", "12")
			},
			expected: "pv2mqtt/scene/A1B2C3/12/activate",
		},
		{
			name: "SceneAvailability",
			builder: func() string {
				return Topics{}.SceneAvailability("A1B2C3", "12")
			},
			expected: "pv2mqtt/scene/A1B2C3/12/availability",
		},
		{
			name: "HubStatus",
			builder: func() string {
				return Topics{}.HubStatus("A1B2C3")
			},
			expected: "pv2mqtt/hub/A1B2C3/status",
		},
		{
			name: "HubIP",
			builder: func() string {
				return Topics{}.HubIP("A1B2C3")
			},
			expected: "pv2mqtt/hub/A1B2C3/ip",
		},
		{
			name: "HubAvailability",
			builder: func() string {
				return Topics{}.HubAvailability("A1B2C3")
			},
			expected: "pv2mqtt/hub/A1B2C3/availability",
		},
		{
			name: "BridgeStatus",
			builder: func() string {
				return Topics{}.BridgeStatus()
			},
			expected: "pv2mqtt/bridge/status",
		},
		{
			name: "DiscoveryStatus",
			builder: func() string {
				return Topics{}.DiscoveryStatus("homeassistant")
			},
			expected: "homeassistant/status",
		},
		{
			name: "AllShadeCommands",
			builder: func() string {
				return Topics{}.AllShadeCommands()
			},
			expected: "pv2mqtt/shade/+/+/command",
		},
		{
			name: "AllShadeSetPositions",
			builder: func() string {
				return Topics{}.AllShadeSetPositions()
			},
			expected: "pv2mqtt/shade/+/+/set_position",
		},
		{
			name: "AllSceneActivations",
			builder: func() string {
				return Topics{}.AllSceneActivations()
			},
			expected: "pv2mqtt/scene/+/+/activate",
		},
		{
			name: "AllTopics",
			builder: func() string {
				return Topics{}.AllTopics()
			},
			expected: "pv2mqtt/#",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.builder()
			if result != tt.expected {
				t.Errorf("%s() = %q, want %q", tt.name, result, tt.expected)
			}
		})
	}
}
