package hub

import (
	"encoding/json"
	"testing"
)

func TestBase64Name_Unmarshal(t *testing.T) {
	var name Base64Name
	// "Living Room" base64-encoded.
	if err := json.Unmarshal([]byte(`"TGl2aW5nIFJvb20="`), &name); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if name.String() != "Living Room" {
		t.Errorf("decoded name = %q, want %q", name, "Living Room")
	}
}

func TestBase64Name_Marshal(t *testing.T) {
	name := Base64Name("Living Room")

	data, err := json.Marshal(name)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	if string(data) != `"TGl2aW5nIFJvb20="` {
		t.Errorf("encoded name = %s, want %q", data, "TGl2aW5nIFJvb20=")
	}
}

func TestBase64Name_UnmarshalInvalid(t *testing.T) {
	var name Base64Name
	if err := json.Unmarshal([]byte(`"not base64!!!"`), &name); err == nil {
		t.Error("Unmarshal() expected error for invalid base64")
	}
}

func TestPercentToRaw(t *testing.T) {
	tests := []struct {
		percent int
		want    uint16
	}{
		{0, 0},
		{100, 65535},
		{50, 32767},
		{-5, 0},
		{150, 65535},
	}

	for _, tt := range tests {
		if got := PercentToRaw(tt.percent); got != tt.want {
			t.Errorf("PercentToRaw(%d) = %d, want %d", tt.percent, got, tt.want)
		}
	}
}

func TestPercentToRaw_Monotonic(t *testing.T) {
	prev := PercentToRaw(0)
	for p := 1; p <= 100; p++ {
		cur := PercentToRaw(p)
		if cur < prev {
			t.Fatalf("PercentToRaw(%d) = %d < PercentToRaw(%d) = %d", p, cur, p-1, prev)
		}
		prev = cur
	}
}

func TestRawToPercent_RoundTrip(t *testing.T) {
	for p := 0; p <= 100; p++ {
		if got := RawToPercent(PercentToRaw(p)); got != p {
			t.Errorf("RawToPercent(PercentToRaw(%d)) = %d, want %d", p, got, p)
		}
	}
}

func TestRawToPercent_Bounds(t *testing.T) {
	if got := RawToPercent(0); got != 0 {
		t.Errorf("RawToPercent(0) = %d, want 0", got)
	}
	if got := RawToPercent(65535); got != 100 {
		t.Errorf("RawToPercent(65535) = %d, want 100", got)
	}
}

func TestShadeCapabilities_Flags(t *testing.T) {
	tests := []struct {
		name string
		cap  ShadeCapabilities
		want CapabilityFlags
	}{
		{
			name: "bottom up",
			cap:  CapBottomUp,
			want: FlagPrimaryRail,
		},
		{
			name: "bottom up tilt 90",
			cap:  CapBottomUpTilt90,
			want: FlagPrimaryRail | FlagTiltOnClosed,
		},
		{
			name: "bottom up tilt 180",
			cap:  CapBottomUpTilt180,
			want: FlagPrimaryRail | FlagTiltAnywhere | FlagTilt180,
		},
		{
			name: "vertical tilt 180",
			cap:  CapVerticalTilt180,
			want: FlagPrimaryRail | FlagTiltAnywhere | FlagTilt180,
		},
		{
			name: "vertical",
			cap:  CapVertical,
			want: FlagPrimaryRail,
		},
		{
			name: "tilt only 180",
			cap:  CapTiltOnly180,
			want: FlagTiltAnywhere | FlagTilt180,
		},
		{
			name: "top down",
			cap:  CapTopDown,
			want: FlagPrimaryRail | FlagPrimaryRailReversed,
		},
		{
			name: "top down bottom up",
			cap:  CapTopDownBottomUp,
			want: FlagPrimaryRail | FlagSecondaryRail,
		},
		{
			name: "dual overlapped",
			cap:  CapDualOverlapped,
			want: FlagPrimaryRail | FlagSecondaryRail | FlagSecondaryRailOverlapped,
		},
		{
			name: "dual overlapped tilt 90",
			cap:  CapDualOverlappedTilt90,
			want: FlagPrimaryRail | FlagSecondaryRail | FlagSecondaryRailOverlapped | FlagTiltOnClosed,
		},
		{
			name: "unknown falls back to primary rail",
			cap:  ShadeCapabilities(42),
			want: FlagPrimaryRail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cap.Flags(); got != tt.want {
				t.Errorf("Flags() = %b, want %b", got, tt.want)
			}
		})
	}
}

func TestCapabilityFlags_Has(t *testing.T) {
	flags := CapTopDownBottomUp.Flags()

	if !flags.Has(FlagSecondaryRail) {
		t.Error("expected top-down-bottom-up to have a secondary rail")
	}

	if flags.Has(FlagTilt180) {
		t.Error("top-down-bottom-up should not report tilt")
	}
}

func TestBatteryStatus_Percent(t *testing.T) {
	tests := []struct {
		status BatteryStatus
		want   int
	}{
		{BatteryUnavailable, 0},
		{BatteryLow, 25},
		{BatteryMedium, 50},
		{BatteryHigh, 100},
		{BatteryPluggedIn, 100},
	}

	for _, tt := range tests {
		if got := tt.status.Percent(); got != tt.want {
			t.Errorf("BatteryStatus(%d).Percent() = %d, want %d", tt.status, got, tt.want)
		}
	}
}

func TestShadeData_DisplayName(t *testing.T) {
	name := Base64Name("Study Sheer")
	shade := ShadeData{ID: 7, Name: &name}

	if got := shade.DisplayName(); got != "Study Sheer" {
		t.Errorf("DisplayName() = %q, want %q", got, "Study Sheer")
	}

	unnamed := ShadeData{ID: 7}
	if got := unnamed.DisplayName(); got != "Shade 7" {
		t.Errorf("DisplayName() = %q, want %q", got, "Shade 7")
	}
}

func TestShadeData_SecondaryDisplayName(t *testing.T) {
	name := Base64Name("Study Sheer")
	secondary := Base64Name("Study Blackout")

	shade := ShadeData{ID: 7, Name: &name, SecondaryName: &secondary}
	if got := shade.SecondaryDisplayName(); got != "Study Blackout" {
		t.Errorf("SecondaryDisplayName() = %q, want %q", got, "Study Blackout")
	}

	noSecondary := ShadeData{ID: 7, Name: &name}
	if got := noSecondary.SecondaryDisplayName(); got != "Study Sheer Secondary" {
		t.Errorf("SecondaryDisplayName() = %q, want %q", got, "Study Sheer Secondary")
	}
}

func TestShadePosition_Percent(t *testing.T) {
	pos2 := uint16(65535)
	kind2 := PosKindSecondaryRail
	pos := ShadePosition{
		PosKind1:  PosKindPrimaryRail,
		Position1: 32767,
		PosKind2:  &kind2,
		Position2: &pos2,
	}

	if got := pos.Pos1Percent(); got != 50 {
		t.Errorf("Pos1Percent() = %d, want 50", got)
	}

	got, ok := pos.Pos2Percent()
	if !ok || got != 100 {
		t.Errorf("Pos2Percent() = %d, %v, want 100, true", got, ok)
	}

	primaryOnly := ShadePosition{PosKind1: PosKindPrimaryRail, Position1: 0}
	if _, ok := primaryOnly.Pos2Percent(); ok {
		t.Error("Pos2Percent() should report absent for primary-only shades")
	}
}

func TestShadeData_LenientDecode(t *testing.T) {
	// Newer hub firmware adds fields we do not model; decoding must not fail.
	payload := `{
		"id": 7,
		"batteryStatus": 3,
		"batteryStrength": 182,
		"capabilities": 7,
		"batteryKind": 2,
		"smartPowerSupply": {"status": 0, "id": 0, "port": 0},
		"type": 8,
		"groupId": 0,
		"someFutureField": {"nested": true}
	}`

	var shade ShadeData
	if err := json.Unmarshal([]byte(payload), &shade); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if shade.ID != 7 {
		t.Errorf("ID = %d, want 7", shade.ID)
	}

	if !shade.Capabilities.Flags().Has(FlagSecondaryRail) {
		t.Error("capabilities 7 should include a secondary rail")
	}
}

func TestShadeFirmware_Version(t *testing.T) {
	fw := ShadeFirmware{Revision: 2, SubRevision: 1, Build: 3098}

	if got := fw.Version(); got != "2.1.3098" {
		t.Errorf("Version() = %q, want %q", got, "2.1.3098")
	}
}
