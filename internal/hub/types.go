package hub

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Base64Name is a display name that the hub stores base64-encoded on the
// wire. It decodes to plain UTF-8 text on unmarshal and re-encodes on
// marshal, so the rest of the bridge only ever sees the decoded form.
type Base64Name string

// UnmarshalJSON decodes the base64 wire form into plain text.
func (n *Base64Name) UnmarshalJSON(data []byte) error {
	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return err
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("decoding base64 name %q: %w", encoded, err)
	}

	*n = Base64Name(decoded)
	return nil
}

// MarshalJSON re-encodes the name into the hub's base64 wire form.
func (n Base64Name) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.StdEncoding.EncodeToString([]byte(n)))
}

// String returns the decoded name.
func (n Base64Name) String() string {
	return string(n)
}

// BatteryStatus is the hub's coarse battery level enumeration.
type BatteryStatus int

// Battery status values reported by the hub.
const (
	BatteryUnavailable BatteryStatus = 0
	BatteryLow         BatteryStatus = 1
	BatteryMedium      BatteryStatus = 2
	BatteryHigh        BatteryStatus = 3
	BatteryPluggedIn   BatteryStatus = 4
)

// Percent maps the coarse status to a representative percentage for the
// battery sensor. Plugged-in shades report full.
func (s BatteryStatus) Percent() int {
	switch s {
	case BatteryLow:
		return 25
	case BatteryMedium:
		return 50
	case BatteryHigh:
		return 100
	case BatteryPluggedIn:
		return 100
	default:
		return 0
	}
}

// ShadeCapabilities is the hub's closed capability enumeration (0-9).
// Values outside the known range behave like a plain bottom-up shade.
type ShadeCapabilities int

// Capability enumeration values.
const (
	CapBottomUp             ShadeCapabilities = 0
	CapBottomUpTilt90       ShadeCapabilities = 1
	CapBottomUpTilt180      ShadeCapabilities = 2
	CapVerticalTilt180      ShadeCapabilities = 3
	CapVertical             ShadeCapabilities = 4
	CapTiltOnly180          ShadeCapabilities = 5
	CapTopDown              ShadeCapabilities = 6
	CapTopDownBottomUp      ShadeCapabilities = 7
	CapDualOverlapped       ShadeCapabilities = 8
	CapDualOverlappedTilt90 ShadeCapabilities = 9
)

// CapabilityFlags is the decomposed capability set for a shade.
type CapabilityFlags uint8

// Individual capability flags.
const (
	FlagPrimaryRail CapabilityFlags = 1 << iota
	FlagSecondaryRail
	FlagTiltOnClosed
	FlagTiltAnywhere
	FlagTilt180
	FlagPrimaryRailReversed
	FlagSecondaryRailOverlapped
)

// Has reports whether all bits in flag are set.
func (f CapabilityFlags) Has(flag CapabilityFlags) bool {
	return f&flag == flag
}

// Flags decomposes the capability enumeration into its flag set.
//
// The flag set, not the presence of position-2 data, decides whether a
// shade gets a secondary cover entity.
func (c ShadeCapabilities) Flags() CapabilityFlags {
	switch c {
	case CapBottomUp:
		return FlagPrimaryRail
	case CapBottomUpTilt90:
		return FlagPrimaryRail | FlagTiltOnClosed
	case CapBottomUpTilt180:
		return FlagPrimaryRail | FlagTiltAnywhere | FlagTilt180
	case CapVerticalTilt180:
		return FlagPrimaryRail | FlagTiltAnywhere | FlagTilt180
	case CapVertical:
		return FlagPrimaryRail
	case CapTiltOnly180:
		return FlagTiltAnywhere | FlagTilt180
	case CapTopDown:
		return FlagPrimaryRail | FlagPrimaryRailReversed
	case CapTopDownBottomUp:
		return FlagPrimaryRail | FlagSecondaryRail
	case CapDualOverlapped:
		return FlagPrimaryRail | FlagSecondaryRail | FlagSecondaryRailOverlapped
	case CapDualOverlappedTilt90:
		return FlagPrimaryRail | FlagSecondaryRail | FlagSecondaryRailOverlapped | FlagTiltOnClosed
	default:
		return FlagPrimaryRail
	}
}

// PositionKind identifies what a position slot controls.
type PositionKind int

// Position kind values.
const (
	PosKindNone          PositionKind = 0
	PosKindPrimaryRail   PositionKind = 1
	PosKindSecondaryRail PositionKind = 2
	PosKindVaneTilt      PositionKind = 3
	PosKindError         PositionKind = 4
)

// maxRawPosition is the hub's full-open raw position value.
const maxRawPosition = 65535

// PercentToRaw converts an open percentage (0-100) to the hub's raw
// position scale. The mapping is monotonic non-decreasing and values
// outside [0,100] are clamped.
func PercentToRaw(percent int) uint16 {
	if percent <= 0 {
		return 0
	}
	if percent >= 100 {
		return maxRawPosition
	}
	return uint16(uint32(percent) * maxRawPosition / 100)
}

// RawToPercent converts a raw hub position back to a percentage, rounding
// to the nearest whole percent. RawToPercent(PercentToRaw(p)) == p for all
// p in [0,100].
func RawToPercent(raw uint16) int {
	return int((uint32(raw)*100 + maxRawPosition/2) / maxRawPosition)
}

// ShadePosition is the hub's position record for a shade. Slot 1 is always
// present; slot 2 exists only for dual-rail shades.
type ShadePosition struct {
	PosKind1  PositionKind  `json:"posKind1"`
	PosKind2  *PositionKind `json:"posKind2,omitempty"`
	Position1 uint16        `json:"position1"`
	Position2 *uint16       `json:"position2,omitempty"`
}

// Pos1Percent returns slot 1 as a percentage.
func (p *ShadePosition) Pos1Percent() int {
	return RawToPercent(p.Position1)
}

// Pos2Percent returns slot 2 as a percentage, or false when absent.
func (p *ShadePosition) Pos2Percent() (int, bool) {
	if p.Position2 == nil {
		return 0, false
	}
	return RawToPercent(*p.Position2), true
}

// ShadeFirmware is the firmware version record for a shade.
type ShadeFirmware struct {
	Build       int  `json:"build"`
	Index       *int `json:"index,omitempty"`
	Revision    int  `json:"revision"`
	SubRevision int  `json:"subRevision"`
}

// Version formats the firmware as revision.subRevision.build.
func (f *ShadeFirmware) Version() string {
	return fmt.Sprintf("%d.%d.%d", f.Revision, f.SubRevision, f.Build)
}

// BatteryKind identifies how a shade is powered.
type BatteryKind int

// Battery kind values.
const (
	PowerHardwired    BatteryKind = 1
	PowerBatteryWand  BatteryKind = 2
	PowerRechargeable BatteryKind = 3
)

// SmartPowerSupply describes a shade's smart power supply port, if any.
type SmartPowerSupply struct {
	Status int `json:"status"`
	ID     int `json:"id"`
	Port   int `json:"port"`
}

// ShadeData is a shade record from the hub.
//
// Decoding is lenient: fields the hub adds in newer firmware are ignored.
type ShadeData struct {
	BatteryStatus    BatteryStatus     `json:"batteryStatus"`
	BatteryStrength  int               `json:"batteryStrength"`
	Firmware         *ShadeFirmware    `json:"firmware,omitempty"`
	Capabilities     ShadeCapabilities `json:"capabilities"`
	BatteryKind      BatteryKind       `json:"batteryKind"`
	SmartPowerSupply SmartPowerSupply  `json:"smartPowerSupply"`
	SignalStrength   *int              `json:"signalStrength,omitempty"`
	GroupID          int               `json:"groupId"`
	ID               int               `json:"id"`
	Name             *Base64Name       `json:"name,omitempty"`
	Order            *int              `json:"order,omitempty"`
	Positions        *ShadePosition    `json:"positions,omitempty"`
	RoomID           *int              `json:"roomId,omitempty"`
	SecondaryName    *Base64Name       `json:"secondaryName,omitempty"`
	Type             int               `json:"type"`
}

// DisplayName returns the shade's primary name, falling back to the id.
func (s *ShadeData) DisplayName() string {
	if s.Name != nil && *s.Name != "" {
		return s.Name.String()
	}
	return fmt.Sprintf("Shade %d", s.ID)
}

// SecondaryDisplayName returns the secondary rail's name. Shades without
// an explicit secondary name get the primary name with a marker.
func (s *ShadeData) SecondaryDisplayName() string {
	if s.SecondaryName != nil && *s.SecondaryName != "" {
		return s.SecondaryName.String()
	}
	return s.DisplayName() + " Secondary"
}

// sortName returns the name used for client-side (order, name) sorting.
func (s *ShadeData) sortName() string {
	if s.Name == nil {
		return ""
	}
	return s.Name.String()
}

// sortOrder returns the display order, with unordered shades last.
func (s *ShadeData) sortOrder() int {
	if s.Order == nil {
		return int(^uint(0) >> 1)
	}
	return *s.Order
}

// RoomData is a room record from the hub.
type RoomData struct {
	ColorID int        `json:"colorId"`
	IconID  int        `json:"iconId"`
	ID      int        `json:"id"`
	Name    Base64Name `json:"name"`
	Order   int        `json:"order"`
	Type    int        `json:"type"`
}

// SceneData is a scene record from the hub.
type SceneData struct {
	ColorID       int        `json:"colorId"`
	IconID        int        `json:"iconId"`
	ID            int        `json:"id"`
	Name          Base64Name `json:"name"`
	NetworkNumber int        `json:"networkNumber"`
	Order         int        `json:"order"`
	RoomID        int        `json:"roomId"`
}

// UserData is the hub's identity record.
type UserData struct {
	SerialNumber string     `json:"serialNumber"`
	HubName      Base64Name `json:"hubName"`
	IP           string     `json:"ip"`
}

// Wire envelope types. The hub wraps every collection in a response object.
type roomsResponse struct {
	RoomData []RoomData `json:"roomData"`
}

type shadesResponse struct {
	ShadeData []ShadeData `json:"shadeData"`
}

type shadeResponse struct {
	Shade ShadeData `json:"shade"`
}

type scenesResponse struct {
	SceneData []SceneData `json:"sceneData"`
}

type activateSceneResponse struct {
	ShadeIDs []int `json:"shadeIds"`
}

type userDataResponse struct {
	UserData UserData `json:"userData"`
}
