package bridge

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nerrad567/shade-bridge/internal/hub"
	"github.com/nerrad567/shade-bridge/internal/infrastructure/mqtt"
)

// SecondarySuffix is appended to a shade id to address the secondary rail
// of a dual-rail shade, in topics and in unique ids alike.
const SecondarySuffix = "_2"

// Availability and hub status payloads.
const (
	availOnline  = "online"
	availOffline = "offline"

	hubResponding   = "responding"
	hubUnresponsive = "unresponsive"
)

// Inventory is one pass's snapshot of the hub contents.
type Inventory struct {
	User   hub.UserData
	Shades []hub.ShadeData
	Scenes []hub.SceneData

	// Rooms maps room id to decoded room name, used for suggested areas.
	Rooms map[int]string
}

// shadeButtons describes the momentary actions every shade gets. Each
// button presses a command token on the shade's command topic.
var shadeButtons = []struct {
	suffix   string
	name     string
	payload  string
	category string
	icon     string
}{
	{"-jog", "Jog", CmdJog, "", "mdi:gesture-tap"},
	{"-calibrate", "Calibrate", CmdCalibrate, categoryConfig, "mdi:tune"},
	{"-favorite", "Favorite", CmdFavorite, "", "mdi:heart"},
	{"-refresh-battery", "Refresh battery", CmdRefreshBattery, categoryDiagnostic, "mdi:battery-sync"},
	{"-refresh-position", "Refresh position", CmdRefreshPosition, categoryDiagnostic, "mdi:refresh"},
}

// BuildRegistration derives the registration batch for one reconciliation
// pass. The builder is pure: it reads the inventory and produces
// operations, it does not publish.
//
// Descriptors are recomputed from scratch every pass rather than diffed
// against what was previously announced; the retained config publishes are
// idempotent, so an unchanged inventory yields functionally identical
// configs. Stale descriptors of removed devices are only cleaned up by the
// one-time legacy delete phase, which is the documented behavior.
//
// Parameters:
//   - inv: Hub inventory snapshot for this pass
//   - prefix: Discovery topic prefix (e.g. "homeassistant")
//   - version: Bridge version advertised in the origin block
//   - firstRun: Whether the legacy delete phase applies
//
// Returns:
//   - RegistrationBatch: Ordered operations for the three phases
//   - error: Only on descriptor marshaling failure
func BuildRegistration(inv Inventory, prefix, version string, firstRun bool) (RegistrationBatch, error) {
	var batch RegistrationBatch
	topics := mqtt.Topics{}
	serial := inv.User.SerialNumber
	origin := newOrigin(version)

	if firstRun {
		for _, legacy := range legacyUniqueIDs {
			if len(batch.Deletes) == 0 {
				// Let the consumer drain earlier retained traffic
				// before the first retraction lands.
				batch.Deletes = append(batch.Deletes, delayOp(settleDelay))
			}
			topic := configTopic(prefix, legacy[0], legacy[1])
			batch.Deletes = append(batch.Deletes, publishOp(topic, "", true))
		}
	}

	hubDevice := Device{
		Name:         inv.User.HubName.String(),
		Manufacturer: manufacturer,
		Model:        model,
		Identifiers:  []string{serial},
	}

	addConfig := func(component, uid string, payload any) error {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling %s config %q: %w", component, uid, err)
		}
		batch.Configs = append(batch.Configs, Operation{
			Topic:   configTopic(prefix, component, uid),
			Payload: data,
			Retain:  true,
		})
		return nil
	}

	// Hub diagnostic entities.
	hubAvail := topics.HubAvailability(serial)
	if err := addConfig(componentSensor, uniqueID(serial, "hub-status"), SensorConfig{
		EntityConfig: EntityConfig{
			AvailabilityTopic: hubAvail,
			Name:              entityName("Hub status"),
			Origin:            origin,
			Device:            hubDevice,
			UniqueID:          uniqueID(serial, "hub-status"),
			EntityCategory:    categoryDiagnostic,
			Icon:              "mdi:router-wireless",
		},
		StateTopic: topics.HubStatus(serial),
	}); err != nil {
		return batch, err
	}
	if err := addConfig(componentSensor, uniqueID(serial, "hub-ip"), SensorConfig{
		EntityConfig: EntityConfig{
			AvailabilityTopic: hubAvail,
			Name:              entityName("IP address"),
			Origin:            origin,
			Device:            hubDevice,
			UniqueID:          uniqueID(serial, "hub-ip"),
			EntityCategory:    categoryDiagnostic,
			Icon:              "mdi:ip-network",
		},
		StateTopic: topics.HubIP(serial),
	}); err != nil {
		return batch, err
	}

	// Per-shade entities. The capability flag set, not the presence of
	// position-2 data, decides whether a secondary cover exists.
	type rail struct {
		id      string
		name    string
		percent int
		known   bool
	}

	var railUpdates []Operation
	for i := range inv.Shades {
		shade := &inv.Shades[i]
		flags := shade.Capabilities.Flags()
		primaryID := strconv.Itoa(shade.ID)

		var area string
		if shade.RoomID != nil {
			area = inv.Rooms[*shade.RoomID]
		}
		var firmware string
		if shade.Firmware != nil {
			firmware = shade.Firmware.Version()
		}

		rails := []rail{{id: primaryID, name: shade.DisplayName()}}
		if shade.Positions != nil {
			rails[0].percent = shade.Positions.Pos1Percent()
			rails[0].known = true
		}
		if flags.Has(hub.FlagSecondaryRail) {
			second := rail{id: primaryID + SecondarySuffix, name: shade.SecondaryDisplayName()}
			if shade.Positions != nil {
				second.percent, second.known = shade.Positions.Pos2Percent()
			}
			rails = append(rails, second)
		}

		for _, r := range rails {
			uid := uniqueID(serial, r.id)
			avail := topics.ShadeAvailability(serial, r.id)
			device := Device{
				Name:          r.name,
				Manufacturer:  manufacturer,
				Model:         model,
				SWVersion:     firmware,
				SuggestedArea: area,
				ViaDevice:     serial,
				Identifiers:   []string{uid},
			}

			if err := addConfig(componentCover, uid, CoverConfig{
				EntityConfig: EntityConfig{
					AvailabilityTopic: avail,
					DeviceClass:       "shade",
					Origin:            origin,
					Device:            device,
					UniqueID:          uid,
				},
				StateTopic:       topics.ShadeState(serial, r.id),
				PositionTopic:    topics.ShadePosition(serial, r.id),
				SetPositionTopic: topics.ShadeSetPosition(serial, r.id),
				CommandTopic:     topics.ShadeCommand(serial, r.id),
			}); err != nil {
				return batch, err
			}

			// An unknown position must not be announced as online:
			// the consumer would show a definite-looking entity with
			// no state behind it.
			if r.known {
				railUpdates = append(railUpdates,
					publishOp(avail, availOnline, false),
					publishOp(topics.ShadePosition(serial, r.id), strconv.Itoa(r.percent), false),
					publishOp(topics.ShadeState(serial, r.id), coverState(r.percent), false),
				)
			} else {
				railUpdates = append(railUpdates, publishOp(avail, availOffline, false))
			}
		}

		// Auxiliary entities hang off the primary rail's device and
		// share its availability.
		primaryUID := uniqueID(serial, primaryID)
		primaryAvail := topics.ShadeAvailability(serial, primaryID)
		commandTopic := topics.ShadeCommand(serial, primaryID)
		primaryDevice := Device{
			Name:          shade.DisplayName(),
			Manufacturer:  manufacturer,
			Model:         model,
			SWVersion:     firmware,
			SuggestedArea: area,
			ViaDevice:     serial,
			Identifiers:   []string{primaryUID},
		}

		if err := addConfig(componentSensor, primaryUID+"-battery", SensorConfig{
			EntityConfig: EntityConfig{
				AvailabilityTopic: primaryAvail,
				Name:              entityName("Battery"),
				DeviceClass:       "battery",
				Origin:            origin,
				Device:            primaryDevice,
				UniqueID:          primaryUID + "-battery",
				EntityCategory:    categoryDiagnostic,
			},
			StateTopic:        topics.ShadeBattery(serial, primaryID),
			UnitOfMeasurement: "%",
		}); err != nil {
			return batch, err
		}
		railUpdates = append(railUpdates, publishOp(
			topics.ShadeBattery(serial, primaryID),
			strconv.Itoa(shade.BatteryStatus.Percent()),
			false,
		))

		if shade.SignalStrength != nil {
			if err := addConfig(componentSensor, primaryUID+"-signal", SensorConfig{
				EntityConfig: EntityConfig{
					AvailabilityTopic: primaryAvail,
					Name:              entityName("Signal"),
					Origin:            origin,
					Device:            primaryDevice,
					UniqueID:          primaryUID + "-signal",
					EntityCategory:    categoryDiagnostic,
					Icon:              "mdi:signal",
				},
				StateTopic:        topics.ShadeSignal(serial, primaryID),
				UnitOfMeasurement: "%",
			}); err != nil {
				return batch, err
			}
			railUpdates = append(railUpdates, publishOp(
				topics.ShadeSignal(serial, primaryID),
				strconv.Itoa(*shade.SignalStrength),
				false,
			))
		}

		if err := addConfig(componentSelect, primaryUID+"-power-source", SelectConfig{
			EntityConfig: EntityConfig{
				AvailabilityTopic: primaryAvail,
				Name:              entityName("Power source"),
				Origin:            origin,
				Device:            primaryDevice,
				UniqueID:          primaryUID + "-power-source",
				EntityCategory:    categoryConfig,
				Icon:              "mdi:power-plug",
			},
			CommandTopic: commandTopic,
			Options:      []string{CmdPowerHardwired, CmdPowerBatteryWand, CmdPowerRechargeable},
		}); err != nil {
			return batch, err
		}

		for _, btn := range shadeButtons {
			if err := addConfig(componentButton, primaryUID+btn.suffix, ButtonConfig{
				EntityConfig: EntityConfig{
					AvailabilityTopic: primaryAvail,
					Name:              entityName(btn.name),
					Origin:            origin,
					Device:            primaryDevice,
					UniqueID:          primaryUID + btn.suffix,
					EntityCategory:    btn.category,
					Icon:              btn.icon,
				},
				CommandTopic: commandTopic,
				PayloadPress: btn.payload,
			}); err != nil {
				return batch, err
			}
		}
	}

	// Scenes attach to the hub device.
	var sceneUpdates []Operation
	for _, scene := range inv.Scenes {
		sid := strconv.Itoa(scene.ID)
		uid := uniqueID(serial, sid)
		if err := addConfig(componentScene, uid, SceneConfig{
			EntityConfig: EntityConfig{
				AvailabilityTopic: topics.SceneAvailability(serial, sid),
				Name:              entityName(scene.Name.String()),
				Origin:            origin,
				Device:            hubDevice,
				UniqueID:          uid,
				Icon:              "mdi:palette",
			},
			CommandTopic: topics.SceneActivate(serial, sid),
			PayloadOn:    PayloadSceneOn,
		}); err != nil {
			return batch, err
		}
		sceneUpdates = append(sceneUpdates, publishOp(
			topics.SceneAvailability(serial, sid), availOnline, false,
		))
	}

	// Update phase: wait for the configs to be absorbed, then announce
	// the hub, the rails, and the scenes.
	batch.Updates = append(batch.Updates,
		delayOp(perConfigDelay*time.Duration(len(batch.Configs))),
		publishOp(hubAvail, availOnline, false),
		publishOp(topics.HubStatus(serial), hubResponding, false),
		publishOp(topics.HubIP(serial), inv.User.IP, false),
	)
	batch.Updates = append(batch.Updates, railUpdates...)
	batch.Updates = append(batch.Updates, sceneUpdates...)

	return batch, nil
}
