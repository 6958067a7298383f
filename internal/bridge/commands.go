package bridge

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nerrad567/shade-bridge/internal/hub"
)

// Command tokens accepted on shade command topics. Each maps 1:1 onto a
// hub primitive; anything else is dropped with ErrUnknownCommand.
const (
	CmdOpen            = "OPEN"
	CmdClose           = "CLOSE"
	CmdStop            = "STOP"
	CmdJog             = "JOG"
	CmdCalibrate       = "CALIBRATE"
	CmdFavorite        = "FAVORITE"
	CmdRefreshBattery  = "REFRESH_BATTERY"
	CmdRefreshPosition = "REFRESH_POSITION"

	CmdPowerHardwired    = "POWER_HARDWIRED"
	CmdPowerBatteryWand  = "POWER_BATTERY_WAND"
	CmdPowerRechargeable = "POWER_RECHARGEABLE"
)

// PayloadSceneOn is the activation payload accepted on scene topics.
const PayloadSceneOn = "ON"

// motionTokens maps stop/jog style tokens onto hub motion verbs. OPEN and
// CLOSE are handled separately because they also publish an optimistic
// position.
var motionTokens = map[string]hub.Motion{
	CmdStop:      hub.MotionStop,
	CmdJog:       hub.MotionJog,
	CmdCalibrate: hub.MotionCalibrate,
	CmdFavorite:  hub.MotionHeart,
}

// powerTokens maps power-source tokens onto hub battery kinds.
var powerTokens = map[string]hub.BatteryKind{
	CmdPowerHardwired:    hub.PowerHardwired,
	CmdPowerBatteryWand:  hub.PowerBatteryWand,
	CmdPowerRechargeable: hub.PowerRechargeable,
}

// shadeParams captures the topic parameters of shade command routes.
type shadeParams struct {
	Serial  string `mapstructure:"serial"`
	ShadeID string `mapstructure:"shadeID"`
}

// sceneParams captures the topic parameters of scene routes.
type sceneParams struct {
	Serial  string `mapstructure:"serial"`
	SceneID int    `mapstructure:"sceneID"`
}

// parseShadeID splits a topic shade id into the hub's numeric id and a
// secondary-rail flag.
func parseShadeID(id string) (int, bool, error) {
	raw, secondary := strings.CutSuffix(id, SecondarySuffix)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidShadeID, id)
	}
	return n, secondary, nil
}

// runCommand executes one command token against the hub and publishes the
// resulting state. OPEN and CLOSE publish their target position
// optimistically once the hub accepts the motion call; the next refresh
// or pushed event corrects any drift.
func (s *Server) runCommand(ctx context.Context, p shadeParams, token string) error {
	id, secondary, err := parseShadeID(p.ShadeID)
	if err != nil {
		return err
	}

	client := s.View().Hub

	switch {
	case token == CmdOpen:
		if _, err := client.MoveShade(ctx, id, hub.MotionUp); err != nil {
			return err
		}
		s.publishShadePosition(p.Serial, p.ShadeID, 100)

	case token == CmdClose:
		if _, err := client.MoveShade(ctx, id, hub.MotionDown); err != nil {
			return err
		}
		s.publishShadePosition(p.Serial, p.ShadeID, 0)

	case motionTokens[token] != "":
		if _, err := client.MoveShade(ctx, id, motionTokens[token]); err != nil {
			return err
		}

	case token == CmdRefreshBattery:
		shade, err := client.RefreshShade(ctx, id, hub.RefreshBattery)
		if err != nil {
			return err
		}
		s.publishShadeBattery(p.Serial, strconv.Itoa(id), shade.BatteryStatus)

	case token == CmdRefreshPosition:
		shade, err := client.RefreshShade(ctx, id, hub.RefreshPosition)
		if err != nil {
			return err
		}
		if shade.Positions == nil {
			return fmt.Errorf("shade %d: %w", id, hub.ErrNoPosition)
		}
		percent := shade.Positions.Pos1Percent()
		if secondary {
			var ok bool
			percent, ok = shade.Positions.Pos2Percent()
			if !ok {
				return fmt.Errorf("shade %d secondary rail: %w", id, hub.ErrNoPosition)
			}
		}
		s.publishShadePosition(p.Serial, p.ShadeID, percent)

	case powerTokens[token] != 0:
		if err := client.SetPowerSource(ctx, id, powerTokens[token]); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, token)
	}

	return nil
}

// runSetPosition moves a rail to an absolute percentage. The current
// position record is fetched first so the untouched rail of a dual shade
// keeps its slot value.
func (s *Server) runSetPosition(ctx context.Context, p shadeParams, percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("%w: %d", ErrInvalidPercent, percent)
	}

	id, secondary, err := parseShadeID(p.ShadeID)
	if err != nil {
		return err
	}

	client := s.View().Hub
	shade, err := client.ShadeByID(ctx, id)
	if err != nil {
		return err
	}
	if shade.Positions == nil {
		return fmt.Errorf("shade %d: %w", id, hub.ErrNoPosition)
	}

	positions := *shade.Positions
	raw := hub.PercentToRaw(percent)
	if secondary {
		positions.Position2 = &raw
	} else {
		positions.Position1 = raw
	}

	if _, err := client.ChangePosition(ctx, id, positions); err != nil {
		return err
	}

	s.publishShadePosition(p.Serial, p.ShadeID, percent)
	return nil
}

// runSceneActivate triggers a hub scene. Payloads other than the
// activation token are dropped quietly; the discovery consumer only ever
// sends the configured payload_on.
func (s *Server) runSceneActivate(ctx context.Context, p sceneParams, payload string) error {
	if payload != PayloadSceneOn {
		s.log.Debug("ignoring scene payload", "scene_id", p.SceneID, "payload", payload)
		return nil
	}

	shadeIDs, err := s.View().Hub.ActivateScene(ctx, p.SceneID)
	if err != nil {
		return err
	}

	s.log.Info("scene activated", "scene_id", p.SceneID, "shades", len(shadeIDs))
	return nil
}
