package bridge

import "sort"

// MotionKind is the hub's event-type discriminator for pushed shade
// events. The set is open: hubs ship new kinds in firmware updates, so
// unknown values are carried through and sorted last.
type MotionKind string

// Motion event kinds pushed by the hub.
const (
	MotionStartsOpening  MotionKind = "startsOpening"
	MotionBeginsMoving   MotionKind = "beginsMoving"
	MotionTargetChanged  MotionKind = "targetChanged"
	MotionLevelChanged   MotionKind = "levelChanged"
	MotionHasOpened      MotionKind = "hasOpened"
	MotionHasFullyOpened MotionKind = "hasFullyOpened"
	MotionHasFullyClosed MotionKind = "hasFullyClosed"
	MotionHasClosed      MotionKind = "hasClosed"
	MotionStops          MotionKind = "stops"
)

// motionRank defines the total order motion batches are normalized to
// before publishing. Movement-start events must be applied before their
// terminal counterparts even when a batch delivers them out of order;
// "stops" comes last so the final position wins.
func motionRank(kind MotionKind) int {
	switch kind {
	case MotionStartsOpening:
		return 0
	case MotionBeginsMoving:
		return 1
	case MotionTargetChanged:
		return 2
	case MotionLevelChanged:
		return 3
	case MotionHasOpened:
		return 4
	case MotionHasFullyOpened:
		return 5
	case MotionHasFullyClosed:
		return 6
	case MotionHasClosed:
		return 7
	case MotionStops:
		return 8
	default:
		return 9
	}
}

// MotionEvent is one hub-pushed shade event. Positions are percentages.
type MotionEvent struct {
	ShadeID         int        `json:"shadeId"`
	Kind            MotionKind `json:"evtType"`
	CurrentPosition *int       `json:"currentPosition,omitempty"`
	StoppedPosition *int       `json:"stoppedPosition,omitempty"`
	TargetPosition  *int       `json:"targetPosition,omitempty"`
}

// CallbackBody is the decoded payload of a hub callback POST. Exactly one
// of the two shapes is populated: a configuration-mismatch notice
// (ConfigNum) or a batch of motion events.
type CallbackBody struct {
	ConfigNum *int          `json:"configNum,omitempty"`
	Events    []MotionEvent `json:"events,omitempty"`
}

// SortMotionEvents orders a batch by the fixed kind rank. The sort is
// stable, so events of the same kind keep their arrival order.
func SortMotionEvents(events []MotionEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return motionRank(events[i].Kind) < motionRank(events[j].Kind)
	})
}

// coverState maps a position percentage to the cover state payload.
// A shade is closed only at position zero.
func coverState(percent int) string {
	if percent == 0 {
		return "closed"
	}
	return "open"
}
