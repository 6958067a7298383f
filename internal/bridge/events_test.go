package bridge

import (
	"encoding/json"
	"testing"
)

func TestSortMotionEvents_TotalOrder(t *testing.T) {
	events := []MotionEvent{
		{ShadeID: 1, Kind: MotionStops},
		{ShadeID: 2, Kind: "someFirmwareNovelty"},
		{ShadeID: 3, Kind: MotionHasClosed},
		{ShadeID: 4, Kind: MotionHasFullyClosed},
		{ShadeID: 5, Kind: MotionHasFullyOpened},
		{ShadeID: 6, Kind: MotionHasOpened},
		{ShadeID: 7, Kind: MotionLevelChanged},
		{ShadeID: 8, Kind: MotionTargetChanged},
		{ShadeID: 9, Kind: MotionBeginsMoving},
		{ShadeID: 10, Kind: MotionStartsOpening},
	}

	SortMotionEvents(events)

	for i := 1; i < len(events); i++ {
		if motionRank(events[i-1].Kind) > motionRank(events[i].Kind) {
			t.Fatalf("events not sorted at %d: %v before %v", i, events[i-1].Kind, events[i].Kind)
		}
	}

	// Every movement-start event lands before every terminal event.
	terminalSeen := false
	for _, ev := range events {
		switch ev.Kind {
		case MotionStartsOpening, MotionBeginsMoving:
			if terminalSeen {
				t.Fatalf("start event %v after a terminal event", ev.Kind)
			}
		case MotionHasOpened, MotionHasFullyOpened, MotionHasFullyClosed, MotionHasClosed, MotionStops:
			terminalSeen = true
		}
	}

	if events[len(events)-1].Kind != "someFirmwareNovelty" {
		t.Errorf("unknown kind sorted to %v, want last", events[len(events)-1].Kind)
	}
}

func TestSortMotionEvents_Stable(t *testing.T) {
	events := []MotionEvent{
		{ShadeID: 1, Kind: MotionLevelChanged},
		{ShadeID: 2, Kind: MotionLevelChanged},
		{ShadeID: 3, Kind: MotionLevelChanged},
	}

	SortMotionEvents(events)

	for i, want := range []int{1, 2, 3} {
		if events[i].ShadeID != want {
			t.Errorf("events[%d].ShadeID = %d, want %d (stable order lost)", i, events[i].ShadeID, want)
		}
	}
}

func TestCoverState(t *testing.T) {
	tests := []struct {
		percent int
		want    string
	}{
		{0, "closed"},
		{1, "open"},
		{50, "open"},
		{100, "open"},
	}

	for _, tt := range tests {
		if got := coverState(tt.percent); got != tt.want {
			t.Errorf("coverState(%d) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestCallbackBody_ConfigNum(t *testing.T) {
	var body CallbackBody
	if err := json.Unmarshal([]byte(`{"configNum": 17}`), &body); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if body.ConfigNum == nil || *body.ConfigNum != 17 {
		t.Errorf("ConfigNum = %v, want 17", body.ConfigNum)
	}
	if len(body.Events) != 0 {
		t.Errorf("Events = %v, want empty", body.Events)
	}
}

func TestCallbackBody_Events(t *testing.T) {
	raw := `{"events":[
		{"shadeId": 7, "evtType": "stops", "stoppedPosition": 0},
		{"shadeId": 9, "evtType": "targetChanged", "targetPosition": 60, "currentPosition": 12}
	]}`

	var body CallbackBody
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if len(body.Events) != 2 {
		t.Fatalf("Events = %d, want 2", len(body.Events))
	}

	first := body.Events[0]
	if first.ShadeID != 7 || first.Kind != MotionStops {
		t.Errorf("first event = %+v, want shade 7 stops", first)
	}
	if first.StoppedPosition == nil || *first.StoppedPosition != 0 {
		t.Errorf("StoppedPosition = %v, want 0", first.StoppedPosition)
	}

	second := body.Events[1]
	if second.TargetPosition == nil || *second.TargetPosition != 60 {
		t.Errorf("TargetPosition = %v, want 60", second.TargetPosition)
	}
	if second.CurrentPosition == nil || *second.CurrentPosition != 12 {
		t.Errorf("CurrentPosition = %v, want 12", second.CurrentPosition)
	}
}
