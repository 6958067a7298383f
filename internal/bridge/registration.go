package bridge

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Inter-phase timing for a reconciliation pass.
//
// The discovery consumer processes retained messages asynchronously, so a
// pass that deletes and recreates similar identifiers back to back can
// race it. settleDelay gives the consumer time to absorb a retraction
// before new configs arrive; perConfigDelay scales the pause before state
// updates with the number of configs just published, so the subscriptions
// those configs trigger have landed before state is announced.
const (
	settleDelay    = 2 * time.Second
	perConfigDelay = 100 * time.Millisecond
)

// legacyUniqueIDs lists (component, unique id) pairs published by earlier
// releases under a scheme the current one no longer uses. They are
// retracted once, on the first pass after startup. Empty this release;
// the machinery stays so a future id migration is a table entry, not new
// code.
var legacyUniqueIDs = [][2]string{}

// Publisher is the outbound MQTT capability the engine needs.
type Publisher interface {
	// Publish sends a message to the given topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Operation is one step of a registration phase: either a publish
// (Topic/Payload/Retain) or, when Delay is positive, a pause.
type Operation struct {
	Topic   string
	Payload []byte
	Retain  bool

	// Delay, when positive, marks a pause entry. Pause entries publish
	// nothing; Topic and Payload are ignored.
	Delay time.Duration
}

// publishOp returns a publish operation.
func publishOp(topic, payload string, retain bool) Operation {
	return Operation{Topic: topic, Payload: []byte(payload), Retain: retain}
}

// delayOp returns a pause operation.
func delayOp(d time.Duration) Operation {
	return Operation{Delay: d}
}

// RegistrationBatch is the ordered output of one reconciliation pass.
//
// The phase order is load-bearing: stale identifiers must be retracted
// before configs that reuse similar names arrive, and configs must be
// absorbed by the consumer before state referencing them is published.
// Apply enforces deletes, then configs, then updates.
type RegistrationBatch struct {
	// Deletes retracts legacy retained configs. Non-empty only on the
	// first pass after startup, and always starts with a settle pause.
	Deletes []Operation

	// Configs publishes one retained discovery payload per entity.
	Configs []Operation

	// Updates publishes availability and state, prefixed by a pause
	// proportional to the number of configs.
	Updates []Operation
}

// AvailabilityTopics returns every availability topic the batch
// announces, in update order. The event loop keeps the list on the state
// snapshot so a later reachability loss can flip each one to offline.
func (b *RegistrationBatch) AvailabilityTopics() []string {
	var topics []string
	for _, op := range b.Updates {
		if op.Delay > 0 {
			continue
		}
		if strings.HasSuffix(op.Topic, "/availability") {
			topics = append(topics, op.Topic)
		}
	}
	return topics
}

// Apply runs the batch phases strictly in order, publishing at the given
// QoS. The first failed publish aborts the rest of the batch; the caller
// retries the whole pass on its next tick rather than resuming partway.
//
// Parameters:
//   - ctx: Cancels pending pause entries and abandons the batch
//   - pub: Outbound MQTT capability
//   - qos: QoS level for every publish in the batch
//
// Returns:
//   - error: nil when every operation ran, the first failure otherwise
func (b *RegistrationBatch) Apply(ctx context.Context, pub Publisher, qos byte) error {
	phases := []struct {
		name string
		ops  []Operation
	}{
		{"delete", b.Deletes},
		{"config", b.Configs},
		{"update", b.Updates},
	}

	for _, phase := range phases {
		for _, op := range phase.ops {
			if op.Delay > 0 {
				if err := sleepCtx(ctx, op.Delay); err != nil {
					return err
				}
				continue
			}

			if err := pub.Publish(op.Topic, op.Payload, qos, op.Retain); err != nil {
				return fmt.Errorf("%s phase: publishing to %q: %w", phase.name, op.Topic, err)
			}
		}
	}

	return nil
}

// sleepCtx pauses for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
