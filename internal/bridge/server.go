package bridge

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/nerrad567/shade-bridge/internal/bridge/router"
	"github.com/nerrad567/shade-bridge/internal/hub"
	"github.com/nerrad567/shade-bridge/internal/infrastructure/mqtt"
)

// eventQueueSize bounds the event channel. A full queue backpressures
// producers with a blocking send instead of dropping events.
const eventQueueSize = 64

const (
	defaultDiscoveryPrefix = "homeassistant"
	defaultPollInterval    = 5 * time.Minute
	defaultHubTimeout      = 60 * time.Second
)

// Logger is the logging capability the server needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsRecorder receives position, battery, and reachability samples.
// The influxdb client satisfies it; a no-op stands in when history is
// disabled.
type MetricsRecorder interface {
	WriteShadePosition(hubSerial, shadeID string, percent int)
	WriteShadeBattery(hubSerial, shadeID string, level int, status int)
	WriteHubReachability(hubSerial string, reachable bool)
}

// Transport is the pub/sub capability the server needs: the registration
// publisher plus subscription setup for inbound routes.
type Transport interface {
	Publisher
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// event is the sealed set of things the loop consumes.
type event interface{ isEvent() }

type inboundEvent struct {
	topic   string
	payload []byte
}

type motionBatchEvent struct {
	serial string
	events []MotionEvent
}

type tickEvent struct{}

type rediscoveryEvent struct {
	hub hub.ResolvedHub
}

func (inboundEvent) isEvent()     {}
func (motionBatchEvent) isEvent() {}
func (tickEvent) isEvent()        {}
func (rediscoveryEvent) isEvent() {}

// Options configures a Server.
type Options struct {
	// Transport is the MQTT capability. Required.
	Transport Transport

	// Hub is the REST client for the initially tracked hub. Required.
	Hub *hub.Client

	// User is the hub's identity at startup. Required.
	User hub.UserData

	// DiscoveryPrefix is the discovery consumer's topic root.
	// Defaults to "homeassistant".
	DiscoveryPrefix string

	// Version is advertised in discovery origin blocks.
	Version string

	// CallbackURL, when set, is registered with the hub so it pushes
	// motion events at the bridge's callback listener.
	CallbackURL string

	// PollInterval is the period between reconciliation ticks.
	// Defaults to 5 minutes.
	PollInterval time.Duration

	// HubTimeout bounds hub requests made by clients the server creates
	// after an IP change. Defaults to 60 seconds.
	HubTimeout time.Duration

	// QoS applies to every publish and subscription.
	QoS byte

	// Logger may be nil; a no-op is used.
	Logger Logger

	// Metrics may be nil; a no-op is used.
	Metrics MetricsRecorder
}

// Server is the single-consumer event loop at the heart of the bridge.
//
// Four producers feed one bounded channel: the MQTT receive path, the
// callback listener, the reconcile ticker, and the mDNS discovery stream.
// The consumer goroutine does everything else: it dispatches inbound
// messages through the router, runs reconciliation passes, normalizes
// motion batches, and is the only writer of the StateView.
//
// Thread Safety: EnqueueMotion, EnqueueRediscovery, and View are safe for
// concurrent use. Run must be called exactly once.
type Server struct {
	transport  Transport
	router     *router.Router[*Server]
	topics     mqtt.Topics
	log        Logger
	metrics    MetricsRecorder
	prefix     string
	version    string
	callback   string
	pollEvery  time.Duration
	hubTimeout time.Duration
	qos        byte

	state  atomic.Pointer[StateView]
	events chan event
	done   chan struct{}
}

// transportSubscriber adapts the server's transport to the router's
// Subscriber capability: every routed filter feeds the event queue.
type transportSubscriber struct {
	s *Server
}

func (t transportSubscriber) Subscribe(filter string) error {
	return t.s.transport.Subscribe(filter, t.s.qos, func(topic string, payload []byte) error {
		return t.s.enqueue(inboundEvent{topic: topic, payload: payload})
	})
}

// NewServer builds the server, stores the initial StateView, and
// registers the inbound routes (which issues the MQTT subscriptions).
//
// Parameters:
//   - opts: See Options; Transport, Hub, and User are required
//
// Returns:
//   - *Server: Ready to Run
//   - error: On missing options or route registration failure
func NewServer(opts Options) (*Server, error) {
	if opts.Transport == nil {
		return nil, errors.New("bridge: transport is required")
	}
	if opts.Hub == nil {
		return nil, errors.New("bridge: hub client is required")
	}
	if opts.User.SerialNumber == "" {
		return nil, errors.New("bridge: hub serial number is required")
	}
	if opts.DiscoveryPrefix == "" {
		opts.DiscoveryPrefix = defaultDiscoveryPrefix
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.HubTimeout <= 0 {
		opts.HubTimeout = defaultHubTimeout
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	if opts.Metrics == nil {
		opts.Metrics = noopMetrics{}
	}

	s := &Server{
		transport:  opts.Transport,
		log:        opts.Logger,
		metrics:    opts.Metrics,
		prefix:     opts.DiscoveryPrefix,
		version:    opts.Version,
		callback:   opts.CallbackURL,
		pollEvery:  opts.PollInterval,
		hubTimeout: opts.HubTimeout,
		qos:        opts.QoS,
		events:     make(chan event, eventQueueSize),
		done:       make(chan struct{}),
	}
	s.state.Store(&StateView{
		Hub:        opts.Hub,
		User:       opts.User,
		Responding: true,
		FirstRun:   true,
	})

	s.router = router.New[*Server](s, transportSubscriber{s: s}, opts.Logger)
	if err := s.registerRoutes(); err != nil {
		return nil, err
	}

	return s, nil
}

// registerRoutes wires the inbound topic routes. Route table problems are
// startup-fatal, so errors here abort construction.
func (s *Server) registerRoutes() error {
	routes := []struct {
		route   string
		handler router.Handler[*Server]
	}{
		{
			"pv2mqtt/shade/:serial/:shadeID/command",
			router.HandleParamsPayload(func(ctx context.Context, srv *Server, p shadeParams, token string) error {
				if !srv.ownsSerial(p.Serial) {
					return nil
				}
				return srv.runCommand(ctx, p, token)
			}),
		},
		{
			"pv2mqtt/shade/:serial/:shadeID/set_position",
			router.HandleParamsPayload(func(ctx context.Context, srv *Server, p shadeParams, percent int) error {
				if !srv.ownsSerial(p.Serial) {
					return nil
				}
				return srv.runSetPosition(ctx, p, percent)
			}),
		},
		{
			"pv2mqtt/scene/:serial/:sceneID/activate",
			router.HandleParamsPayload(func(ctx context.Context, srv *Server, p sceneParams, payload string) error {
				if !srv.ownsSerial(p.Serial) {
					return nil
				}
				return srv.runSceneActivate(ctx, p, payload)
			}),
		},
		{
			s.prefix + "/status",
			router.HandlePayload(func(ctx context.Context, srv *Server, status string) error {
				return srv.handleConsumerStatus(ctx, status)
			}),
		},
	}

	for _, r := range routes {
		if err := s.router.Register(r.route, r.handler); err != nil {
			return fmt.Errorf("registering route %q: %w", r.route, err)
		}
	}
	return nil
}

// View returns the current hub snapshot.
func (s *Server) View() *StateView {
	return s.state.Load()
}

// swap publishes a new snapshot. Consumer goroutine only.
func (s *Server) swap(view *StateView) {
	s.state.Store(view)
}

// ownsSerial reports whether a topic serial addresses the tracked hub.
// Other serials belong to other bridge instances sharing the broker.
func (s *Server) ownsSerial(serial string) bool {
	if serial == s.View().User.SerialNumber {
		return true
	}
	s.log.Debug("ignoring message for other hub", "serial", serial)
	return false
}

// EnqueueMotion feeds a hub-pushed motion batch into the event loop.
// Blocks while the queue is full.
func (s *Server) EnqueueMotion(serial string, events []MotionEvent) error {
	return s.enqueue(motionBatchEvent{serial: serial, events: events})
}

// EnqueueRediscovery feeds an mDNS discovery result into the event loop.
// Blocks while the queue is full.
func (s *Server) EnqueueRediscovery(h hub.ResolvedHub) error {
	return s.enqueue(rediscoveryEvent{hub: h})
}

func (s *Server) enqueue(ev event) error {
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return ErrServerClosed
	}
}

// Run registers the hub callback, starts the tick producer, runs one
// immediate reconciliation pass, and then consumes events until ctx is
// cancelled.
//
// Returns:
//   - error: nil on clean shutdown
func (s *Server) Run(ctx context.Context) error {
	defer close(s.done)

	if err := s.registerCallback(ctx); err != nil {
		s.log.Warn("hub callback registration failed", "error", err)
	}

	go s.tickLoop(ctx)

	// Announce everything up front instead of waiting a full interval.
	s.handleEvent(ctx, tickEvent{})

	for {
		select {
		case <-ctx.Done():
			s.log.Info("event loop stopping")
			return nil
		case ev := <-s.events:
			s.handleEvent(ctx, ev)
		}
	}
}

// tickLoop is the periodic reconcile producer.
func (s *Server) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(s.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.enqueue(tickEvent{}); err != nil {
				return
			}
		}
	}
}

// handleEvent processes one event. Handler errors are logged here and
// never unwind the loop.
func (s *Server) handleEvent(ctx context.Context, ev event) {
	switch ev := ev.(type) {
	case inboundEvent:
		if err := s.router.Dispatch(ctx, ev.topic, ev.payload); err != nil {
			s.dispatchError(ev.topic, err)
		}

	case motionBatchEvent:
		s.handleMotionBatch(ev)

	case tickEvent:
		if err := s.reconcile(ctx); err != nil {
			s.log.Error("reconciliation pass failed", "error", err)
		}

	case rediscoveryEvent:
		s.handleRediscovery(ctx, ev.hub)
	}
}

// dispatchError classifies a failed dispatch. Malformed messages are
// dropped with a warning; an unresponsive hub flips the diagnostic path.
func (s *Server) dispatchError(topic string, err error) {
	var payloadErr *router.PayloadParseError
	var paramErr *router.ParameterParseError

	switch {
	case errors.As(err, &payloadErr), errors.As(err, &paramErr):
		s.log.Warn("dropping malformed message", "topic", topic, "error", err)
	case errors.Is(err, hub.ErrHubUnresponsive):
		s.log.Warn("hub unresponsive during dispatch", "topic", topic, "error", err)
		s.markUnresponsive()
	default:
		s.log.Error("dispatch failed", "topic", topic, "error", err)
	}
}

// handleConsumerStatus reacts to the discovery consumer's birth/will
// message. A birth means the consumer restarted and lost every non-retained
// state topic, so a full pass re-announces them.
func (s *Server) handleConsumerStatus(ctx context.Context, status string) error {
	if status != availOnline {
		s.log.Debug("discovery consumer status", "status", status)
		return nil
	}

	s.log.Info("discovery consumer came online, re-announcing")
	return s.reconcile(ctx)
}

// handleMotionBatch normalizes and publishes one pushed event batch.
func (s *Server) handleMotionBatch(batch motionBatchEvent) {
	view := s.View()
	serial := view.User.SerialNumber
	if batch.serial != serial {
		s.log.Debug("ignoring motion batch for other hub", "serial", batch.serial)
		return
	}

	SortMotionEvents(batch.events)

	for _, ev := range batch.events {
		shadeID := strconv.Itoa(ev.ShadeID)
		switch ev.Kind {
		case MotionStartsOpening:
			s.publishShadeState(serial, shadeID, "opening")

		case MotionBeginsMoving:
			s.pubString(s.topics.ShadeAvailability(serial, shadeID), availOnline)

		case MotionTargetChanged:
			if ev.TargetPosition != nil {
				s.publishShadePosition(serial, shadeID, *ev.TargetPosition)
			}

		case MotionLevelChanged:
			if ev.CurrentPosition != nil {
				s.publishShadePosition(serial, shadeID, *ev.CurrentPosition)
			}

		case MotionHasOpened:
			s.publishShadeState(serial, shadeID, "open")

		case MotionHasFullyOpened:
			s.publishShadePosition(serial, shadeID, 100)

		case MotionHasFullyClosed:
			s.publishShadePosition(serial, shadeID, 0)

		case MotionHasClosed:
			s.publishShadeState(serial, shadeID, "closed")

		case MotionStops:
			pos := ev.StoppedPosition
			if pos == nil {
				pos = ev.CurrentPosition
			}
			if pos != nil {
				s.publishShadePosition(serial, shadeID, *pos)
			}

		default:
			s.log.Debug("unknown motion event kind", "kind", ev.Kind, "shade_id", ev.ShadeID)
		}
	}
}

// reconcile runs one full pass: fetch inventory, build the batch, apply
// it, then swap in the refreshed identity. Any failure aborts the pass;
// the next tick retries from scratch.
func (s *Server) reconcile(ctx context.Context) error {
	view := s.View()
	client := view.Hub

	user, err := client.UserData(ctx)
	if err != nil {
		return s.hubFailure(err)
	}
	shades, err := client.ListShades(ctx)
	if err != nil {
		return s.hubFailure(err)
	}
	scenes, err := client.ListScenes(ctx)
	if err != nil {
		return s.hubFailure(err)
	}
	rooms, err := client.ListRooms(ctx)
	if err != nil {
		return s.hubFailure(err)
	}

	roomNames := make(map[int]string, len(rooms))
	for _, room := range rooms {
		roomNames[room.ID] = room.Name.String()
	}

	inv := Inventory{User: *user, Shades: shades, Scenes: scenes, Rooms: roomNames}
	batch, err := BuildRegistration(inv, s.prefix, s.version, view.FirstRun)
	if err != nil {
		return err
	}
	if err := batch.Apply(ctx, s.transport, s.qos); err != nil {
		return err
	}

	s.swap(&StateView{
		Hub:                client,
		User:               *user,
		Responding:         true,
		FirstRun:           false,
		AvailabilityTopics: batch.AvailabilityTopics(),
	})
	s.recordInventory(user.SerialNumber, shades)

	s.log.Info("reconciliation pass complete",
		"shades", len(shades),
		"scenes", len(scenes),
		"configs", len(batch.Configs),
		"deletes", len(batch.Deletes),
	)
	return nil
}

// recordInventory samples the pass into the history recorder.
func (s *Server) recordInventory(serial string, shades []hub.ShadeData) {
	s.metrics.WriteHubReachability(serial, true)

	for i := range shades {
		shade := &shades[i]
		id := strconv.Itoa(shade.ID)
		s.metrics.WriteShadeBattery(serial, id, shade.BatteryStatus.Percent(), int(shade.BatteryStatus))

		if shade.Positions == nil {
			continue
		}
		s.metrics.WriteShadePosition(serial, id, shade.Positions.Pos1Percent())
		if pos2, ok := shade.Positions.Pos2Percent(); ok {
			s.metrics.WriteShadePosition(serial, id+SecondarySuffix, pos2)
		}
	}
}

// hubFailure marks the hub unresponsive when the error says so.
func (s *Server) hubFailure(err error) error {
	if errors.Is(err, hub.ErrHubUnresponsive) {
		s.markUnresponsive()
	}
	return err
}

// markUnresponsive flips the reachability snapshot, publishes the
// diagnostic, and flips every announced availability topic to offline,
// once per transition. Registrations stay in place: the hub usually
// comes back, and the next successful pass re-announces online.
func (s *Server) markUnresponsive() {
	view := s.View()
	if !view.Responding {
		return
	}
	next := *view
	next.Responding = false
	s.swap(&next)

	serial := view.User.SerialNumber
	s.pubString(s.topics.HubStatus(serial), hubUnresponsive)
	for _, topic := range view.AvailabilityTopics {
		s.pubString(topic, availOffline)
	}
	s.metrics.WriteHubReachability(serial, false)
	s.log.Warn("hub marked unresponsive",
		"serial", serial,
		"entities_offline", len(view.AvailabilityTopics),
	)
}

// handleRediscovery applies the rediscovery decision table: foreign
// serials are ignored, lost reachability flips the diagnostic without
// tearing anything down, and an IP or name change swaps the snapshot,
// re-points the callback, and re-announces everything.
func (s *Server) handleRediscovery(ctx context.Context, found hub.ResolvedHub) {
	view := s.View()

	if !found.Reachable {
		if found.Addr != view.Hub.Addr() {
			s.log.Debug("ignoring unreachable foreign hub", "addr", found.Addr)
			return
		}
		s.markUnresponsive()
		return
	}

	if found.UserData == nil || found.UserData.SerialNumber != view.User.SerialNumber {
		s.log.Debug("ignoring rediscovery of other hub", "addr", found.Addr)
		return
	}

	changed := found.UserData.IP != view.User.IP ||
		found.UserData.HubName != view.User.HubName ||
		!view.Responding
	if !changed {
		s.log.Debug("rediscovery with no changes", "serial", view.User.SerialNumber)
		return
	}

	client := view.Hub
	if found.Addr != view.Hub.Addr() {
		client = hub.NewClient(found.Addr, s.hubTimeout)
	}
	s.swap(&StateView{
		Hub:                client,
		User:               *found.UserData,
		Responding:         true,
		FirstRun:           view.FirstRun,
		AvailabilityTopics: view.AvailabilityTopics,
	})

	s.log.Info("hub identity changed",
		"serial", found.UserData.SerialNumber,
		"ip", found.UserData.IP,
		"name", found.UserData.HubName.String(),
	)

	if err := s.registerCallback(ctx); err != nil {
		s.log.Warn("hub callback registration failed", "error", err)
	}
	if err := s.reconcile(ctx); err != nil {
		s.log.Error("reconciliation pass failed", "error", err)
	}
}

// registerCallback points the hub's event push at the bridge's listener.
func (s *Server) registerCallback(ctx context.Context) error {
	if s.callback == "" {
		return nil
	}
	return s.View().Hub.RegisterCallback(ctx, s.callback)
}

// pubString publishes a non-retained string payload, logging failures.
// Transport failures here are not retried in a tight loop; the next tick
// republishes everything anyway.
func (s *Server) pubString(topic, payload string) {
	if err := s.transport.Publish(topic, []byte(payload), s.qos, false); err != nil {
		s.log.Warn("publish failed", "topic", topic, "error", err)
	}
}

// publishShadePosition publishes a rail's position and derived state, in
// that order, and samples the position into the history recorder.
func (s *Server) publishShadePosition(serial, shadeID string, percent int) {
	s.pubString(s.topics.ShadePosition(serial, shadeID), strconv.Itoa(percent))
	s.pubString(s.topics.ShadeState(serial, shadeID), coverState(percent))
	s.metrics.WriteShadePosition(serial, shadeID, percent)
}

// publishShadeState publishes a rail's cover state without a position.
func (s *Server) publishShadeState(serial, shadeID, state string) {
	s.pubString(s.topics.ShadeState(serial, shadeID), state)
}

// publishShadeBattery publishes a shade's battery level and samples it.
func (s *Server) publishShadeBattery(serial, shadeID string, status hub.BatteryStatus) {
	s.pubString(s.topics.ShadeBattery(serial, shadeID), strconv.Itoa(status.Percent()))
	s.metrics.WriteShadeBattery(serial, shadeID, status.Percent(), int(status))
}

// noopLogger discards everything.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// noopMetrics discards every sample.
type noopMetrics struct{}

func (noopMetrics) WriteShadePosition(string, string, int)     {}
func (noopMetrics) WriteShadeBattery(string, string, int, int) {}
func (noopMetrics) WriteHubReachability(string, bool)          {}
