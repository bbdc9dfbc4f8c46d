package devices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/hass-agent/internal/connector"
	"github.com/nerrad567/hass-agent/internal/model"
)

// Switch and binary sensor payloads.
const (
	PayloadOn  = "ON"
	PayloadOff = "OFF"
)

const (
	// DefaultToggleInterval is how often the motion state flips while the switch is on.
	DefaultToggleInterval = 5 * time.Second

	// commandBufferSize is the capacity of the worker command channel.
	commandBufferSize = 8
)

// StateLookup returns the last published payload of a namespace-relative
// state topic. entity.SQLiteRepository satisfies it.
type StateLookup interface {
	LastState(ctx context.Context, topic string) (string, error)
}

// MotionSwitchConfig configures a MotionSwitch.
type MotionSwitchConfig struct {
	// Device groups both entities. Required.
	Device *model.Device

	// SwitchID and MotionID are the object ids of the two entities. Required.
	SwitchID string
	MotionID string

	// NodeID optionally groups both entities.
	NodeID string

	// ToggleInterval defaults to DefaultToggleInterval.
	ToggleInterval time.Duration

	// Restore, when set, provides the switch state published before a restart.
	Restore StateLookup

	Logger Logger
}

// commandKind is a request to the worker goroutine.
type commandKind int

const (
	commandSet commandKind = iota
	commandRefresh
)

type command struct {
	kind commandKind
	on   bool
}

// MotionSwitch is a device with a switch and a motion binary sensor.
//
// Commands on the switch's command topic are passed to a worker goroutine.
// The worker publishes the switch state and, while the switch is on, toggles
// the motion sensor every ToggleInterval.
type MotionSwitch struct {
	client *connector.Client
	logger Logger

	switchID model.DeviceID
	motionID model.DeviceID

	switchDoc *model.Discovery
	motionDoc *model.Discovery

	switchCommand string
	switchState   string
	motionState   string

	interval time.Duration
	commands chan command
	done     chan struct{}
}

// NewMotionSwitch builds the device and starts its worker. The worker runs
// until ctx is done.
func NewMotionSwitch(ctx context.Context, client *connector.Client, cfg MotionSwitchConfig) (*MotionSwitch, error) {
	if cfg.Device == nil || cfg.SwitchID == "" || cfg.MotionID == "" {
		return nil, fmt.Errorf("%w: device, switch id and motion id are required", ErrInvalidConfig)
	}
	if cfg.ToggleInterval <= 0 {
		cfg.ToggleInterval = DefaultToggleInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}

	topics := client.Topics()
	switchID := model.NewDeviceIDWithNode(cfg.SwitchID, model.Switch(model.SwitchClassSwitch), cfg.NodeID)
	motionID := model.NewDeviceIDWithNode(cfg.MotionID, model.BinarySensor(model.BinarySensorMotion), cfg.NodeID)

	switchDoc := model.NewDiscovery(topics, switchID, cfg.Device,
		model.WithName("Switch"),
		model.WithPayloads(PayloadOn, PayloadOff),
	)
	motionDoc := model.NewDiscovery(topics, motionID, cfg.Device,
		model.WithName("Motion"),
		model.WithPayloads(PayloadOn, PayloadOff),
	)

	m := &MotionSwitch{
		client:    client,
		logger:    cfg.Logger,
		switchID:  switchID,
		motionID:  motionID,
		switchDoc: switchDoc,
		motionDoc: motionDoc,
		interval:  cfg.ToggleInterval,
		commands:  make(chan command, commandBufferSize),
		done:      make(chan struct{}),
	}
	m.switchCommand, _ = switchID.CommandTopic()
	m.switchState, _ = switchID.StateTopic()
	m.motionState, _ = motionID.StateTopic()

	initial := m.restore(ctx, cfg.Restore)
	go m.run(ctx, initial)

	return m, nil
}

// SwitchID returns the switch entity.
func (m *MotionSwitch) SwitchID() model.DeviceID { return m.switchID }

// MotionID returns the motion sensor entity.
func (m *MotionSwitch) MotionID() model.DeviceID { return m.motionID }

// Done is closed when the worker has exited.
func (m *MotionSwitch) Done() <-chan struct{} { return m.done }

// Connected subscribes to the switch command topic, announces both entities
// and republishes the current state.
func (m *MotionSwitch) Connected(ctx context.Context, state bool) error {
	m.logger.Info("connection changed", "connected", state)
	if !state {
		return nil
	}

	if err := m.client.Subscribe(ctx, m.switchCommand, connector.QoSAtLeastOnce); err != nil {
		return err
	}
	if err := m.announce(ctx); err != nil {
		return err
	}
	return m.enqueue(ctx, command{kind: commandRefresh})
}

// Restarted re-announces both entities and republishes the current state.
func (m *MotionSwitch) Restarted(ctx context.Context) error {
	m.logger.Info("re-announcing after Home Assistant restart")
	if err := m.announce(ctx); err != nil {
		return err
	}
	return m.enqueue(ctx, command{kind: commandRefresh})
}

// Message dispatches switch commands to the worker. Other topics are ignored.
func (m *MotionSwitch) Message(ctx context.Context, topic string, payload []byte) error {
	if topic != m.switchCommand {
		m.logger.Debug("ignoring message", "topic", topic)
		return nil
	}

	on := string(payload) == PayloadOn
	m.logger.Info("switch command", "on", on)
	return m.enqueue(ctx, command{kind: commandSet, on: on})
}

func (m *MotionSwitch) announce(ctx context.Context) error {
	if err := m.client.Announce(ctx, m.motionID, m.motionDoc); err != nil {
		return err
	}
	return m.client.Announce(ctx, m.switchID, m.switchDoc)
}

func (m *MotionSwitch) enqueue(ctx context.Context, cmd command) error {
	select {
	case <-m.done:
		return ErrStopped
	default:
	}

	select {
	case m.commands <- cmd:
		return nil
	case <-m.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// restore returns the last known switch state, or off.
func (m *MotionSwitch) restore(ctx context.Context, lookup StateLookup) bool {
	if lookup == nil {
		return false
	}
	payload, err := lookup.LastState(ctx, m.switchState)
	if err != nil {
		m.logger.Debug("no switch state to restore", "topic", m.switchState, "error", err)
		return false
	}
	m.logger.Info("restored switch state", "payload", payload)
	return payload == PayloadOn
}

// run owns the switch and motion state. It is the only goroutine that
// touches them.
func (m *MotionSwitch) run(ctx context.Context, on bool) {
	defer close(m.done)

	var (
		ticker *time.Ticker
		tick   <-chan time.Time
		motion bool
	)
	stop := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
	}
	defer stop()

	start := func() {
		if ticker == nil {
			ticker = time.NewTicker(m.interval)
			tick = ticker.C
			motion = true
		}
	}
	if on {
		start()
	}

	for {
		select {
		case <-ctx.Done():
			return

		case cmd := <-m.commands:
			if cmd.kind == commandSet {
				on = cmd.on
				if on {
					start()
				} else {
					stop()
					motion = false
				}
			}
			m.publish(ctx, m.switchState, on)
			m.publish(ctx, m.motionState, motion)

		case <-tick:
			motion = !motion
			m.publish(ctx, m.motionState, motion)
		}
	}
}

func (m *MotionSwitch) publish(ctx context.Context, topic string, on bool) {
	payload := PayloadOff
	if on {
		payload = PayloadOn
	}
	if err := m.client.UpdateState(ctx, topic, []byte(payload)); err != nil && !errors.Is(err, context.Canceled) {
		m.logger.Warn("state update failed", "topic", topic, "error", err)
	}
}
