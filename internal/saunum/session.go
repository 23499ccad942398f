// internal/saunum/session.go
package saunum

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

var errNotConnected = errors.New("not connected to sauna controller")

// Config identifies one controller and bounds every operation on it.
type Config struct {
	Host    string
	Port    int
	UnitID  uint8
	Timeout time.Duration
}

func (c Config) endpoint() string {
	if c.Port <= 0 {
		return c.Host
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type state uint8

const (
	stateDisconnected state = iota
	stateConnected
)

// Option configures a Session.
type Option func(*Session)

// WithLogger injects the logger used for lifecycle events and decode anomalies.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithWriteSettle waits d after each successful write.
// The protocol does not require it; some firmware applies writes lazily.
func WithWriteSettle(d time.Duration) Option {
	return func(s *Session) { s.settle = d }
}

// Session is the connection lifecycle to one controller.
//
// A Session is NOT safe for concurrent use: callers serialize
// Connect, GetData, the setters and Close per instance.
type Session struct {
	cfg    Config
	tr     Transport
	log    zerolog.Logger
	settle time.Duration
	state  state
}

// New creates a disconnected session owning tr.
func New(cfg Config, tr Transport, opts ...Option) (*Session, error) {
	if tr == nil {
		return nil, errors.New("saunum: transport required")
	}
	if cfg.UnitID == 0 {
		cfg.UnitID = DefaultUnitID
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	s := &Session{
		cfg: cfg,
		tr:  tr,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("endpoint", cfg.endpoint()).Uint8("unit_id", cfg.UnitID).Logger()

	return s, nil
}

// Dial creates a session and connects it.
func Dial(ctx context.Context, cfg Config, tr Transport, opts ...Option) (*Session, error) {
	s, err := New(cfg, tr, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Connect(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Host returns the configured host.
func (s *Session) Host() string { return s.cfg.Host }

// IsConnected reports whether the session is in the Connected state
// and the transport still holds a link.
func (s *Session) IsConnected() bool {
	return s.state == stateConnected && s.tr.IsConnected()
}

// Connect moves the session to Connected.
// On failure the session stays Disconnected and an ErrConnection is returned.
func (s *Session) Connect(ctx context.Context) error {
	if s.IsConnected() {
		return nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.log.Debug().Msg("connecting to sauna controller")

	if err := s.tr.Connect(ctx); err != nil {
		_ = s.tr.Close()
		return newError(KindConnection, "connect",
			fmt.Errorf("failed to connect to %s: %w", s.cfg.endpoint(), err))
	}
	if !s.tr.IsConnected() {
		_ = s.tr.Close()
		return newError(KindConnection, "connect",
			fmt.Errorf("failed to connect to %s", s.cfg.endpoint()))
	}

	s.state = stateConnected
	s.log.Info().Msg("connected to sauna controller")
	return nil
}

// Close releases the transport. Closing a disconnected session is a no-op.
func (s *Session) Close() error {
	if s.state == stateDisconnected {
		return nil
	}
	s.state = stateDisconnected

	if err := s.tr.Close(); err != nil {
		s.log.Warn().Err(err).Msg("error closing transport")
		return err
	}
	s.log.Debug().Msg("disconnected from sauna controller")
	return nil
}

// GetData reads the control, status and alarm blocks and decodes them.
// Any block failure aborts the read; no partial snapshot is returned.
func (s *Session) GetData(ctx context.Context) (Snapshot, error) {
	if err := s.requireConnected("get data"); err != nil {
		return Snapshot{}, err
	}

	words := make([][]uint16, len(Blocks))
	for i, b := range Blocks {
		w, err := s.readBlock(ctx, b)
		if err != nil {
			return Snapshot{}, err
		}
		words[i] = w
	}

	snap, err := BuildSnapshot(words[0], words[1], words[2])
	if err != nil {
		return Snapshot{}, err
	}

	for _, a := range snap.Anomalies {
		s.log.Warn().
			Str("field", a.Field).
			Uint16("raw", a.Raw).
			Msg(a.Reason)
	}

	return snap, nil
}

// ---- setters ----

// StartSession starts a heating cycle.
func (s *Session) StartSession(ctx context.Context) error {
	return s.write(ctx, "start session", RegSessionActive, EncodeBool(true))
}

// StopSession stops the heating cycle.
func (s *Session) StopSession(ctx context.Context) error {
	return s.write(ctx, "stop session", RegSessionActive, EncodeBool(false))
}

// SetTargetTemperature sets the target in °C. 0 selects the type default.
func (s *Session) SetTargetTemperature(ctx context.Context, celsius int) error {
	if err := ValidateTargetTemperature(celsius); err != nil {
		return err
	}
	return s.write(ctx, "set target temperature", RegTargetTemperature, EncodeWord(celsius))
}

// SetSaunaDuration sets the session length in minutes. 0 selects the type default.
func (s *Session) SetSaunaDuration(ctx context.Context, minutes int) error {
	if err := ValidateSaunaDuration(minutes); err != nil {
		return err
	}
	return s.write(ctx, "set sauna duration", RegSaunaDuration, EncodeWord(minutes))
}

// SetFanDuration sets the fan run-on in minutes. 0 selects the type default.
func (s *Session) SetFanDuration(ctx context.Context, minutes int) error {
	if err := ValidateFanDuration(minutes); err != nil {
		return err
	}
	return s.write(ctx, "set fan duration", RegFanDuration, EncodeWord(minutes))
}

// SetFanSpeed selects the fan stage, FanOff through FanHigh.
func (s *Session) SetFanSpeed(ctx context.Context, speed FanSpeed) error {
	if err := ValidateFanSpeed(speed); err != nil {
		return err
	}
	return s.write(ctx, "set fan speed", RegFanSpeed, EncodeWord(int(speed)))
}

// SetSaunaType selects one of the three programmed sauna types.
// Unknown type codes are rejected here even though reads tolerate them.
func (s *Session) SetSaunaType(ctx context.Context, t SaunaType) error {
	if err := ValidateSaunaType(t); err != nil {
		return err
	}
	return s.write(ctx, "set sauna type", RegSaunaType, EncodeWord(int(t)))
}

// SetLight switches the cabin light.
func (s *Session) SetLight(ctx context.Context, on bool) error {
	return s.write(ctx, "set light", RegLight, EncodeBool(on))
}

// ---- internal ----

func (s *Session) requireConnected(op string) error {
	if s.state != stateConnected {
		return newError(KindConnection, op, errNotConnected)
	}
	if !s.tr.IsConnected() {
		s.markLost(op, errNotConnected)
		return newError(KindConnection, op, errNotConnected)
	}
	return nil
}

func (s *Session) readBlock(ctx context.Context, b Block) ([]uint16, error) {
	op := "read " + b.Name

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	words, err := s.tr.ReadRegisters(ctx, s.cfg.UnitID, b.Base, b.Count)
	if err != nil {
		return nil, s.fail(op, err)
	}
	if len(words) != int(b.Count) {
		return nil, newError(KindInvalidData, op,
			fmt.Errorf("got %d words, want %d", len(words), b.Count))
	}
	return words, nil
}

// write checks the register map only: setters validate values first.
func (s *Session) write(ctx context.Context, op string, addr, value uint16) error {
	r, ok := Lookup(addr)
	switch {
	case !ok:
		return &ValidationError{Param: "register", Value: int(addr), Reason: "not in register map"}
	case r.Access != ReadWrite:
		return &ValidationError{Param: r.Name, Value: int(addr), Reason: "register is " + r.Access.String()}
	}

	if err := s.requireConnected(op); err != nil {
		return err
	}

	wctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.tr.WriteRegister(wctx, s.cfg.UnitID, addr, value); err != nil {
		return s.fail(op, err)
	}

	s.log.Debug().
		Uint16("address", addr).
		Uint16("value", value).
		Msg(op)

	if s.settle > 0 {
		t := time.NewTimer(s.settle)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
		}
	}
	return nil
}

// fail classifies a transport error. A lost link returns the session
// to Disconnected and releases the transport.
func (s *Session) fail(op string, err error) error {
	e := classify(op, err)
	if e.Kind == KindConnection {
		s.markLost(op, err)
	}
	return e
}

func (s *Session) markLost(op string, cause error) {
	s.log.Warn().Err(cause).Str("op", op).Msg("link to sauna controller lost")
	s.state = stateDisconnected
	_ = s.tr.Close()
}

func (s *Session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.Timeout)
}
