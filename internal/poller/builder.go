// internal/poller/builder.go
package poller

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	cfg "github.com/tamzrod/saunum-bridge/internal/config"
	"github.com/tamzrod/saunum-bridge/internal/saunum"
	tmodbus "github.com/tamzrod/saunum-bridge/internal/transport/modbus"
)

// Build constructs a Poller over a freshly dialed session.
// The first connection is made here so start-up fails fast.
// Later link loss is recovered by PollOnce on a future tick.
// The returned closer closes the session.
func Build(ctx context.Context, u cfg.UnitConfig, log zerolog.Logger) (*Poller, func() error, error) {
	log = log.With().Str("unit", u.ID).Logger()
	timeout := time.Duration(u.Source.TimeoutMs) * time.Millisecond

	tr, err := tmodbus.New(transportConfig(u.Source, timeout, log))
	if err != nil {
		return nil, nil, err
	}

	sc := saunum.Config{
		Host:    u.Source.Host,
		Port:    u.Source.Port,
		UnitID:  u.Source.UnitID,
		Timeout: timeout,
	}
	if u.Source.Mode == tmodbus.ModeRTU {
		sc.Host = u.Source.Device
		sc.Port = 0
	}

	opts := []saunum.Option{saunum.WithLogger(log)}
	if u.Source.WriteSettleMs > 0 {
		opts = append(opts, saunum.WithWriteSettle(time.Duration(u.Source.WriteSettleMs)*time.Millisecond))
	}

	sess, err := saunum.Dial(ctx, sc, tr, opts...)
	if err != nil {
		return nil, nil, err
	}

	p, err := New(
		Config{
			UnitID:   u.ID,
			Interval: time.Duration(u.Poll.IntervalMs) * time.Millisecond,
			Logger:   log,
		},
		sess,
	)
	if err != nil {
		_ = sess.Close()
		return nil, nil, err
	}

	return p, sess.Close, nil
}

func transportConfig(s cfg.SourceConfig, timeout time.Duration, log zerolog.Logger) tmodbus.Config {
	tc := tmodbus.Config{
		Mode:        s.Mode,
		Timeout:     timeout,
		TraceFrames: s.TraceFrames,
		Logger:      log,
	}
	switch s.Mode {
	case tmodbus.ModeRTU:
		tc.Endpoint = s.Device
		tc.BaudRate = s.Serial.BaudRate
		tc.DataBits = s.Serial.DataBits
		tc.Parity = s.Serial.Parity
		tc.StopBits = s.Serial.StopBits
	default:
		tc.Endpoint = net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	}
	return tc
}
