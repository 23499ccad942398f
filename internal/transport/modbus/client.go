// internal/transport/modbus/client.go
package modbus

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"github.com/goburrow/serial"
	"github.com/rs/zerolog"

	"github.com/tamzrod/saunum-bridge/internal/saunum"
)

// Mode selects the Modbus framing.
const (
	ModeTCP = "tcp"
	ModeRTU = "rtu"
)

// Config is minimal transport config.
type Config struct {
	Mode     string // tcp (default) or rtu
	Endpoint string // host:port for tcp, device path for rtu

	Timeout     time.Duration
	IdleTimeout time.Duration

	// rtu only
	BaudRate int
	DataBits int
	Parity   string
	StopBits int

	// TraceFrames logs every raw frame at debug level through Logger.
	TraceFrames bool
	Logger      zerolog.Logger
}

// Client implements saunum.Transport on top of goburrow/modbus.
// It serializes requests because it mutates SlaveId and Timeout per call.
type Client struct {
	mu  sync.Mutex
	cfg Config

	tcp *modbus.TCPClientHandler
	rtu *modbus.RTUClientHandler

	client    modbus.Client
	connected bool
}

var _ saunum.Transport = (*Client)(nil)

// New builds an unconnected client. Connect opens the link.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus transport: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = saunum.DefaultTimeout
	}

	var frameLog *log.Logger
	if cfg.TraceFrames {
		frameLog = log.New(cfg.Logger.With().Str("component", "modbus").Logger(), "", 0)
	}

	c := &Client{cfg: cfg}

	switch strings.ToLower(cfg.Mode) {
	case "", ModeTCP:
		h := modbus.NewTCPClientHandler(cfg.Endpoint)
		h.Timeout = cfg.Timeout
		if cfg.IdleTimeout > 0 {
			h.IdleTimeout = cfg.IdleTimeout
		}
		h.Logger = frameLog
		c.tcp = h
		c.client = modbus.NewClient(h)

	case ModeRTU:
		h := modbus.NewRTUClientHandler(cfg.Endpoint)
		h.Timeout = cfg.Timeout
		if cfg.IdleTimeout > 0 {
			h.IdleTimeout = cfg.IdleTimeout
		}
		if cfg.BaudRate > 0 {
			h.BaudRate = cfg.BaudRate
		}
		if cfg.DataBits > 0 {
			h.DataBits = cfg.DataBits
		}
		if cfg.Parity != "" {
			h.Parity = strings.ToUpper(cfg.Parity)
		}
		if cfg.StopBits > 0 {
			h.StopBits = cfg.StopBits
		}
		h.Logger = frameLog
		c.rtu = h
		c.client = modbus.NewClient(h)

	default:
		return nil, fmt.Errorf("modbus transport: unsupported mode %q", cfg.Mode)
	}

	return c, nil
}

// Connect opens the link, bounded by the context deadline and the configured timeout.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	timeout, err := c.timeoutFor(ctx)
	if err != nil {
		return err
	}
	c.setTimeout(timeout)

	var cerr error
	switch {
	case c.tcp != nil:
		cerr = c.tcp.Connect()
	case c.rtu != nil:
		cerr = c.rtu.Connect()
	}
	if cerr != nil {
		return cerr
	}

	c.connected = true
	return nil
}

// IsConnected reports whether Connect succeeded and Close has not been called since.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Close closes the link. Safe to call repeatedly.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.connected = false
	switch {
	case c.tcp != nil:
		return c.tcp.Close()
	case c.rtu != nil:
		return c.rtu.Close()
	}
	return nil
}

// ReadRegisters reads count holding registers (FC 3).
func (c *Client) ReadRegisters(ctx context.Context, unitID uint8, address, count uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.prepare(ctx, unitID); err != nil {
		return nil, err
	}

	raw, err := c.client.ReadHoldingRegisters(address, count)
	if err != nil {
		return nil, c.settle("read registers", err)
	}
	if len(raw)%2 != 0 {
		return nil, &saunum.Error{
			Kind: saunum.KindInvalidData,
			Op:   "read registers",
			Err:  fmt.Errorf("odd payload length %d", len(raw)),
		}
	}
	return unpackRegisters(raw), nil
}

// WriteRegister writes one holding register (FC 6).
func (c *Client) WriteRegister(ctx context.Context, unitID uint8, address, value uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.prepare(ctx, unitID); err != nil {
		return err
	}

	if _, err := c.client.WriteSingleRegister(address, value); err != nil {
		return c.settle("write register", err)
	}
	return nil
}

// ---- internal helpers ----

// prepare MUST be called with mu held.
func (c *Client) prepare(ctx context.Context, unitID uint8) error {
	if !c.connected {
		return &saunum.Error{Kind: saunum.KindConnection, Op: "modbus request", Err: errors.New("not connected")}
	}

	timeout, err := c.timeoutFor(ctx)
	if err != nil {
		return err
	}
	c.setTimeout(timeout)

	switch {
	case c.tcp != nil:
		c.tcp.SlaveId = unitID
	case c.rtu != nil:
		c.rtu.SlaveId = unitID
	}
	return nil
}

// settle classifies a failed request and drops the underlying link when the
// byte stream can no longer be trusted. c.connected stays true: goburrow
// redials on the next request, so the caller sees one failed call only.
// MUST be called with mu held.
func (c *Client) settle(op string, err error) error {
	switch {
	case isTimeout(err):
		c.drop(op, err)
		return &saunum.Error{Kind: saunum.KindTimeout, Op: op, Err: err}

	case isDesync(err):
		c.drop(op, err)
		return &saunum.Error{Kind: saunum.KindCommunication, Op: op, Err: err}

	case isMalformed(err):
		return &saunum.Error{Kind: saunum.KindInvalidData, Op: op, Err: err}
	}
	return err
}

// drop closes the handler so a late reply is never read by the next request.
func (c *Client) drop(op string, cause error) {
	c.cfg.Logger.Debug().Err(cause).Str("op", op).Msg("dropping modbus link, redial on next request")

	var err error
	switch {
	case c.tcp != nil:
		err = c.tcp.Close()
	case c.rtu != nil:
		err = c.rtu.Close()
	}
	if err != nil {
		c.cfg.Logger.Debug().Err(err).Msg("modbus link close")
	}
}

// setTimeout applies to the next request on tcp.
// For rtu the serial read timeout is fixed when the port opens.
func (c *Client) setTimeout(d time.Duration) {
	switch {
	case c.tcp != nil:
		c.tcp.Timeout = d
	case c.rtu != nil:
		c.rtu.Timeout = d
	}
}

// timeoutFor returns the tighter of the configured timeout and the context deadline.
func (c *Client) timeoutFor(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	d := c.cfg.Timeout
	if dl, ok := ctx.Deadline(); ok {
		remaining := time.Until(dl)
		if remaining <= 0 {
			return 0, context.DeadlineExceeded
		}
		if remaining < d {
			d = remaining
		}
	}
	return d, nil
}

// ---- error shapes ----

// goburrow reports framing problems as plain fmt errors.
var (
	desyncMarkers = []string{
		"transaction id",
		"protocol id",
		"unit id",
		"slave id",
		"crc",
		"length in response header",
	}
	malformedMarkers = []string{
		"does not match count",
		"does not match pdu data length",
		"does not match expected",
		"response address",
		"response value",
		"response data is empty",
		"does not meet minimum",
	}
)

func isTimeout(err error) bool {
	if errors.Is(err, serial.ErrTimeout) ||
		errors.Is(err, os.ErrDeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// isDesync reports a reply that belongs to some other request.
func isDesync(err error) bool {
	return hasMarker(err, desyncMarkers)
}

// isMalformed reports a reply that matched the request but could not be decoded.
func isMalformed(err error) bool {
	return hasMarker(err, malformedMarkers)
}

func hasMarker(err error, markers []string) bool {
	var me *modbus.ModbusError
	if errors.As(err, &me) {
		return false
	}
	msg := err.Error()
	for _, m := range markers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// ---- helpers (pure geometry) ----

// Modbus register memory order (BIG-ENDIAN)
func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
