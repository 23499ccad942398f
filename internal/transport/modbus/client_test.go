// internal/transport/modbus/client_test.go
package modbus

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	gomodbus "github.com/goburrow/modbus"
	"github.com/goburrow/serial"

	"github.com/tamzrod/saunum-bridge/internal/saunum"
)

// ---- loopback Modbus TCP server ----

// fakeServer answers FC3 from a fixed register image and records FC6 writes.
type fakeServer struct {
	ln net.Listener

	mu     sync.Mutex
	regs   map[uint16]uint16
	writes map[uint16]uint16
	units  []uint8

	// lateFirst holds back the very first reply across all connections.
	lateFirst time.Duration
	// shortRead declares the full byte count on FC3 but sends at most 8 bytes.
	shortRead bool

	replies atomic.Int32
}

func startFakeServer(t *testing.T, regs map[uint16]uint16) *fakeServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &fakeServer{ln: ln, regs: regs, writes: map[uint16]uint16{}}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go s.serve(conn)
		}
	}()
	return s
}

func (s *fakeServer) serve(conn net.Conn) {
	defer conn.Close()

	// MBAP(7) + FC(1) + Address(2) + Quantity/Value(2)
	req := make([]byte, 12)
	for {
		if _, err := io.ReadFull(conn, req); err != nil {
			return
		}
		tid := binary.BigEndian.Uint16(req[0:2])
		unit := req[6]
		fc := req[7]
		addr := binary.BigEndian.Uint16(req[8:10])
		arg := binary.BigEndian.Uint16(req[10:12])

		s.mu.Lock()
		s.units = append(s.units, unit)
		var pdu []byte
		switch fc {
		case 3:
			pdu = []byte{fc, byte(arg * 2)}
			for i := uint16(0); i < arg; i++ {
				var w [2]byte
				binary.BigEndian.PutUint16(w[:], s.regs[addr+i])
				pdu = append(pdu, w[:]...)
			}
			if s.shortRead && len(pdu) > 2+8 {
				pdu = pdu[:2+8]
			}
		case 6:
			s.writes[addr] = arg
			pdu = append([]byte(nil), req[7:12]...)
		default:
			pdu = []byte{fc | 0x80, 1}
		}
		late := s.lateFirst
		s.mu.Unlock()

		if s.replies.Add(1) == 1 && late > 0 {
			time.Sleep(late)
		}

		resp := make([]byte, 7, 7+len(pdu))
		binary.BigEndian.PutUint16(resp[0:2], tid)
		binary.BigEndian.PutUint16(resp[2:4], 0)
		binary.BigEndian.PutUint16(resp[4:6], uint16(1+len(pdu)))
		resp[6] = unit
		resp = append(resp, pdu...)

		if _, err := conn.Write(resp); err != nil {
			return
		}
	}
}

// ---- tests ----

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected endpoint error")
	}
	if _, err := New(Config{Endpoint: "x:502", Mode: "ascii"}); err == nil {
		t.Fatalf("expected unsupported mode error")
	}
	c, err := New(Config{Endpoint: "/dev/ttyUSB0", Mode: ModeRTU, BaudRate: 19200, Parity: "e"})
	if err != nil {
		t.Fatalf("rtu config rejected: %v", err)
	}
	if c.rtu == nil || c.rtu.BaudRate != 19200 || c.rtu.Parity != "E" {
		t.Fatalf("rtu settings not applied")
	}
}

func TestRequest_NotConnected(t *testing.T) {
	c, err := New(Config{Endpoint: "127.0.0.1:1"})
	if err != nil {
		t.Fatalf("New err=%v", err)
	}

	_, err = c.ReadRegisters(context.Background(), 1, 0, 7)
	if !errors.Is(err, saunum.ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
	if err := c.WriteRegister(context.Background(), 1, 0, 1); !errors.Is(err, saunum.ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}

func TestClose_Idempotent(t *testing.T) {
	c, _ := New(Config{Endpoint: "127.0.0.1:1"})
	if err := c.Close(); err != nil {
		t.Fatalf("close err=%v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close err=%v", err)
	}
	if c.IsConnected() {
		t.Fatalf("closed client reports connected")
	}
}

func TestTimeoutFor(t *testing.T) {
	c := &Client{cfg: Config{Timeout: time.Second}}

	d, err := c.timeoutFor(context.Background())
	if err != nil || d != time.Second {
		t.Fatalf("expected configured timeout, got %v %v", d, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	d, err = c.timeoutFor(ctx)
	if err != nil || d > 50*time.Millisecond || d <= 0 {
		t.Fatalf("expected context deadline to win, got %v %v", d, err)
	}

	done, cancelDone := context.WithCancel(context.Background())
	cancelDone()
	if _, err := c.timeoutFor(done); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestReadWrite_RoundTrip(t *testing.T) {
	srv := startFakeServer(t, map[uint16]uint16{
		100: 0xFFF6,
		101: 0x0001,
		102: 0x0002,
		103: 2,
		104: 1,
	})

	c, err := New(Config{Endpoint: srv.ln.Addr().String(), Timeout: time.Second})
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("Connect err=%v", err)
	}
	if !c.IsConnected() {
		t.Fatalf("expected connected")
	}

	words, err := c.ReadRegisters(ctx, 7, 100, 5)
	if err != nil {
		t.Fatalf("ReadRegisters err=%v", err)
	}
	want := []uint16{0xFFF6, 1, 2, 2, 1}
	if len(words) != len(want) {
		t.Fatalf("expected %d words, got %d", len(want), len(words))
	}
	for i := range want {
		if words[i] != want[i] {
			t.Fatalf("word %d: got %d want %d", i, words[i], want[i])
		}
	}

	if err := c.WriteRegister(ctx, 7, 4, 85); err != nil {
		t.Fatalf("WriteRegister err=%v", err)
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.writes[4] != 85 {
		t.Fatalf("server did not receive write, got %v", srv.writes)
	}
	for _, u := range srv.units {
		if u != 7 {
			t.Fatalf("unit id not applied per request: %v", srv.units)
		}
	}
}

func TestSession_OverTransport(t *testing.T) {
	regs := map[uint16]uint16{
		0: 1, 1: 0, 2: 60, 3: 10, 4: 80, 5: 2, 6: 1,
		100: 75, 103: 1,
	}
	srv := startFakeServer(t, regs)

	tr, err := New(Config{Endpoint: srv.ln.Addr().String(), Timeout: time.Second})
	if err != nil {
		t.Fatalf("New err=%v", err)
	}

	s, err := saunum.Dial(context.Background(), saunum.Config{Host: "127.0.0.1", UnitID: 1}, tr)
	if err != nil {
		t.Fatalf("Dial err=%v", err)
	}
	defer s.Close()

	snap, err := s.GetData(context.Background())
	if err != nil {
		t.Fatalf("GetData err=%v", err)
	}
	if !snap.SessionActive || snap.TargetTemperature != 80 || snap.CurrentTemperature != 75 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if fs, ok := snap.FanSpeed.Get(); !ok || fs != saunum.FanMedium {
		t.Fatalf("unexpected fan speed %v", snap.FanSpeed)
	}
}

func TestSession_RecoversAfterLateReply(t *testing.T) {
	regs := map[uint16]uint16{4: 80, 100: 75}
	srv := startFakeServer(t, regs)
	srv.mu.Lock()
	srv.lateFirst = 300 * time.Millisecond
	srv.mu.Unlock()

	tr, err := New(Config{Endpoint: srv.ln.Addr().String(), Timeout: 100 * time.Millisecond})
	if err != nil {
		t.Fatalf("New err=%v", err)
	}

	s, err := saunum.Dial(context.Background(), saunum.Config{Host: "127.0.0.1", UnitID: 1}, tr)
	if err != nil {
		t.Fatalf("Dial err=%v", err)
	}
	defer s.Close()

	if _, err := s.GetData(context.Background()); !errors.Is(err, saunum.ErrTimeout) {
		t.Fatalf("expected ErrTimeout on first poll, got %v", err)
	}
	if !s.IsConnected() {
		t.Fatalf("timeout must not disconnect the session")
	}

	// wait out the late reply so it lands on the dropped socket
	time.Sleep(300 * time.Millisecond)

	for i := 0; i < 3; i++ {
		snap, err := s.GetData(context.Background())
		if err != nil {
			t.Fatalf("poll %d after timeout: %v", i+2, err)
		}
		if snap.CurrentTemperature != 75 || snap.TargetTemperature != 80 {
			t.Fatalf("poll %d: unexpected snapshot %+v", i+2, snap)
		}
	}
}

func TestReadRegisters_LateReplyRedials(t *testing.T) {
	srv := startFakeServer(t, map[uint16]uint16{100: 75})
	srv.mu.Lock()
	srv.lateFirst = 300 * time.Millisecond
	srv.mu.Unlock()

	c, err := New(Config{Endpoint: srv.ln.Addr().String(), Timeout: 100 * time.Millisecond})
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("Connect err=%v", err)
	}

	_, err = c.ReadRegisters(ctx, 1, 100, 1)
	var se *saunum.Error
	if !errors.As(err, &se) || se.Kind != saunum.KindTimeout {
		t.Fatalf("expected timeout kind, got %v", err)
	}
	if !c.IsConnected() {
		t.Fatalf("drop after timeout must keep the client connected")
	}

	time.Sleep(300 * time.Millisecond)

	words, err := c.ReadRegisters(ctx, 1, 100, 1)
	if err != nil {
		t.Fatalf("read after timeout: %v", err)
	}
	if len(words) != 1 || words[0] != 75 {
		t.Fatalf("unexpected words %v", words)
	}
}

func TestSession_ShortReadIsInvalidData(t *testing.T) {
	srv := startFakeServer(t, map[uint16]uint16{0: 1, 4: 80})
	srv.mu.Lock()
	srv.shortRead = true
	srv.mu.Unlock()

	tr, err := New(Config{Endpoint: srv.ln.Addr().String(), Timeout: time.Second})
	if err != nil {
		t.Fatalf("New err=%v", err)
	}

	s, err := saunum.Dial(context.Background(), saunum.Config{Host: "127.0.0.1", UnitID: 1}, tr)
	if err != nil {
		t.Fatalf("Dial err=%v", err)
	}
	defer s.Close()

	// control block is 7 words: byte count 14, 8 bytes on the wire
	_, err = s.GetData(context.Background())
	if !errors.Is(err, saunum.ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
	if errors.Is(err, saunum.ErrCommunication) {
		t.Fatalf("short read must not be a communication error: %v", err)
	}
	if !s.IsConnected() {
		t.Fatalf("invalid data must not disconnect the session")
	}
}

func TestSettle_Classification(t *testing.T) {
	c, err := New(Config{Endpoint: "127.0.0.1:1"})
	if err != nil {
		t.Fatalf("New err=%v", err)
	}

	cases := []struct {
		err  error
		kind saunum.Kind
	}{
		{os.ErrDeadlineExceeded, saunum.KindTimeout},
		{serial.ErrTimeout, saunum.KindTimeout},
		{fmt.Errorf("modbus: response transaction id '3' does not match request '4'"), saunum.KindCommunication},
		{fmt.Errorf("modbus: response protocol id '1' does not match request '0'"), saunum.KindCommunication},
		{fmt.Errorf("modbus: response crc '1' does not match expected '2'"), saunum.KindCommunication},
		{fmt.Errorf("modbus: response data size '8' does not match count '14'"), saunum.KindInvalidData},
		{fmt.Errorf("modbus: length in response '9' does not match pdu data length '3'"), saunum.KindInvalidData},
		{fmt.Errorf("modbus: response address '5' does not match request '4'"), saunum.KindInvalidData},
	}
	for _, tc := range cases {
		got := c.settle("op", tc.err)
		var se *saunum.Error
		if !errors.As(got, &se) || se.Kind != tc.kind {
			t.Fatalf("%v: expected kind %v, got %v", tc.err, tc.kind, got)
		}
	}

	exc := &gomodbus.ModbusError{FunctionCode: 0x83, ExceptionCode: 2}
	if got := c.settle("op", exc); got != exc {
		t.Fatalf("exception response must pass through unchanged, got %v", got)
	}
}

func TestUnpackRegisters(t *testing.T) {
	got := unpackRegisters([]byte{0x00, 0x4B, 0xFF, 0xF6})
	if len(got) != 2 || got[0] != 75 || got[1] != 0xFFF6 {
		t.Fatalf("unexpected %v", got)
	}
}
