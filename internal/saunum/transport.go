// internal/saunum/transport.go
package saunum

import "context"

// Transport abstracts the field-bus operations the session needs.
// Framing, CRC and PDU encoding live behind it.
//
// ReadRegisters MUST return exactly count words on success.
// Close MUST be idempotent.
type Transport interface {
	Connect(ctx context.Context) error
	IsConnected() bool
	ReadRegisters(ctx context.Context, unitID uint8, address, count uint16) ([]uint16, error)
	WriteRegister(ctx context.Context, unitID uint8, address, value uint16) error
	Close() error
}
