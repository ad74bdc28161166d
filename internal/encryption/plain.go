package encryption

import "riffbox/internal/riffbox"

// PlainCodec stores bytes unchanged.
type PlainCodec struct{}

var _ riffbox.Codec = PlainCodec{}

func (PlainCodec) Seal(b []byte) ([]byte, error) { return b, nil }
func (PlainCodec) Open(b []byte) ([]byte, error) { return b, nil }
func (PlainCodec) Extension() string             { return "" }
