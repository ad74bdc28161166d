package encryption

import (
	"bytes"
	"fmt"

	"riffbox/internal/riffbox"
)

// testHeader is prepended by TestCodec so sealed output differs from
// plaintext while staying deterministic.
var testHeader = []byte("RBXENC\x00\x00")

// TestCodec is a reversible, deterministic codec for tests. It needs no keys.
type TestCodec struct{}

var _ riffbox.Codec = TestCodec{}

func NewTestCodec() TestCodec { return TestCodec{} }

func (TestCodec) Seal(plaintext []byte) ([]byte, error) {
	out := make([]byte, 0, len(testHeader)+len(plaintext))
	out = append(out, testHeader...)
	return append(out, plaintext...), nil
}

func (TestCodec) Open(sealed []byte) ([]byte, error) {
	if !bytes.HasPrefix(sealed, testHeader) {
		return nil, fmt.Errorf("invalid test encryption header")
	}
	return append([]byte(nil), sealed[len(testHeader):]...), nil
}

func (TestCodec) Extension() string { return ".enc" }
