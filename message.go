package chatclient

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
)

// ChunkSource yields the inbound bytes available right now without blocking.
// An empty chunk means nothing more is available.
type ChunkSource interface {
	ReceiveAvailable() ([]byte, error)
}

// Assembler turns the bytes available in one polling cycle into at most one
// text message. It keeps no state between cycles: a message split across a
// cycle boundary is delivered as two messages, and two messages that arrive
// within one cycle are delivered as one.
type Assembler struct {
	enc encoding.Encoding
}

// NewAssembler creates an assembler decoding with the single-byte encoding enc.
func NewAssembler(enc encoding.Encoding) *Assembler {
	return &Assembler{enc: enc}
}

// Drain reads from src while more data is immediately available and
// assembles everything read into one message. ok is false when the trimmed
// text is empty.
func (a *Assembler) Drain(src ChunkSource) (msg string, ok bool, err error) {
	var chunks [][]byte
	for {
		chunk, err := src.ReceiveAvailable()
		if err != nil {
			return "", false, err
		}
		if len(chunk) == 0 {
			break
		}
		chunks = append(chunks, chunk)
	}

	msg, ok = a.Assemble(chunks...)
	return msg, ok, nil
}

// Assemble decodes and concatenates chunks, then trims surrounding whitespace.
func (a *Assembler) Assemble(chunks ...[]byte) (string, bool) {
	if len(chunks) == 0 {
		return "", false
	}

	text, err := a.enc.NewDecoder().Bytes(bytes.Join(chunks, nil))
	if err != nil {
		// single-byte decoders substitute rather than fail
		return "", false
	}

	msg := strings.TrimSpace(string(text))
	return msg, msg != ""
}

// encodeText converts text to the wire encoding, replacing characters the
// encoding cannot represent.
func encodeText(enc encoding.Encoding, text string) ([]byte, error) {
	data, err := encoding.ReplaceUnsupported(enc.NewEncoder()).Bytes([]byte(text))
	if err != nil {
		return nil, errors.Wrap(err, "encode")
	}
	return data, nil
}
