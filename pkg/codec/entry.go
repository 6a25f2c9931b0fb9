package codec

import (
	"errors"
	"io"

	ignerrors "github.com/emberkv/ignite/pkg/errors"
)

// Entry is one logical (key, value) record. On disk it is the concatenation
// of the key's encoding followed by the value's encoding, with no framing
// header: both codecs are length-self-describing.
type Entry[K any, V any] struct {
	Key   K
	Value V
}

// Stream is the minimal surface EntryCodec.Read needs: a reader that also
// knows how many unread bytes remain, so CanRead can answer
// "position < length" without a separate length query. *bytes.Reader
// satisfies this already.
type Stream interface {
	io.Reader
	Len() int
}

// ErrTornEntry is returned by EntryCodec.Read when the stream ran out of
// bytes partway through decoding the last entry. This is treated as
// end-of-stream rather than a hard failure; callers should log a warning
// and stop reading rather than propagate the error.
var ErrTornEntry = errors.New("codec: torn trailing entry treated as end-of-stream")

// EntryCodec serializes/deserializes Entry[K, V] values.
type EntryCodec[K any, V any] struct {
	KeyCodec   Codec[K]
	ValueCodec Codec[V]
}

// NewEntryCodec builds an EntryCodec from the given key and value codecs.
func NewEntryCodec[K any, V any](keyCodec Codec[K], valueCodec Codec[V]) *EntryCodec[K, V] {
	return &EntryCodec[K, V]{KeyCodec: keyCodec, ValueCodec: valueCodec}
}

// CanRead reports whether s has any unread bytes.
func CanRead(s Stream) bool {
	return s.Len() > 0
}

// Write appends key's encoding followed by value's encoding to w. The
// entry is written as a single logical unit: both encode calls happen
// back-to-back with no intervening write, minimizing the torn-write window
// the process could crash inside.
func (c *EntryCodec[K, V]) Write(w io.Writer, key K, value V) error {
	if err := c.KeyCodec.Encode(w, key); err != nil {
		return err
	}
	if err := c.ValueCodec.Encode(w, value); err != nil {
		return err
	}
	return nil
}

// Read decodes one Entry from s. If s has no unread bytes, it returns
// (nil, false, nil) — the logical "empty option" case of no entry left to
// read. If decoding a key or value needs more bytes than remain in s, this
// is treated as a torn trailing entry (ErrTornEntry), not a hard error.
// Any other malformed-byte condition is a DecodeError.
func (c *EntryCodec[K, V]) Read(s Stream) (*Entry[K, V], bool, error) {
	if !CanRead(s) {
		return nil, false, nil
	}

	key, err := c.KeyCodec.Decode(s)
	if err != nil {
		if isTruncation(err) {
			return nil, false, ErrTornEntry
		}
		return nil, false, ignerrors.NewDecodeError(err, "key")
	}

	value, err := c.ValueCodec.Decode(s)
	if err != nil {
		if isTruncation(err) {
			return nil, false, ErrTornEntry
		}
		return nil, false, ignerrors.NewDecodeError(err, "value")
	}

	return &Entry[K, V]{Key: key, Value: value}, true, nil
}

func isTruncation(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
