package stego

import (
	"github.com/yyyoichi/bitstream-go"
)

const (
	// Delimiter terminates every embedded bit sequence: 1111111111111110.
	Delimiter uint16 = 0xFFFE

	delimiterBits = 16
	bitsPerChar   = 8
	stopByte      = byte(Delimiter >> 8)
	delimiterTail = byte(Delimiter & 0xFF)
)

// BitSequence is the ordered payload written into a carrier, one bit per unit.
type BitSequence struct {
	reader *bitstream.BitReader[uint64]
	n      int
}

// ToBits expands every code point of message into its 8-bit big-endian form
// and appends the 16-bit Delimiter. Code points above 255 are rejected, as is
// an in-message "\u00ff\u00fe" pair.
func ToBits(message string) (BitSequence, error) {
	if _, err := countCodeUnits(message); err != nil {
		return BitSequence{}, err
	}
	w := bitstream.NewBitWriter[uint64](0, 0)
	for _, r := range message {
		w.Write8(0, 8, uint8(r))
	}
	w.Write8(0, 8, stopByte)
	w.Write8(0, 8, delimiterTail)
	return newBitSequence(w.Data(), w.Bits()), nil
}

// NewBitSequence packs raw bits, true meaning 1.
func NewBitSequence(bits []bool) BitSequence {
	w := bitstream.NewBitWriter[uint64](0, 0)
	for _, b := range bits {
		w.WriteBool(b)
	}
	return newBitSequence(w.Data(), len(bits))
}

func newBitSequence(data []uint64, n int) BitSequence {
	reader := bitstream.NewBitReader(data, 0, 0)
	reader.SetBits(n)
	return BitSequence{reader: reader, n: n}
}

// Len returns the number of bits in the sequence.
func (b BitSequence) Len() int {
	return b.n
}

// Bit returns bit i as 0 or 1.
func (b BitSequence) Bit(i int) uint8 {
	if v, _ := b.reader.ReadBitAt(i); v {
		return 1
	}
	return 0
}

// FromBits decodes a bit sequence back into a message. Bits are consumed in
// 8-bit groups until the stop condition fires or the input runs out; a
// trailing group shorter than 8 bits is discarded.
func FromBits(bits BitSequence, opts ...DecodeOption) string {
	mr := newMessageReader(opts...)
	for i := 0; i < bits.Len(); i++ {
		if mr.push(bits.Bit(i)) {
			break
		}
	}
	return mr.message()
}

// DecodeOption tunes how the end of an embedded message is recognised.
type DecodeOption func(*messageReader)

// WithLegacyStop ends the message at the first 0xFF byte instead of the
// full 16-bit Delimiter. Messages containing ÿ (U+00FF) are then cut short,
// but carriers written by tools that relied on this rule decode the same way.
func WithLegacyStop() DecodeOption {
	return func(mr *messageReader) {
		mr.legacy = true
	}
}

// messageReader assembles LSBs into bytes and watches for the stop condition,
// so carriers can stop scanning as soon as the message is complete.
type messageReader struct {
	legacy bool
	cur    byte
	nbits  int
	out    []byte
	done   bool
}

func newMessageReader(opts ...DecodeOption) *messageReader {
	mr := &messageReader{}
	for _, opt := range opts {
		opt(mr)
	}
	return mr
}

// push appends one bit and reports whether the message is complete.
func (mr *messageReader) push(bit uint8) bool {
	if mr.done {
		return true
	}
	mr.cur = mr.cur<<1 | bit&1
	mr.nbits++
	if mr.nbits < bitsPerChar {
		return false
	}
	b := mr.cur
	mr.cur, mr.nbits = 0, 0

	if mr.legacy {
		if b == stopByte {
			mr.done = true
			return true
		}
		mr.out = append(mr.out, b)
		return false
	}

	if b == delimiterTail && len(mr.out) > 0 && mr.out[len(mr.out)-1] == stopByte {
		mr.out = mr.out[:len(mr.out)-1]
		mr.done = true
		return true
	}
	mr.out = append(mr.out, b)
	return false
}

// message returns the decoded text, one code point per byte.
func (mr *messageReader) message() string {
	runes := make([]rune, len(mr.out))
	for i, b := range mr.out {
		runes[i] = rune(b)
	}
	return string(runes)
}
