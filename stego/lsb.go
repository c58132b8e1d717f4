package stego

// lsbUnit is a carrier unit with a least-significant bit to borrow.
type lsbUnit interface {
	~int | ~int16 | ~int32 | ~uint8
}

func setLSB[T lsbUnit](v T, bit uint8) T {
	return v&^1 | T(bit&1)
}

func lsb[T lsbUnit](v T) uint8 {
	return uint8(v & 1)
}

// embedBits overwrites the LSB of units[at(i)] with bit i of bits, for every
// bit in order. The caller has already checked capacity.
func embedBits[T lsbUnit](units []T, bits BitSequence, at func(i int) int) {
	for i := 0; i < bits.Len(); i++ {
		pos := at(i)
		units[pos] = setLSB(units[pos], bits.Bit(i))
	}
}

// extractBits feeds the LSB of units[at(0)], units[at(1)], ... into a
// message reader until the message ends or n units have been read.
func extractBits[T lsbUnit](units []T, n int, at func(i int) int, opts ...DecodeOption) string {
	mr := newMessageReader(opts...)
	for i := 0; i < n; i++ {
		if mr.push(lsb(units[at(i)])) {
			break
		}
	}
	return mr.message()
}

func identity(i int) int { return i }
