package common

// WriteVarUint appends a varint to buf (allocating if needed).
func WriteVarUint(buf []byte, x uint64) []byte {
	for x >= 0x80 {
		buf = append(buf, byte(x)|0x80)
		x >>= 7
	}
	return append(buf, byte(x))
}

// ReadVarUint decodes a varint from b returning value and bytes consumed.
func ReadVarUint(b []byte) (uint64, int) {
	var x uint64
	var s uint
	for i, c := range b {
		x |= uint64(c&0x7F) << s
		if c&0x80 == 0 {
			return x, i + 1
		}
		s += 7
	}
	return 0, 0
}

// ValidIntWidth reports whether n is a supported integer byte width.
func ValidIntWidth(n uint32) bool {
	switch n {
	case 1, 2, 4, 8, 16:
		return true
	}
	return false
}

// ValidFloatWidth reports whether n is a supported float byte width.
func ValidFloatWidth(n uint32) bool {
	return n == 4 || n == 8
}
