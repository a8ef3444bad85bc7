package kumitate

import "math/bits"

// componentMask is the set of component IDs an archetype stores. Each bit
// corresponds to one registered component type, so the mask doubles as the
// archetype's lookup key.
type componentMask [4]uint64

// set adds the component ID to the mask.
func (m *componentMask) set(id uint8) {
	m[id>>6] |= uint64(1) << (id & 63)
}

// unset removes the component ID from the mask.
func (m *componentMask) unset(id uint8) {
	m[id>>6] &^= uint64(1) << (id & 63)
}

// has reports whether the component ID is in the mask.
func (m componentMask) has(id uint8) bool {
	return m[id>>6]&(uint64(1)<<(id&63)) != 0
}

// ids returns the component IDs in ascending order.
func (m componentMask) ids() []uint8 {
	n := 0
	for _, word := range m {
		n += bits.OnesCount64(word)
	}
	out := make([]uint8, 0, n)
	for i, word := range m {
		for word != 0 {
			o := bits.TrailingZeros64(word)
			out = append(out, uint8(i<<6|o))
			word &= word - 1
		}
	}
	return out
}
