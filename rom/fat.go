package rom

import "sort"

// FATEntry is one file's (start, end) byte range within the ROM, as
// stored directly in the FAT.
type FATEntry struct {
	Start uint32
	End   uint32
}

// ParseFAT decodes a raw FAT block into its per-ID entries plus the
// permutation of IDs sorted by physical start offset within the ROM —
// the order files actually appear on disk, independent of ID assignment.
func ParseFAT(fatb []byte) (entries []FATEntry, idOrder []int) {
	n := len(fatb) / 8
	entries = make([]FATEntry, n)
	for i := 0; i < n; i++ {
		start := le32(fatb[8*i:])
		end := le32(fatb[8*i+4:])
		entries[i] = FATEntry{Start: start, End: end}
	}

	idOrder = make([]int, n)
	for i := range idOrder {
		idOrder[i] = i
	}
	sort.SliceStable(idOrder, func(a, b int) bool {
		return entries[idOrder[a]].Start < entries[idOrder[b]].Start
	})

	return entries, idOrder
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func putLE16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func le16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}
