package rom

// Overlay is a single ARM9 or ARM7 code overlay: a relocatable chunk of
// code/data loaded into RAM at boot or on demand.
type Overlay struct {
	ID           uint32
	RamAddress   uint32
	RamSize      uint32
	BSSSize      uint32
	SinitInit    uint32
	SinitInitEnd uint32
	Data         []byte
	Reserved     uint32
}

const overlayEntrySize = 32

// ParseOverlayTable decodes a raw overlay table (32 bytes per entry) into
// its Overlay values, pulling each overlay's data out of files by the
// file ID stored in the table's 7th word.
func ParseOverlayTable(table []byte, files [][]byte) []Overlay {
	n := len(table) / overlayEntrySize
	ret := make([]Overlay, n)

	for i := 0; i < n; i++ {
		off := i * overlayEntrySize
		id := le32(table[off:])
		ramAddress := le32(table[off+4:])
		ramSize := le32(table[off+8:])
		bssSize := le32(table[off+12:])
		sinitInit := le32(table[off+16:])
		sinitInitEnd := le32(table[off+20:])
		fileID := le32(table[off+24:])
		reserved := le32(table[off+28:])

		ret[i] = Overlay{
			ID:           id,
			RamAddress:   ramAddress,
			RamSize:      ramSize,
			BSSSize:      bssSize,
			SinitInit:    sinitInit,
			SinitInitEnd: sinitInitEnd,
			Data:         files[fileID],
			Reserved:     reserved,
		}
	}

	return ret
}

// ConstructOverlayTable encodes overlays into a raw overlay table,
// assigning each a file ID starting at fileIDOff (the table's 7th word),
// and returns the table alongside the overlays' data in file-ID order.
func ConstructOverlayTable(overlays []Overlay, fileIDOff int) ([]byte, [][]byte) {
	table := make([]byte, 0, len(overlays)*overlayEntrySize)
	dataSeq := make([][]byte, 0, len(overlays))

	for _, ov := range overlays {
		fileID := len(dataSeq) + fileIDOff
		dataSeq = append(dataSeq, ov.Data)

		entry := make([]byte, overlayEntrySize)
		putLE32(entry[0:], ov.ID)
		putLE32(entry[4:], ov.RamAddress)
		putLE32(entry[8:], ov.RamSize)
		putLE32(entry[12:], ov.BSSSize)
		putLE32(entry[16:], ov.SinitInit)
		putLE32(entry[20:], ov.SinitInitEnd)
		putLE32(entry[24:], uint32(fileID))
		putLE32(entry[28:], ov.Reserved)

		table = append(table, entry...)
	}

	return table, dataSeq
}
