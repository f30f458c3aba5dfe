package rom

import (
	"bytes"
	"log"
	"sort"

	"golang.org/x/xerrors"
)

// mustSet sets a header field computed internally by ToBytes — an offset,
// a size, a checksum — none of which should ever fail to encode. A
// failure here means ToBytes miscalculated a field length, not that the
// input was malformed, so it panics rather than returning an error.
func mustSet(h *Header, f HeaderField, v any) {
	if err := h.Set(f, v); err != nil {
		log.Panicf("rom: internal error setting %v: %v", f, err)
	}
}

// bannerSizeMap maps a banner version to its on-disk size in bytes.
var bannerSizeMap = map[uint16]int{
	1: 0x840,
	2: 0x940,
	3: 0x1240,
}

const (
	romAlign = 0x200

	stMrom = 0x51E
	stProm = 0xD7E

	romctrlDecMrom = 0x586000
	romctrlEncMrom = 0x1808F8
	romctrlDecProm = 0x416657
	romctrlEncProm = 0x81808F8

	tryCapshiftBase = 0x20000
	maxCapshiftPROM = 15
	maxCapshiftMROM = 10
)

// arm9FooterMagic is the trailer DS compilers append to an ARM9 binary
// right after its declared load size when the binary uses the
// nitro-footer autoload convention.
var arm9FooterMagic = []byte{0x21, 0x06, 0xC0, 0xDE}

// StorageType selects the cartridge encoding parameters baked into the
// header's ROMCTRL and secure-area-delay fields.
type StorageType int

const (
	MROM StorageType = iota
	PROM
)

// WriteOptions configures Rom.ToBytes.
type WriteOptions struct {
	StorageType StorageType
	FillTail    bool
	FillWith    byte
}

// DefaultWriteOptions returns the conventional write options: PROM
// encoding, tail-filled, padded with 0xFF.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{StorageType: PROM, FillTail: true, FillWith: 0xFF}
}

// ErrUnknownBannerVersion is returned when a ROM's banner declares a
// version this package does not recognize.
var ErrUnknownBannerVersion = xerrors.New("rom: unknown banner version")

// ErrRomTooBig is returned by ToBytes when the assembled ROM exceeds the
// largest representable chip capacity for its storage type.
var ErrRomTooBig = xerrors.New("rom: assembled rom exceeds maximum chip capacity")

// Rom is the decomposition of a DS ROM image into its parts.
type Rom struct {
	Header       *Header
	Arm9         []byte
	Arm7         []byte
	Arm9Overlays []Overlay
	Arm7Overlays []Overlay
	// Files maps each file's absolute path to its contents.
	Files map[string][]byte
	// FileOrder is the physical order files are laid out in the ROM, by
	// path.
	FileOrder []string
	Banner    []byte
}

// FromBytes decomposes a complete ROM image into its components.
func FromBytes(data []byte) (*Rom, error) {
	if len(data) < int(EntireHeader) {
		return nil, xerrors.Errorf("rom: FromBytes: data shorter than header: %w", ErrHeaderLength)
	}
	header, err := NewHeader(data[:EntireHeader])
	if err != nil {
		return nil, xerrors.Errorf("rom: FromBytes: %w", err)
	}

	fatb := header.GetRomRegion(data, FatbRomOffset, FatbBSize)
	entries, idOrder := ParseFAT(fatb)

	fileSeq := make([][]byte, len(entries))
	for i, e := range entries {
		fileSeq[i] = data[e.Start:e.End]
	}

	fntb := header.GetRomRegion(data, FntbRomOffset, FntbBSize)
	filenameIDMap := WalkFNT(fntb)

	arm9Ovys := ParseOverlayTable(header.GetRomRegion(data, Ovt9RomOffset, Ovt9BSize), fileSeq)
	arm7Ovys := ParseOverlayTable(header.GetRomRegion(data, Ovt7RomOffset, Ovt7BSize), fileSeq)

	idFilenameMap := make(map[int]string, len(filenameIDMap))
	for name, id := range filenameIDMap {
		idFilenameMap[id] = name
	}
	fileOrder := make([]string, 0, len(idOrder))
	for _, id := range idOrder {
		if name, ok := idFilenameMap[id]; ok {
			fileOrder = append(fileOrder, name)
		}
	}

	arm9Start := int(header.GetLE(Arm9RomOffset))
	arm9Len := int(header.GetLE(Arm9LoadSize))
	if arm9Start+arm9Len+12 <= len(data) && bytes.Equal(data[arm9Start+arm9Len:arm9Start+arm9Len+4], arm9FooterMagic) {
		arm9Len += 12
	}
	arm9 := data[arm9Start : arm9Start+arm9Len]

	arm7 := header.GetRomRegion(data, Arm7RomOffset, Arm7LoadSize)

	bannerOff := int(header.GetLE(BannerRomOffset))
	bannerVersion := le16(data[bannerOff:])
	bannerSize, ok := bannerSizeMap[bannerVersion]
	if !ok {
		return nil, xerrors.Errorf("rom: FromBytes: banner version %d: %w", bannerVersion, ErrUnknownBannerVersion)
	}
	banner := data[bannerOff : bannerOff+bannerSize]

	files := make(map[string][]byte, len(filenameIDMap))
	for name, id := range filenameIDMap {
		files[name] = fileSeq[id]
	}

	return &Rom{
		Header:       header,
		Arm9:         arm9,
		Arm7:         arm7,
		Arm9Overlays: arm9Ovys,
		Arm7Overlays: arm7Ovys,
		Files:        files,
		FileOrder:    fileOrder,
		Banner:       banner,
	}, nil
}

// ToBytes reassembles the ROM's components into a complete image,
// recomputing the header's section offset and size fields, capacity
// shift, storage-type fields and header CRC along the way. The secure
// area CRC field is carried over from r.Header unchanged.
func (r *Rom) ToBytes(opts WriteOptions) ([]byte, error) {
	ovt9, ovys9 := ConstructOverlayTable(r.Arm9Overlays, 0)
	ovt7, ovys7 := ConstructOverlayTable(r.Arm7Overlays, len(ovys9))

	fatb := make([]byte, (len(ovys9)+len(ovys7)+len(r.Files))*8)
	fatbI := 0

	var postHeaderBytes []byte

	header, err := NewHeader(r.Header.Get(EntireHeader))
	if err != nil {
		return nil, xerrors.Errorf("rom: ToBytes: cloning header: %w", err)
	}

	if opts.StorageType == MROM {
		mustSet(header, RomctrlDec, romctrlDecMrom)
		mustSet(header, RomctrlEnc, romctrlEncMrom)
		mustSet(header, SecureDelay, stMrom)
	} else {
		mustSet(header, RomctrlDec, romctrlDecProm)
		mustSet(header, RomctrlEnc, romctrlEncProm)
		mustSet(header, SecureDelay, stProm)
	}

	curOff := func() int { return len(postHeaderBytes) + int(EntireHeader) }
	alignPostHeaderBytes := func() int {
		paddingLen := (-len(postHeaderBytes)) & (romAlign - 1)
		postHeaderBytes = append(postHeaderBytes, bytes.Repeat([]byte{opts.FillWith}, paddingLen)...)
		return paddingLen
	}
	sizeAfterPadding := func(size int) int {
		return size + ((-size) & (romAlign - 1))
	}

	mustSet(header, Arm9RomOffset, curOff())
	postHeaderBytes = append(postHeaderBytes, r.Arm9...)
	alignPostHeaderBytes()

	if len(r.Arm9) > 12 && bytes.Equal(r.Arm9[len(r.Arm9)-12:len(r.Arm9)-8], arm9FooterMagic) {
		mustSet(header, Arm9LoadSize, len(r.Arm9)-12)
	} else {
		mustSet(header, Arm9LoadSize, len(r.Arm9))
	}

	writeOvs := func(ovt []byte, ovys [][]byte, offsetField, sizeField HeaderField) {
		if len(ovt) > 0 {
			mustSet(header, offsetField, curOff())
		} else {
			mustSet(header, offsetField, 0)
		}
		mustSet(header, sizeField, len(ovt))

		postHeaderBytes = append(postHeaderBytes, ovt...)
		alignPostHeaderBytes()

		for _, ovy := range ovys {
			coff := curOff()
			putLE32(fatb[fatbI:], uint32(coff))
			putLE32(fatb[fatbI+4:], uint32(coff+len(ovy)))
			fatbI += 8
			postHeaderBytes = append(postHeaderBytes, ovy...)
			alignPostHeaderBytes()
		}
	}

	writeOvs(ovt9, ovys9, Ovt9RomOffset, Ovt9BSize)

	mustSet(header, Arm7RomOffset, curOff())
	postHeaderBytes = append(postHeaderBytes, r.Arm7...)
	alignPostHeaderBytes()
	mustSet(header, Arm7LoadSize, len(r.Arm7))

	writeOvs(ovt7, ovys7, Ovt7RomOffset, Ovt7BSize)

	if len(r.Files) > 0 {
		paths := make([]string, 0, len(r.Files))
		for p := range r.Files {
			paths = append(paths, p)
		}
		sort.Strings(paths)

		fntb, filenameIDMap, err := ConstructFNTB(paths, len(ovys9)+len(ovys7))
		if err != nil {
			return nil, xerrors.Errorf("rom: ToBytes: %w", err)
		}

		mustSet(header, FntbRomOffset, curOff())
		postHeaderBytes = append(postHeaderBytes, fntb...)
		alignPostHeaderBytes()
		mustSet(header, FntbBSize, len(fntb))

		fileOff := curOff() + sizeAfterPadding(len(fatb)) + sizeAfterPadding(len(r.Banner))

		for _, path := range r.FileOrder {
			file := r.Files[path]
			idx := filenameIDMap[path] * 8
			putLE32(fatb[idx:], uint32(fileOff))
			putLE32(fatb[idx+4:], uint32(fileOff+len(file)))
			fileOff += sizeAfterPadding(len(file))
		}
	} else {
		mustSet(header, FntbRomOffset, 0)
		mustSet(header, FntbBSize, 0)
	}

	mustSet(header, FatbRomOffset, curOff())
	postHeaderBytes = append(postHeaderBytes, fatb...)
	alignPostHeaderBytes()
	mustSet(header, FatbBSize, len(fatb))

	mustSet(header, BannerRomOffset, curOff())
	postHeaderBytes = append(postHeaderBytes, r.Banner...)
	lastPadding := alignPostHeaderBytes()

	for _, path := range r.FileOrder {
		postHeaderBytes = append(postHeaderBytes, r.Files[path]...)
		lastPadding = alignPostHeaderBytes()
	}

	if lastPadding > 0 {
		postHeaderBytes = postHeaderBytes[:len(postHeaderBytes)-lastPadding]
	}

	romSize := curOff()

	maxshift := maxCapshiftMROM
	if opts.StorageType == PROM {
		maxshift = maxCapshiftPROM
	}

	shift := -1
	for s := 0; s < maxshift; s++ {
		if romSize < (tryCapshiftBase << s) {
			shift = s
			mustSet(header, ChipCapacity, s)
			break
		}
	}
	if shift == -1 {
		return nil, xerrors.Errorf("rom: ToBytes: size %d exceeds max capacity for shift %d: %w", romSize, maxshift, ErrRomTooBig)
	}
	tailsize := tryCapshiftBase << shift

	mustSet(header, RomSize, romSize)
	mustSet(header, HeaderSize, int(EntireHeader))
	mustSet(header, StaticFooter, 0x4BA0)

	crc := CRC16(header.data[:int(HeaderCRC)], 0xFFFF)
	mustSet(header, HeaderCRC, int(crc))

	if opts.FillTail {
		if padLen := tailsize - len(postHeaderBytes) - int(EntireHeader); padLen > 0 {
			postHeaderBytes = append(postHeaderBytes, bytes.Repeat([]byte{opts.FillWith}, padLen)...)
		}
	}

	return append(header.data, postHeaderBytes...), nil
}
