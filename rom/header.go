// Package rom decomposes and reassembles Nintendo DS ROM images: the fixed
// 0x4000-byte header, the FAT/FNT file tables, the ARM9/ARM7 overlay
// tables, and the CRC16 used to checksum the header itself.
package rom

import (
	"golang.org/x/xerrors"
)

// HeaderField identifies a field of the ROM header by its byte offset.
// Field lengths are derived from the gap to the next field in declaration
// order (see succOf), matching the header layout's fixed-offset design —
// there is no per-field length stored anywhere.
type HeaderField int

const (
	Title           HeaderField = 0x000
	Serial          HeaderField = 0x00C
	Maker           HeaderField = 0x010
	ChipCapacity    HeaderField = 0x014
	Revision        HeaderField = 0x01E
	Arm9RomOffset   HeaderField = 0x020
	Arm9EntryPoint  HeaderField = 0x024
	Arm9LoadAddr    HeaderField = 0x028
	Arm9LoadSize    HeaderField = 0x02C
	Arm7RomOffset   HeaderField = 0x030
	Arm7EntryPoint  HeaderField = 0x034
	Arm7LoadAddr    HeaderField = 0x038
	Arm7LoadSize    HeaderField = 0x03C
	FntbRomOffset   HeaderField = 0x040
	FntbBSize       HeaderField = 0x044
	FatbRomOffset   HeaderField = 0x048
	FatbBSize       HeaderField = 0x04C
	Ovt9RomOffset   HeaderField = 0x050
	Ovt9BSize       HeaderField = 0x054
	Ovt7RomOffset   HeaderField = 0x058
	Ovt7BSize       HeaderField = 0x05C
	RomctrlDec      HeaderField = 0x060
	RomctrlEnc      HeaderField = 0x064
	BannerRomOffset HeaderField = 0x068
	SecureCRC       HeaderField = 0x06C
	SecureDelay     HeaderField = 0x06E
	Arm9AutoloadCB  HeaderField = 0x070
	Arm7AutoloadCB  HeaderField = 0x074
	RomSize         HeaderField = 0x080
	HeaderSize      HeaderField = 0x084
	StaticFooter    HeaderField = 0x088
	staticFooterEnd HeaderField = 0x08C
	HeaderCRC       HeaderField = 0x15E
	headerCRCEnd    HeaderField = 0x160

	// EntireHeader is a pseudo-field denoting the header in its entirety.
	// It is also its own size, since Header.Set/Get special-case it rather
	// than look it up in fieldOrder.
	EntireHeader HeaderField = 0x4000
)

// fieldOrder lists every real field (excluding EntireHeader) in ascending
// offset order. A field's length is the gap to its successor in this
// list; the closed chain below mirrors the Python source's explicit
// succ() match statement field-for-field rather than being computed by
// sorting, since two bookkeeping-only fields (staticFooterEnd,
// headerCRCEnd) exist purely to bound their predecessors.
var fieldOrder = []HeaderField{
	Title, Serial, Maker, ChipCapacity, Revision,
	Arm9RomOffset, Arm9EntryPoint, Arm9LoadAddr, Arm9LoadSize,
	Arm7RomOffset, Arm7EntryPoint, Arm7LoadAddr, Arm7LoadSize,
	FntbRomOffset, FntbBSize, FatbRomOffset, FatbBSize,
	Ovt9RomOffset, Ovt9BSize, Ovt7RomOffset, Ovt7BSize,
	RomctrlDec, RomctrlEnc, BannerRomOffset,
	SecureCRC, SecureDelay, Arm9AutoloadCB, Arm7AutoloadCB,
	RomSize, HeaderSize, StaticFooter, staticFooterEnd,
	HeaderCRC, headerCRCEnd,
}

var succOf = buildSuccessorTable()

func buildSuccessorTable() map[HeaderField]HeaderField {
	m := make(map[HeaderField]HeaderField, len(fieldOrder))
	for i, f := range fieldOrder {
		if i+1 < len(fieldOrder) {
			m[f] = fieldOrder[i+1]
		} else {
			m[f] = EntireHeader
		}
	}
	return m
}

// succ returns the field immediately following f, or EntireHeader itself
// when f is EntireHeader.
func (f HeaderField) succ() HeaderField {
	if f == EntireHeader {
		return EntireHeader
	}
	return succOf[f]
}

// len returns the byte length of f: the gap to its successor, or
// EntireHeader's own size when f is EntireHeader.
func (f HeaderField) len() int {
	if f == EntireHeader {
		return int(EntireHeader)
	}
	return int(f.succ() - f)
}

// ErrHeaderLength is returned by NewHeader when the supplied data is not
// exactly EntireHeader (0x4000) bytes.
var ErrHeaderLength = xerrors.New("rom: header data must be exactly 0x4000 bytes")

// Header wraps the fixed 0x4000-byte ROM header, giving named, typed
// access to its fields.
type Header struct {
	data []byte
}

// NewHeader wraps data as a ROM header. data must be exactly 0x4000 bytes
// and is copied, not aliased.
func NewHeader(data []byte) (*Header, error) {
	if len(data) != int(EntireHeader) {
		return nil, xerrors.Errorf("rom: NewHeader: got %d bytes: %w", len(data), ErrHeaderLength)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return &Header{data: cp}, nil
}

// Get returns field f's raw bytes.
func (h *Header) Get(f HeaderField) []byte {
	if f == EntireHeader {
		out := make([]byte, len(h.data))
		copy(out, h.data)
		return out
	}
	return append([]byte(nil), h.data[f:f.succ()]...)
}

// Set assigns field f from v, which must be a []byte of exactly f's
// length or an integer type (encoded little-endian into f's length).
func (h *Header) Set(f HeaderField, v any) error {
	var value []byte

	switch x := v.(type) {
	case []byte:
		value = x
	case int:
		value = encodeLE(uint64(x), f.len())
	case int64:
		value = encodeLE(uint64(x), f.len())
	case uint64:
		value = encodeLE(x, f.len())
	case uint32:
		value = encodeLE(uint64(x), f.len())
	case uint16:
		value = encodeLE(uint64(x), f.len())
	case byte:
		value = encodeLE(uint64(x), f.len())
	default:
		return xerrors.Errorf("rom: Header.Set(%v): unsupported value type %T", f, v)
	}

	if f == EntireHeader {
		if len(value) != len(h.data) {
			return xerrors.Errorf("rom: Header.Set(EntireHeader): got %d bytes, want %d", len(value), len(h.data))
		}
		copy(h.data, value)
		return nil
	}

	if len(value) != f.len() {
		return xerrors.Errorf("rom: Header.Set(%v): got %d bytes, want %d", f, len(value), f.len())
	}
	copy(h.data[f:f.succ()], value)
	return nil
}

// GetLE returns field f interpreted as a little-endian unsigned integer.
func (h *Header) GetLE(f HeaderField) uint64 {
	b := h.Get(f)
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// GetRomRegion returns the slice of rom spanning [off, off+length), where
// off and length are read (little-endian) from the header fields
// offsetField and lengthField.
func (h *Header) GetRomRegion(rom []byte, offsetField, lengthField HeaderField) []byte {
	off := h.GetLE(offsetField)
	length := h.GetLE(lengthField)
	return rom[off : off+length]
}

func encodeLE(v uint64, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}
