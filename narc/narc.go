// Package narc decomposes and reassembles NARC archives — the generic
// NDS container format (BTAF file-allocation table, BTNF filename table,
// GMIF file image) used to pack a ROM's asset directories. It reuses the
// rom package's FNT walker and forced-ID FNT synthesizer rather than
// duplicating that logic.
package narc

import (
	"golang.org/x/xerrors"

	"github.com/ljtpetersen/apnds/rom"
)

const (
	headerMagic         = 0x4352414E
	headerLEBom         = 0xFFFE
	headerVersionMarker = 0x100
)

// ErrBadMagic is returned when data's magic number does not identify it
// as a NARC archive.
var ErrBadMagic = xerrors.New("narc: bad magic")

// ErrBadBOM is returned when the byte-order-mark field is not the
// expected little-endian marker.
var ErrBadBOM = xerrors.New("narc: bad byte order mark")

// ErrBadVersion is returned when the header's version field doesn't
// match the version this package implements.
var ErrBadVersion = xerrors.New("narc: bad version")

// ErrSizeMismatch is returned when the header's declared total size does
// not match the length of the data actually supplied.
var ErrSizeMismatch = xerrors.New("narc: size field does not match data length")

// ErrBadSectionMagic is returned when one of the BTAF/BTNF/GMIF section
// magic numbers does not match at its expected offset.
var ErrBadSectionMagic = xerrors.New("narc: bad section magic")

// Narc is the decomposition of a NARC archive: its files, in FAT order,
// and the map from archive path to file index.
type Narc struct {
	Files         [][]byte
	FilenameIDMap map[string]int
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func le16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

// FromBytes decomposes a complete NARC archive into its files and
// filename/ID map.
func FromBytes(data []byte) (*Narc, error) {
	if len(data) < 16 {
		return nil, xerrors.Errorf("narc: FromBytes: data shorter than header: %w", ErrBadMagic)
	}

	magic := le32(data[0:4])
	bom := le16(data[4:6])
	version := le16(data[6:8])
	size := le32(data[8:12])
	headerSize := le16(data[12:14])

	if magic != headerMagic {
		return nil, xerrors.Errorf("narc: FromBytes: %w", ErrBadMagic)
	}
	if bom != headerLEBom {
		return nil, xerrors.Errorf("narc: FromBytes: %w", ErrBadBOM)
	}
	if version != headerVersionMarker {
		return nil, xerrors.Errorf("narc: FromBytes: %w", ErrBadVersion)
	}
	if int(size) != len(data) {
		return nil, xerrors.Errorf("narc: FromBytes: header says %d bytes, got %d: %w", size, len(data), ErrSizeMismatch)
	}

	fatbPos := int(headerSize)
	if fatbPos+4 > len(data) || string(data[fatbPos:fatbPos+4]) != "BTAF" {
		return nil, xerrors.Errorf("narc: FromBytes: FATB magic: %w", ErrBadSectionMagic)
	}
	fatbLength := le32(data[fatbPos+4 : fatbPos+8])
	numFileEntries := le32(data[fatbPos+8 : fatbPos+12])

	fatbInts := make([]uint32, 2*numFileEntries)
	for i := range fatbInts {
		off := fatbPos + 12 + 4*i
		fatbInts[i] = le32(data[off : off+4])
	}

	fntbPos := fatbPos + int(fatbLength)
	if fntbPos+4 > len(data) || string(data[fntbPos:fntbPos+4]) != "BTNF" {
		return nil, xerrors.Errorf("narc: FromBytes: FNTB magic: %w", ErrBadSectionMagic)
	}
	fntbLen := le32(data[fntbPos+4 : fntbPos+8])

	fimgPos := fntbPos + int(fntbLen)
	if fimgPos+4 > len(data) || string(data[fimgPos:fimgPos+4]) != "GMIF" {
		return nil, xerrors.Errorf("narc: FromBytes: GMIF magic: %w", ErrBadSectionMagic)
	}
	off := fimgPos + 8

	fileData := data[off:]

	files := make([][]byte, numFileEntries)
	for i := range files {
		start := fatbInts[2*i]
		end := fatbInts[2*i+1]
		files[i] = fileData[start:end]
	}

	filenameIDMap := rom.WalkFNT(data[fntbPos+8 : fntbPos+int(fntbLen)])

	return &Narc{Files: files, FilenameIDMap: filenameIDMap}, nil
}

// ToBytes reassembles the archive's files and filename/ID map into a
// complete NARC image.
func (n *Narc) ToBytes() []byte {
	fatbContents := make([]byte, 8*len(n.Files))
	coff := 0
	for i, file := range n.Files {
		putLE32(fatbContents[8*i:], uint32(coff))
		putLE32(fatbContents[8*i+4:], uint32(coff+len(file)))
		coff += len(file)
		coff += (-coff) & 3
	}

	fatb := make([]byte, 0, 12+len(fatbContents))
	fatb = append(fatb, "BTAF"...)
	fatb = appendLE32(fatb, uint32(12+8*len(n.Files)))
	fatb = appendLE32(fatb, uint32(len(n.Files)))
	fatb = append(fatb, fatbContents...)

	fimg := make([]byte, 0, 8+coff)
	fimg = append(fimg, "GMIF"...)
	fimg = appendLE32(fimg, uint32(coff+8))
	for _, file := range n.Files {
		fimg = append(fimg, file...)
		if pad := (-len(file)) & 3; pad > 0 {
			fimg = append(fimg, make([]byte, pad)...)
		}
	}

	fntbBody, err := rom.ConstructFNTBForcedIDs(n.FilenameIDMap)
	if err != nil {
		// FilenameIDMap is expected to already satisfy the consecutive-
		// per-directory-ID invariant by construction; a violation here
		// means the Narc was assembled with an inconsistent map.
		panic(xerrors.Errorf("narc: ToBytes: %w", err))
	}

	fntb := make([]byte, 0, 8+len(fntbBody))
	fntb = append(fntb, "BTNF"...)
	fntb = appendLE32(fntb, uint32(8+len(fntbBody)))
	fntb = append(fntb, fntbBody...)

	postHeader := make([]byte, 0, len(fatb)+len(fntb)+len(fimg))
	postHeader = append(postHeader, fatb...)
	postHeader = append(postHeader, fntb...)
	postHeader = append(postHeader, fimg...)

	header := make([]byte, 0, 16)
	header = appendLE32(header, headerMagic)
	header = appendLE16(header, headerLEBom)
	header = appendLE16(header, headerVersionMarker)
	header = appendLE32(header, uint32(0x10+len(postHeader)))
	header = appendLE16(header, 0x10)
	header = appendLE16(header, 3)

	return append(header, postHeader...)
}

func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func appendLE32(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func appendLE16(b []byte, v uint16) []byte {
	return append(b, byte(v), byte(v>>8))
}
