// Package lz10 implements the Nintendo LZ10 sliding-window codec used to
// store compressed ROM overlays and files. The format is a variant of
// classic LZ77: a 4-byte header (magic 0x10 + 24-bit little-endian
// decompressed length) followed by a stream of 8-command flag bytes, each
// bit selecting a literal byte or a (length, distance) back-reference.
package lz10

import "golang.org/x/xerrors"

// ErrHeader is returned when the input is too short to hold an LZ10 header
// or its magic byte is not 0x10.
var ErrHeader = xerrors.New("lz10: invalid header")

// ErrTruncated is returned when the compressed stream ends before the
// decompressed length declared in the header is reached.
var ErrTruncated = xerrors.New("lz10: truncated stream")

// ErrBadReference is returned when a back-reference points before the
// start of the output buffer.
var ErrBadReference = xerrors.New("lz10: back-reference out of range")

const (
	maxMatchLen = 18
	minMatchLen = 3
	window      = 0x1000
)

// Decompress reverses Compress, reconstructing the original byte stream
// from its LZ10-encoded form.
func Decompress(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, xerrors.Errorf("lz10: decompress: %w", ErrHeader)
	}
	if data[0] != 0x10 {
		return nil, xerrors.Errorf("lz10: decompress: first byte %#x: %w", data[0], ErrHeader)
	}

	size := int(data[1]) | int(data[2])<<8 | int(data[3])<<16
	ret := make([]byte, size)

	srcPos := 4
	destPos := 0

	for {
		if srcPos >= len(data) {
			return nil, xerrors.Errorf("lz10: decompress: reading flag byte: %w", ErrTruncated)
		}
		flags := data[srcPos]
		srcPos++

		for i := 0; i < 8; i++ {
			if flags&0x80 != 0 {
				if srcPos+1 >= len(data) {
					return nil, xerrors.Errorf("lz10: decompress: reading reference: %w", ErrTruncated)
				}
				blockSize := int(data[srcPos]>>4) + 3
				blockDistance := ((int(data[srcPos]&0xF) << 8) | int(data[srcPos+1])) + 1
				srcPos += 2

				blockPos := destPos - blockDistance
				if blockPos < 0 {
					return nil, xerrors.Errorf("lz10: decompress: distance %d at dest %d: %w", blockDistance, destPos, ErrBadReference)
				}

				for j := 0; j < blockSize; j++ {
					ret[destPos] = ret[blockPos+j]
					destPos++
				}
			} else {
				if srcPos >= len(data) || destPos >= len(ret) {
					return nil, xerrors.Errorf("lz10: decompress: reading literal: %w", ErrTruncated)
				}
				ret[destPos] = data[srcPos]
				srcPos++
				destPos++
			}

			if destPos == len(ret) {
				return ret, nil
			}
			flags <<= 1
		}
	}
}

// Compress encodes data as an LZ10 stream. minDistance is the smallest
// back-reference distance the encoder will emit (some decoders choke on
// distance-1 references); forwardIteration selects whether the match
// search scans candidate distances from the farthest or the nearest; pad
// pads the output to a multiple of 4 bytes with zero bytes.
func Compress(data []byte, minDistance int, forwardIteration bool, pad bool) []byte {
	if len(data) == 0 {
		return nil
	}

	worstCase := (7 + len(data) + (len(data)+7)/8) &^ 3
	ret := make([]byte, worstCase)

	ret[0] = 0x10
	ret[1] = byte(len(data))
	ret[2] = byte(len(data) >> 8)
	ret[3] = byte(len(data) >> 16)

	srcPos := 0
	destPos := 4

	findBestBlock := findBestBlockReverse
	if forwardIteration {
		findBestBlock = findBestBlockForward
	}

	for {
		flagsPos := destPos
		destPos++
		ret[flagsPos] = 0

		for i := 0; i < 8; i++ {
			bestDistance, bestSize := findBestBlock(data, srcPos, minDistance)

			if bestSize >= minMatchLen {
				ret[flagsPos] |= 0x80 >> uint(i)
				srcPos += bestSize
				bestSize -= 3
				bestDistance--
				ret[destPos] = byte((bestSize<<4 | bestDistance>>8) & 0xFF)
				ret[destPos+1] = byte(bestDistance & 0xFF)
				destPos += 2
			} else {
				ret[destPos] = data[srcPos]
				destPos++
				srcPos++
			}

			if srcPos == len(data) {
				if pad {
					if rem := destPos & 3; rem != 0 {
						for j := 0; j < 4-rem; j++ {
							ret[destPos] = 0
							destPos++
						}
					}
				}
				return ret[:destPos]
			}
		}
	}
}

// findBestBlockForward scans candidate match starts from the oldest (start
// of the window) to the newest, preferring the first match of the best
// length seen — i.e. the farthest-back match wins ties.
func findBestBlockForward(src []byte, srcPos, minDistance int) (distance, size int) {
	blockStart := srcPos - window
	if blockStart < 0 {
		blockStart = 0
	}

	for blockStart != srcPos {
		blockSize := matchLen(src, blockStart, srcPos)

		if blockSize > size && srcPos-blockStart >= minDistance {
			distance = srcPos - blockStart
			size = blockSize

			if blockSize == maxMatchLen {
				break
			}
		}
		blockStart++
	}
	return distance, size
}

// findBestBlockReverse scans candidate distances from minDistance upward
// (nearest match first), preferring the nearest match of the best length.
func findBestBlockReverse(src []byte, srcPos, minDistance int) (distance, size int) {
	blockDistance := minDistance

	for blockDistance <= srcPos && blockDistance <= window {
		blockStart := srcPos - blockDistance
		blockSize := matchLen(src, blockStart, srcPos)

		if blockSize > size {
			distance = blockDistance
			size = blockSize

			if blockSize == maxMatchLen {
				break
			}
		}
		blockDistance++
	}
	return distance, size
}

// matchLen returns how many bytes starting at blockStart match the bytes
// starting at srcPos, capped at maxMatchLen and at the end of src.
func matchLen(src []byte, blockStart, srcPos int) int {
	n := 0
	for n < maxMatchLen && srcPos+n < len(src) && src[blockStart+n] == src[srcPos+n] {
		n++
	}
	return n
}
