package narc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToBytesFromBytesRoundTrip(t *testing.T) {
	n := &Narc{
		Files: [][]byte{
			[]byte("hello"),
			[]byte("world!!"),
			[]byte("x"),
		},
		FilenameIDMap: map[string]int{
			"/a/one.bin": 0,
			"/a/two.bin": 1,
			"/three.bin": 2,
		},
	}

	data := n.ToBytes()

	got, err := FromBytes(data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}

	if diff := cmp.Diff(n.Files, got.Files); diff != "" {
		t.Fatalf("Files mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(n.FilenameIDMap, got.FilenameIDMap); diff != "" {
		t.Fatalf("FilenameIDMap mismatch (-want +got):\n%s", diff)
	}
}

func TestFromBytesRejectsBadMagic(t *testing.T) {
	n := &Narc{Files: [][]byte{[]byte("a")}, FilenameIDMap: map[string]int{"/a": 0}}
	data := n.ToBytes()
	data[0] ^= 0xFF

	if _, err := FromBytes(data); err == nil {
		t.Fatalf("expected error for corrupted magic")
	}
}

func TestFromBytesRejectsSizeMismatch(t *testing.T) {
	n := &Narc{Files: [][]byte{[]byte("a")}, FilenameIDMap: map[string]int{"/a": 0}}
	data := n.ToBytes()
	truncated := data[:len(data)-1]

	if _, err := FromBytes(truncated); err == nil {
		t.Fatalf("expected error for size mismatch")
	}
}

func TestToBytesFilePayloadIsWordPadded(t *testing.T) {
	n := &Narc{
		Files:         [][]byte{[]byte("abc")}, // 3 bytes, needs 1 byte of padding
		FilenameIDMap: map[string]int{"/abc": 0},
	}
	data := n.ToBytes()

	got, err := FromBytes(data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if string(got.Files[0]) != "abc" {
		t.Fatalf("Files[0] = %q, want %q", got.Files[0], "abc")
	}

	// GMIF is the last section: its 8-byte section header, "abc", and one
	// zero pad byte, 12 bytes in all.
	fimg := data[len(data)-12:]
	if string(fimg[:4]) != "GMIF" || le32(fimg[4:8]) != 12 || string(fimg[8:11]) != "abc" || fimg[11] != 0 {
		t.Fatalf("GMIF section = % x, want 12 bytes holding \"abc\" plus one zero pad byte", fimg)
	}
}

func TestPanicsOnNonConsecutiveForcedIDs(t *testing.T) {
	n := &Narc{
		Files: [][]byte{[]byte("a"), []byte("b")},
		FilenameIDMap: map[string]int{
			"/a/one.bin": 0,
			"/a/two.bin": 5, // nonconsecutive within the same directory
		},
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected ToBytes to panic on an inconsistent filename id map")
		}
	}()
	n.ToBytes()
}
