package rom

import (
	"bytes"
	"testing"
)

func TestOverlayTableRoundTrip(t *testing.T) {
	overlays := []Overlay{
		{ID: 0, RamAddress: 0x02000000, RamSize: 0x100, BSSSize: 0x10, SinitInit: 1, SinitInitEnd: 2, Data: []byte("hello"), Reserved: 0},
		{ID: 1, RamAddress: 0x02001000, RamSize: 0x200, BSSSize: 0x20, SinitInit: 3, SinitInitEnd: 4, Data: []byte("world!"), Reserved: 0},
	}

	table, dataSeq := ConstructOverlayTable(overlays, 5)
	if len(dataSeq) != 2 {
		t.Fatalf("len(dataSeq) = %d, want 2", len(dataSeq))
	}

	// The table stores file IDs 5 and 6, so the files slice handed to the
	// parser must hold the overlay data at those indices.
	files := append(make([][]byte, 5), dataSeq...)
	got := ParseOverlayTable(table, files)
	if len(got) != len(overlays) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(overlays))
	}
	for i := range overlays {
		if got[i].ID != overlays[i].ID {
			t.Fatalf("overlay[%d].ID = %d, want %d", i, got[i].ID, overlays[i].ID)
		}
		if !bytes.Equal(got[i].Data, overlays[i].Data) {
			t.Fatalf("overlay[%d].Data = %q, want %q", i, got[i].Data, overlays[i].Data)
		}
	}
}

func TestConstructOverlayTableAssignsSequentialFileIDs(t *testing.T) {
	overlays := []Overlay{{Data: []byte("a")}, {Data: []byte("b")}, {Data: []byte("c")}}
	table, _ := ConstructOverlayTable(overlays, 10)

	for i := 0; i < 3; i++ {
		off := i*overlayEntrySize + 24
		fileID := le32(table[off : off+4])
		if int(fileID) != 10+i {
			t.Fatalf("overlay[%d] file id = %d, want %d", i, fileID, 10+i)
		}
	}
}
