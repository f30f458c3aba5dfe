package rom

import (
	"reflect"
	"sort"
	"testing"
)

func TestConstructFNTBRoundTripsThroughWalkFNT(t *testing.T) {
	paths := []string{"/a/f.bin", "/a/b/g.bin", "/readme.txt"}
	fntb, filenameIDMap, err := ConstructFNTB(paths, 0)
	if err != nil {
		t.Fatalf("ConstructFNTB: %v", err)
	}

	got := WalkFNT(fntb)
	if !reflect.DeepEqual(got, filenameIDMap) {
		t.Fatalf("WalkFNT(ConstructFNTB(...)) = %v, want %v", got, filenameIDMap)
	}
}

func TestConstructFNTBFileIDOrderingConcreteScenario(t *testing.T) {
	// Overlay occupies file ID 0; /a/f.bin and /a/b/g.bin follow. The
	// case-insensitive null-prefixed sort key places a directory's own
	// files before its subdirectories' files, so /a/f.bin (a file
	// directly in "a") gets ID 1 and /a/b/g.bin gets ID 2.
	paths := []string{"/a/f.bin", "/a/b/g.bin"}
	_, filenameIDMap, err := ConstructFNTB(paths, 1)
	if err != nil {
		t.Fatalf("ConstructFNTB: %v", err)
	}

	if filenameIDMap["/a/f.bin"] != 1 {
		t.Fatalf("/a/f.bin id = %d, want 1", filenameIDMap["/a/f.bin"])
	}
	if filenameIDMap["/a/b/g.bin"] != 2 {
		t.Fatalf("/a/b/g.bin id = %d, want 2", filenameIDMap["/a/b/g.bin"])
	}
}

func TestConstructFNTBForcedIDsRoundTripsThroughWalkFNT(t *testing.T) {
	filenameIDMap := map[string]int{
		"/a/f.bin":   0,
		"/a/b/g.bin": 1,
		"/readme":    2,
	}
	fntb, err := ConstructFNTBForcedIDs(filenameIDMap)
	if err != nil {
		t.Fatalf("ConstructFNTBForcedIDs: %v", err)
	}

	got := WalkFNT(fntb)
	if !reflect.DeepEqual(got, filenameIDMap) {
		t.Fatalf("WalkFNT(ConstructFNTBForcedIDs(...)) = %v, want %v", got, filenameIDMap)
	}
}

func TestConstructFNTBForcedIDsRejectsNonConsecutive(t *testing.T) {
	filenameIDMap := map[string]int{
		"/a/f.bin": 0,
		"/a/g.bin": 5, // not consecutive with 0 within the same directory
	}
	if _, err := ConstructFNTBForcedIDs(filenameIDMap); err == nil {
		t.Fatalf("expected ErrNonConsecutiveFileIDs, got nil")
	}
}

func TestBothFNTModesShareDirectoryTopology(t *testing.T) {
	paths := []string{"/a/f.bin", "/a/b/g.bin", "/readme.txt"}

	fntbPathSet, filenameIDMap, err := ConstructFNTB(paths, 0)
	if err != nil {
		t.Fatalf("ConstructFNTB: %v", err)
	}
	fntbForced, err := ConstructFNTBForcedIDs(filenameIDMap)
	if err != nil {
		t.Fatalf("ConstructFNTBForcedIDs: %v", err)
	}

	a := WalkFNT(fntbPathSet)
	b := WalkFNT(fntbForced)

	keysA := keysOfMap(a)
	keysB := keysOfMap(b)
	sort.Strings(keysA)
	sort.Strings(keysB)
	if !reflect.DeepEqual(keysA, keysB) {
		t.Fatalf("directory topology differs between modes: %v vs %v", keysA, keysB)
	}
}

func keysOfMap(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestPathKeyRoundTrip(t *testing.T) {
	path := "/a/b/c.bin"
	pk := pathKey(path)
	if got := pathKeyToPath(pk); got != path {
		t.Fatalf("pathKeyToPath(pathKey(%q)) = %q", path, got)
	}
}
