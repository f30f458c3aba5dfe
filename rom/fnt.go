package rom

import (
	"sort"
	"strings"

	"golang.org/x/xerrors"
)

// ErrNonASCIIName is returned when a filename cannot be encoded as ASCII,
// which is all the FNT format's name bytes can hold.
var ErrNonASCIIName = xerrors.New("rom: filename is not ASCII")

// ErrNonConsecutiveFileIDs is returned by ConstructFNTBForcedIDs when a
// directory's files do not have consecutive IDs in sorted order — the
// forced-ID FNT layout requires each directory's file IDs to form a
// contiguous run, since the header only records the first ID per
// directory.
var ErrNonConsecutiveFileIDs = xerrors.New("rom: nonconsecutive file ids within a directory")

// pathKey decomposes an absolute path "/a/b/c" into its components
// ("a", "b", "c").
func pathKey(path string) []string {
	parts := strings.Split(path, "/")
	if len(parts) > 0 {
		parts = parts[1:]
	}
	return parts
}

// pathKeyToPath recomposes a path from its components.
func pathKeyToPath(pk []string) string {
	return "/" + strings.Join(pk, "/")
}

// WalkFNT walks a raw FNT block (directory table + name stream) and
// returns the map from absolute file path to file ID.
func WalkFNT(fntb []byte) map[string]int {
	type queued struct {
		dirID int
		path  string
	}

	ret := map[string]int{}
	queue := []queued{{0, ""}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		contentsOff := int(le32(fntb[8*cur.dirID:]))
		fileID := int(le16(fntb[8*cur.dirID+4:]))

		for fntb[contentsOff] != 0 {
			isDir := fntb[contentsOff]&0x80 != 0
			nameLen := int(fntb[contentsOff] & 0x7F)
			contentsOff++
			name := string(fntb[contentsOff : contentsOff+nameLen])
			path := cur.path + "/" + name
			contentsOff += nameLen

			if isDir {
				dirID := int(le16(fntb[contentsOff:])) & 0xFFF
				queue = append(queue, queued{dirID, path})
				contentsOff += 2
			} else {
				ret[path] = fileID
				fileID++
			}
		}
	}

	return ret
}

// dirTreeChild is one directory's direct child: either a file (isDir
// false) or a subdirectory (isDir true, dirID populated).
type dirTreeChild struct {
	name  string
	dirID int
	isDir bool
}

// dirTreeNode is one synthesized FNT directory entry.
type dirTreeNode struct {
	pathKey  []string
	id       int
	parentID int
	children []dirTreeChild
}

// buildDirTree is the scaffold shared by both FNT synthesis modes
// (path-set mode and forced-ID mode): given a set of path keys and a
// sort key function, it lazily creates directory nodes in sorted-path
// order, assigning each a 0xF000-based ID as it is first needed. The
// returned slice is in directory-creation order, matching the order a
// Python dict would iterate its entries after the same construction.
func buildDirTree(pathKeys [][]string, sortKey func([]string) []string) []*dirTreeNode {
	sorted := append([][]string(nil), pathKeys...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return lessStringSlices(sortKey(sorted[i]), sortKey(sorted[j]))
	})

	keyOf := func(pk []string) string { return strings.Join(pk, "\x00") }

	root := &dirTreeNode{pathKey: nil, id: 0xF000}
	byKey := map[string]*dirTreeNode{keyOf(nil): root}
	order := []*dirTreeNode{root}

	curDir := []string{}
	for _, pk := range sorted {
		parentDir := pk[:len(pk)-1]
		i := commonPrefixLen(curDir, parentDir)

		for j := i + 1; j <= len(parentDir); j++ {
			parent := byKey[keyOf(parentDir[:j-1])]
			childName := parentDir[j-1]
			newID := len(byKey) | 0xF000

			parent.children = append(parent.children, dirTreeChild{name: childName, dirID: newID, isDir: true})

			nn := &dirTreeNode{pathKey: append([]string(nil), parentDir[:j]...), id: newID, parentID: parent.id}
			byKey[keyOf(parentDir[:j])] = nn
			order = append(order, nn)
		}

		curDir = parentDir
		parent := byKey[keyOf(parentDir)]
		parent.children = append(parent.children, dirTreeChild{name: pk[len(pk)-1]})
	}

	root.parentID = len(byKey)
	return order
}

func commonPrefixLen(a, b []string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func lessStringSlices(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// ConstructFNTB builds the FNT block (directory table + name stream) for
// a path-set mode file layout: paths are assigned consecutive file IDs
// starting at fileIDOff, in an order that is case-insensitive and puts a
// directory's own files before its subdirectories' files. It returns the
// FNT bytes and the resulting path -> file ID map.
func ConstructFNTB(paths []string, fileIDOff int) ([]byte, map[string]int, error) {
	keys := make([][]string, len(paths))
	for i, p := range paths {
		keys[i] = pathKey(p)
	}

	sortKey := func(pk []string) []string {
		out := make([]string, len(pk))
		for i := 0; i < len(pk)-1; i++ {
			out[i] = strings.ToLower(pk[i])
		}
		if len(pk) > 0 {
			out[len(pk)-1] = "\x00" + strings.ToLower(pk[len(pk)-1])
		}
		return out
	}

	nodes := buildDirTree(keys, sortKey)

	headerLen := len(nodes) * 8
	var header, contents []byte
	filenameIDMap := map[string]int{}
	nextFileID := fileIDOff

	for _, n := range nodes {
		entry := make([]byte, 8)
		putLE32(entry, uint32(len(contents)+headerLen))
		putLE16(entry[4:], uint16(nextFileID))
		putLE16(entry[6:], uint16(n.parentID))
		header = append(header, entry...)

		for _, c := range n.children {
			if !isASCII(c.name) {
				return nil, nil, xerrors.Errorf("rom: ConstructFNTB: name %q: %w", c.name, ErrNonASCIIName)
			}

			nameByte := byte(len(c.name))
			if c.isDir {
				nameByte |= 0x80
			}
			contents = append(contents, nameByte)
			contents = append(contents, []byte(c.name)...)

			if c.isDir {
				b := make([]byte, 2)
				putLE16(b, uint16(c.dirID))
				contents = append(contents, b...)
			} else {
				full := pathKeyToPath(append(append([]string(nil), n.pathKey...), c.name))
				filenameIDMap[full] = nextFileID
				nextFileID++
			}
		}
		contents = append(contents, 0)
	}

	return append(header, contents...), filenameIDMap, nil
}

// ConstructFNTBForcedIDs builds the FNT block for a layout whose file IDs
// are already fixed (the NARC case, where the FAT ordering is decided
// elsewhere). Each directory's files must have consecutive IDs in sorted
// order, since the header only records the first ID per directory; a
// violation reports ErrNonConsecutiveFileIDs.
func ConstructFNTBForcedIDs(filenameIDMap map[string]int) ([]byte, error) {
	paths := make([]string, 0, len(filenameIDMap))
	for p := range filenameIDMap {
		paths = append(paths, p)
	}
	keys := make([][]string, len(paths))
	for i, p := range paths {
		keys[i] = pathKey(p)
	}

	sortKey := func(pk []string) []string {
		out := make([]string, len(pk))
		copy(out, pk[:len(pk)-1])
		if len(pk) > 0 {
			id := filenameIDMap[pathKeyToPath(pk)]
			out[len(pk)-1] = forcedSortSuffix(id)
		}
		return out
	}

	nodes := buildDirTree(keys, sortKey)

	headerLen := len(nodes) * 8
	var header, contents []byte

	for _, n := range nodes {
		baseFileID := 0
		lastFileID := -1
		haveLast := false

		for _, c := range n.children {
			if !c.isDir {
				full := pathKeyToPath(append(append([]string(nil), n.pathKey...), c.name))
				id := filenameIDMap[full]
				if !haveLast {
					baseFileID = id
					lastFileID = id
					haveLast = true
				} else {
					if id != lastFileID+1 {
						return nil, xerrors.Errorf("rom: ConstructFNTBForcedIDs: %s: %w", full, ErrNonConsecutiveFileIDs)
					}
					lastFileID = id
				}
			}
		}

		entry := make([]byte, 8)
		putLE32(entry, uint32(len(contents)+headerLen))
		putLE16(entry[4:], uint16(baseFileID))
		putLE16(entry[6:], uint16(n.parentID))
		header = append(header, entry...)

		for _, c := range n.children {
			if !isASCII(c.name) {
				return nil, xerrors.Errorf("rom: ConstructFNTBForcedIDs: name %q: %w", c.name, ErrNonASCIIName)
			}

			nameByte := byte(len(c.name))
			if c.isDir {
				nameByte |= 0x80
			}
			contents = append(contents, nameByte)
			contents = append(contents, []byte(c.name)...)

			if c.isDir {
				b := make([]byte, 2)
				putLE16(b, uint16(c.dirID))
				contents = append(contents, b...)
			}
		}
		contents = append(contents, 0)
	}

	return append(header, contents...), nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7F {
			return false
		}
	}
	return true
}

// forcedSortSuffix formats id as the NUL-prefixed 4-hex-digit sort
// suffix the forced-ID layout uses to order a directory's files by
// assigned ID rather than by name.
func forcedSortSuffix(id int) string {
	const hex = "0123456789ABCDEF"
	b := make([]byte, 5)
	b[0] = 0
	for i := 4; i >= 1; i-- {
		b[i] = hex[id&0xF]
		id >>= 4
	}
	return string(b)
}
