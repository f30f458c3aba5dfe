// Command apnds is a thin CLI around the rom/narc packages: it can
// list the files inside a ROM or NARC, repack a directory into a NARC,
// or round-trip a ROM through decompose/reassemble.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ljtpetersen/apnds/narc"
	"github.com/ljtpetersen/apnds/rom"
)

var (
	mode   string
	input  string
	output string
	help   bool
)

func main() {
	flag.StringVar(&mode, "mode", "", "operation to perform: list, repack, roundtrip")
	flag.StringVar(&input, "i", "", "input path (ROM/NARC file for list/roundtrip, directory for repack)")
	flag.StringVar(&output, "o", "", "output path (NARC/ROM file for repack/roundtrip)")
	flag.BoolVar(&help, "h", false, "show usage")
	flag.Parse()

	if help || mode == "" || input == "" {
		flag.Usage()
		return
	}

	switch mode {
	case "list":
		if err := runList(input); err != nil {
			log.Fatalf("list: %v", err)
		}
	case "repack":
		if output == "" {
			log.Fatalf("repack: -o is required")
		}
		if err := runRepack(input, output); err != nil {
			log.Fatalf("repack: %v", err)
		}
	case "roundtrip":
		if output == "" {
			log.Fatalf("roundtrip: -o is required")
		}
		if err := runRoundtrip(input, output); err != nil {
			log.Fatalf("roundtrip: %v", err)
		}
	default:
		log.Fatalf("unknown mode %q", mode)
	}
}

func runList(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if n, err := narc.FromBytes(data); err == nil {
		paths := make([]string, 0, len(n.FilenameIDMap))
		for p := range n.FilenameIDMap {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			id := n.FilenameIDMap[p]
			fmt.Printf("%6d  %s\n", len(n.Files[id]), p)
		}
		return nil
	}

	r, err := rom.FromBytes(data)
	if err != nil {
		return fmt.Errorf("%s is neither a valid NARC nor a valid ROM: %w", path, err)
	}
	for _, p := range r.FileOrder {
		fmt.Printf("%6d  %s\n", len(r.Files[p]), p)
	}
	return nil
}

func runRepack(dir, out string) error {
	files := map[string][]byte{}
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		contents, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files["/"+filepath.ToSlash(rel)] = contents
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", dir, err)
	}

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		return strings.ToLower(paths[i]) < strings.ToLower(paths[j])
	})

	fileSeq := make([][]byte, len(paths))
	filenameIDMap := make(map[string]int, len(paths))
	for i, p := range paths {
		fileSeq[i] = files[p]
		filenameIDMap[p] = i
	}

	n := &narc.Narc{Files: fileSeq, FilenameIDMap: filenameIDMap}

	log.Printf("packing %d files from %s into %s", len(paths), dir, out)
	return os.WriteFile(out, n.ToBytes(), 0o644)
}

func runRoundtrip(in, out string) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}

	r, err := rom.FromBytes(data)
	if err != nil {
		return fmt.Errorf("decomposing %s: %w", in, err)
	}

	log.Printf("reassembling %s (%d files) to %s", in, len(r.Files), out)

	reassembled, err := r.ToBytes(rom.DefaultWriteOptions())
	if err != nil {
		return fmt.Errorf("reassembling: %w", err)
	}

	return os.WriteFile(out, reassembled, 0o644)
}
