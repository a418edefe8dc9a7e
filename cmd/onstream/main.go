package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kneesnap/onstream-tape/auxstream"
	"github.com/kneesnap/onstream-tape/blockmap"
	"github.com/kneesnap/onstream-tape/blockmap/gapfinder"
	"github.com/kneesnap/onstream-tape/cartridge"
	"github.com/kneesnap/onstream-tape/cmd/onstream/statx"
	"github.com/kneesnap/onstream-tape/extract"
	"github.com/kneesnap/onstream-tape/internal/zipsink"
)

const usage = `onstream - OnStream ADR tape recovery tool

Usage:
  onstream extract <adr30|adr50> <out.zip> <dump...>   Recover files from one or more tape dump captures
  onstream gaps <adr30|adr50> <dump...>                Report physical regions missing from the captures
  onstream strip <dump> <out>                          Write a single dump's payload bytes with aux trailers stripped
  onstream statx <dump...>                             Report how much of each dump file is actually allocated on disk
  onstream help                                        Show this help message
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "extract":
		err = runExtract(os.Args[2:])
	case "gaps":
		err = runGaps(os.Args[2:])
	case "strip":
		err = runStrip(os.Args[2:])
	case "statx":
		err = runStatx(os.Args[2:])
	case "help":
		fmt.Println(usage)
		return
	default:
		fmt.Printf("Error: Unknown command '%s'\n", os.Args[1])
		fmt.Println(usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func parseKind(s string) (cartridge.Kind, error) {
	switch s {
	case "adr30":
		return cartridge.Adr30, nil
	case "adr50":
		return cartridge.Adr50, nil
	default:
		return 0, fmt.Errorf("unknown cartridge kind %q (want adr30 or adr50)", s)
	}
}

func openDumps(paths []string) ([]extract.DumpFile, func(), error) {
	files := make([]*os.File, 0, len(paths))
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	dumps := make([]extract.DumpFile, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to open dump %q: %w", p, err)
		}
		files = append(files, f)
		dumps = append(dumps, extract.DumpFile{Name: p, Reader: f})
	}
	return dumps, closeAll, nil
}

func runExtract(args []string) error {
	if len(args) < 3 {
		fmt.Println(usage)
		return fmt.Errorf("extract requires a cartridge kind, an output path, and at least one dump file")
	}
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	outPath := args[1]
	dumps, closeDumps, err := openDumps(args[2:])
	if err != nil {
		return err
	}
	defer closeDumps()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output archive %q: %w", outPath, err)
	}
	defer out.Close()

	sink := zipsink.New(out)
	report, err := extract.Run(context.Background(), dumps, kind, sink, nil)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	fmt.Printf("blocks captured: %d\n", report.BlocksCaptured)
	fmt.Printf("gaps found:      %d\n", len(report.Gaps))
	fmt.Printf("chunks parsed:   %d\n", report.ChunksParsed)
	fmt.Printf("files written:   %d\n", report.FilesWritten)
	fmt.Printf("snapshots:       %d\n", report.SnapshotsWritten)
	fmt.Printf("resync events:   %d\n", report.ResyncEvents)
	return nil
}

func runGaps(args []string) error {
	if len(args) < 2 {
		fmt.Println(usage)
		return fmt.Errorf("gaps requires a cartridge kind and at least one dump file")
	}
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	dumps, closeDumps, err := openDumps(args[1:])
	if err != nil {
		return err
	}
	defer closeDumps()

	m := blockmap.NewMap()
	for _, d := range dumps {
		if err := m.AddFile(d.Reader, 0); err != nil {
			return fmt.Errorf("failed to read dump %q: %w", d.Name, err)
		}
	}

	gaps, err := gapfinder.Find(kind, m)
	if err != nil {
		return err
	}
	for _, g := range gaps {
		fmt.Printf("track=%d x=%d .. track=%d x=%d (%d blocks)\n", g.Start.Track, g.Start.X, g.End.Track, g.End.X, g.BlockCount)
	}
	fmt.Printf("%d gap(s)\n", len(gaps))
	return nil
}

func runStrip(args []string) error {
	if len(args) != 2 {
		fmt.Println(usage)
		return fmt.Errorf("strip requires exactly a dump file and an output path")
	}
	dumpPath, outPath := args[0], args[1]

	f, err := os.Open(dumpPath)
	if err != nil {
		return fmt.Errorf("failed to open dump %q: %w", dumpPath, err)
	}
	defer f.Close()

	r, err := auxstream.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to read dump %q: %w", dumpPath, err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", outPath, err)
	}
	defer out.Close()

	n, err := io.Copy(out, r)
	if err != nil {
		return fmt.Errorf("failed to strip dump %q: %w", dumpPath, err)
	}
	fmt.Printf("wrote %d bytes\n", n)
	return nil
}

func runStatx(args []string) error {
	if len(args) == 0 {
		fmt.Println(usage)
		return fmt.Errorf("statx requires at least one dump file")
	}
	for _, p := range args {
		info, err := statx.Stat(p)
		if err != nil {
			return fmt.Errorf("failed to stat %q: %w", p, err)
		}
		sparse := ""
		if info.Sparse() {
			sparse = " (sparse)"
		}
		fmt.Printf("%s: apparent=%d allocated=%d%s\n", p, info.ApparentSize, info.AllocatedBytes, sparse)
	}
	return nil
}
