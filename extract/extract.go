// Package extract is the extraction driver: it composes blockmap,
// gapfinder and retrospect into a single pass from raw tape dump files
// to a finished archive.
package extract

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kneesnap/onstream-tape/blockmap"
	"github.com/kneesnap/onstream-tape/blockmap/gapfinder"
	"github.com/kneesnap/onstream-tape/cartridge"
	"github.com/kneesnap/onstream-tape/internal/logx"
	"github.com/kneesnap/onstream-tape/retrospect"
)

// ArchiveSink is the collaborator contract an extraction target must
// satisfy: a stream of named entries, each with a modification time and
// a body, followed by a single archive-level close.
type ArchiveSink interface {
	CreateEntry(path string) error
	SetLastWriteTime(t time.Time) error
	Write(p []byte) (int, error)
	Close() error
	CloseArchive() error
}

// DumpFile is one raw capture file contributing frames to a Map. Files
// are read in the order given; when two contribute the same physical
// block, the earlier file's copy is kept.
type DumpFile struct {
	Name   string
	Reader io.Reader
}

// Report summarizes one Run.
type Report struct {
	BlocksCaptured   int
	Gaps             []gapfinder.Gap
	ChunksParsed     int
	FilesWritten     int
	SnapshotsWritten int
	ResyncEvents     int
}

// sinkAdapter narrows an ArchiveSink down to retrospect.Sink (it must
// not expose CloseArchive to the parser, which only ever finishes one
// entry at a time).
type sinkAdapter struct{ ArchiveSink }

// Run reads every dump file, builds the block map, reports physical
// gaps, and drives the chunk parser end to end, writing live files to
// sink and Snapshot-chunk records to snapshotSink (which may equal
// sink). It closes both sinks' archives before returning.
func Run(ctx context.Context, dumps []DumpFile, kind cartridge.Kind, sink, snapshotSink ArchiveSink, opts ...Option) (*Report, error) {
	if len(dumps) == 0 {
		return nil, ErrInvalidArgument
	}
	if sink == nil {
		return nil, ErrInvalidArgument
	}

	closing := false
	defer func() {
		if closing {
			return
		}
		sink.CloseArchive()
		if snapshotSink != nil && snapshotSink != sink {
			snapshotSink.CloseArchive()
		}
	}()

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("extract: applying option: %w", err)
		}
	}

	m := blockmap.NewMap()
	for _, d := range dumps {
		if err := m.AddFile(d.Reader, 0); err != nil {
			return nil, fmt.Errorf("extract: reading dump %q: %w", d.Name, err)
		}
	}

	report := &Report{BlocksCaptured: m.Len()}

	gaps, err := gapfinder.Find(kind, m)
	if err != nil {
		return nil, fmt.Errorf("extract: finding gaps: %w", err)
	}
	report.Gaps = gaps
	for _, g := range gaps {
		logx.Printf("gap: track=%d x=%d .. track=%d x=%d (%d blocks)", g.Start.Track, g.Start.X, g.End.Track, g.End.X, g.BlockCount)
		if cfg.onGap != nil {
			cfg.onGap(g)
		}
	}

	stream := blockmap.NewInterwovenStream(kind, m)

	scanner := retrospect.NewScanner(stream, stream.Len())
	// The first logical block is the cartridge's own header/label
	// area, not chunk-stream data; the chunk parser starts immediately
	// after it.
	scanner.Seek(blockmap.DataSectionSize)
	assembler := retrospect.NewAssemblyContext(sinkAdapter{sink}, sinkAdapter{snapshotSinkOrDefault(snapshotSink, sink)})

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		pos := scanner.Pos()
		c, start, err := scanner.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return report, fmt.Errorf("extract: scanning chunk stream: %w", err)
		}
		if start != pos {
			logx.Recovered("skipped %d bytes of unparseable data before offset %d", start-pos, start)
			report.ResyncEvents++
		}

		if missing, n := stream.WasMissingDataSkipped(start); missing {
			logx.Recovered("chunk at offset %d overlaps %d substituted missing block(s)", start, n)
		}

		report.ChunksParsed++
		if c.Kind == retrospect.KindFile {
			report.FilesWritten++
		}
		if c.Kind == retrospect.KindSnapshot {
			report.SnapshotsWritten++
		}

		if err := assembler.Feed(c); err != nil {
			return report, fmt.Errorf("extract: assembling chunk at offset %d: %w", start, err)
		}
	}

	if err := assembler.Close(); err != nil {
		return report, fmt.Errorf("extract: force-closing dangling buffers: %w", err)
	}

	closing = true
	if err := sink.CloseArchive(); err != nil {
		return report, fmt.Errorf("extract: closing archive: %w", err)
	}
	if snapshotSink != nil && snapshotSink != sink {
		if err := snapshotSink.CloseArchive(); err != nil {
			return report, fmt.Errorf("extract: closing snapshot archive: %w", err)
		}
	}

	return report, nil
}

func snapshotSinkOrDefault(snapshotSink, sink ArchiveSink) ArchiveSink {
	if snapshotSink != nil {
		return snapshotSink
	}
	return sink
}
