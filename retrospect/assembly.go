package retrospect

import (
	"bytes"
	"path"
	"time"

	"github.com/kneesnap/onstream-tape/internal/logx"
)

// Sink receives finalized file content. It is a narrower view of
// extract.ArchiveSink: just enough for the assembler to hand off a
// completed path, size and timestamp without importing the driver
// package back into the parser.
type Sink interface {
	CreateEntry(path string) error
	SetLastWriteTime(t time.Time) error
	Write(p []byte) (int, error)
	Close() error
}

type directoryEntry struct {
	name     string
	parentID uint32
}

type pendingFile struct {
	id       uint32
	isSnap   bool
	path     string
	lastMod  time.Time
	backup   time.Time
	fileSize uint32
	buf      bytes.Buffer
}

// AssemblyContext reassembles the flat chunk stream into whole files,
// applying the six stitching rules: a File or Snapshot chunk starts a
// new buffer, a Fork or Continue chunk appends to one, a Tail chunk (or
// force-close at end of stream) finalizes it, and a Directory chunk
// records a path segment for later Path lookups.
type AssemblyContext struct {
	dirs   map[uint32]directoryEntry
	active map[uint32]*pendingFile
	order  []uint32 // insertion order, for deterministic force-close

	lastDefinition *pendingFile

	files    Sink
	snapshot Sink
}

// NewAssemblyContext returns an empty context writing live files to
// files and Snapshot-chunk metadata files to snapshot. snapshot may be
// the same Sink as files; a nil snapshot sends Snapshot chunks to files.
func NewAssemblyContext(files, snapshot Sink) *AssemblyContext {
	return &AssemblyContext{
		dirs:   make(map[uint32]directoryEntry),
		active: make(map[uint32]*pendingFile),
		files:  files,
		snapshot: func() Sink {
			if snapshot != nil {
				return snapshot
			}
			return files
		}(),
	}
}

// Feed applies one scanned chunk to the context.
func (a *AssemblyContext) Feed(c Chunk) error {
	switch c.Kind {
	case KindDirectory:
		a.dirs[c.FolderID] = directoryEntry{name: c.Name, parentID: c.ParentID}
		a.lastDefinition = nil
		return a.emitDirectory(c)

	case KindFile:
		pf := &pendingFile{
			id:       c.ResourceID,
			path:     a.resolvePath(c.FolderID, c.Name),
			lastMod:  c.LastModified,
			backup:   c.BackupTime,
			fileSize: c.FileSize,
		}
		a.active[pf.id] = pf
		a.order = append(a.order, pf.id)
		a.lastDefinition = pf
		return nil

	case KindSnapshot:
		pf := &pendingFile{
			id:       c.RememberID,
			isSnap:   true,
			path:     path.Join(c.ParentFolderName, c.Name),
			backup:   c.BackupTime,
			fileSize: c.FileSize,
		}
		a.active[pf.id] = pf
		a.order = append(a.order, pf.id)
		a.lastDefinition = pf
		return nil

	case KindFork:
		pf, ok := a.active[c.ResourceID]
		if !ok {
			logx.Recovered("%v: resource id %d", ErrUnknownResource, c.ResourceID)
			return nil
		}
		pf.buf.Write(c.Data)
		a.lastDefinition = pf
		return nil

	case KindContinue:
		if a.lastDefinition == nil {
			logx.Recovered("%v", ErrSyncLost)
			return nil
		}
		a.lastDefinition.buf.Write(c.Data)
		return nil

	case KindTail:
		pf, ok := a.active[c.ResourceID]
		if !ok {
			logx.Recovered("%v: resource id %d", ErrUnknownResource, c.ResourceID)
			return nil
		}
		delete(a.active, c.ResourceID)
		if a.lastDefinition == pf {
			a.lastDefinition = nil
		}
		return a.finalize(pf)

	default:
		return nil
	}
}

// Close force-closes every still-open buffer, in the order their
// defining File/Snapshot chunk was seen, as the tape ran out before a
// matching Tail chunk arrived.
func (a *AssemblyContext) Close() error {
	for _, id := range a.order {
		pf, ok := a.active[id]
		if !ok {
			continue
		}
		delete(a.active, id)
		logx.Recovered("force-closing %q: %d bytes, no tail chunk before end of stream", pf.path, pf.buf.Len())
		if err := a.finalize(pf); err != nil {
			return err
		}
	}
	return nil
}

func (a *AssemblyContext) finalize(pf *pendingFile) error {
	sink := a.files
	if pf.isSnap {
		sink = a.snapshot
	}
	if sink == nil {
		return nil
	}

	if int(pf.fileSize) != pf.buf.Len() {
		logx.Recovered("%q: declared size %d, assembled %d", pf.path, pf.fileSize, pf.buf.Len())
	}

	if err := sink.CreateEntry(pf.path); err != nil {
		return err
	}
	if err := sink.SetLastWriteTime(mtimeFor(pf)); err != nil {
		return err
	}
	if _, err := sink.Write(pf.buf.Bytes()); err != nil {
		return err
	}
	return sink.Close()
}

var defaultMtime = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

func mtimeFor(pf *pendingFile) time.Time {
	if pf.lastMod.Year() >= 1980 {
		return pf.lastMod
	}
	if pf.backup.Year() >= 1980 {
		return pf.backup
	}
	return defaultMtime
}

func (a *AssemblyContext) emitDirectory(c Chunk) error {
	if a.files == nil {
		return nil
	}
	p := a.resolvePath(c.ParentID, c.Name)
	if err := a.files.CreateEntry(p + "/"); err != nil {
		return err
	}
	mt := c.LastModified
	if mt.Year() < 1980 {
		if c.BackupTime.Year() >= 1980 {
			mt = c.BackupTime
		} else {
			mt = defaultMtime
		}
	}
	if err := a.files.SetLastWriteTime(mt); err != nil {
		return err
	}
	return a.files.Close()
}

// resolvePath ascends the parent-folder chain recorded by Directory
// chunks until it reaches a root folder id (<= 1, per the Retrospect
// convention that ids 0 and 1 denote the backup set's synthetic root),
// joining the segments into a forward-slash path.
func (a *AssemblyContext) resolvePath(folderID uint32, name string) string {
	var parts []string
	cur := folderID
	for depth := 0; depth < 1<<16 && cur > 1; depth++ {
		d, ok := a.dirs[cur]
		if !ok {
			logx.Recovered("unresolved parent folder id %d while building path for %q", cur, name)
			break
		}
		parts = append(parts, d.name)
		if d.parentID == cur {
			break
		}
		cur = d.parentID
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	parts = append(parts, name)
	return path.Join(parts...)
}
