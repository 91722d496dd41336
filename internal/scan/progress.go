package scan

import (
	"sync/atomic"
)

// batchUpdateSize is how many files or dirs a walker counts locally before
// publishing to the shared counters.
const batchUpdateSize = 100

// Progress holds counters shared by concurrent walks. The zero value is ready
// to use; a nil *Progress disables tracking.
type Progress struct {
	files   atomic.Int64
	dirs    atomic.Int64
	bytes   atomic.Int64
	folders atomic.Int64 // Vehicle folders finished.
	current atomic.Pointer[string]
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Files, Dirs, Bytes, Folders int64
	Current                     string
}

// Snapshot reads the counters.
func (p *Progress) Snapshot() Snapshot {
	if p == nil {
		return Snapshot{}
	}
	s := Snapshot{
		Files:   p.files.Load(),
		Dirs:    p.dirs.Load(),
		Bytes:   p.bytes.Load(),
		Folders: p.folders.Load(),
	}
	if cur := p.current.Load(); cur != nil {
		s.Current = *cur
	}
	return s
}

// Reset zeroes the counters between runs.
func (p *Progress) Reset() {
	if p == nil {
		return
	}
	p.files.Store(0)
	p.dirs.Store(0)
	p.bytes.Store(0)
	p.folders.Store(0)
	p.current.Store(nil)
}

func (p *Progress) folderDone(path string) {
	if p == nil {
		return
	}
	p.folders.Add(1)
	p.current.Store(&path)
}

// batch accumulates counts for one walk and publishes them every
// batchUpdateSize items to keep atomic traffic down.
type batch struct {
	p                   *Progress
	files, dirs, nbytes int64
}

func (b *batch) file(size int64) {
	b.files++
	b.nbytes += size
	if b.files%batchUpdateSize == 0 {
		b.flush()
	}
}

func (b *batch) dir() {
	b.dirs++
	if b.dirs%batchUpdateSize == 0 {
		b.flush()
	}
}

func (b *batch) flush() {
	if b.p != nil {
		b.p.files.Add(b.files)
		b.p.dirs.Add(b.dirs)
		b.p.bytes.Add(b.nbytes)
	}
	b.files, b.dirs, b.nbytes = 0, 0, 0
}
