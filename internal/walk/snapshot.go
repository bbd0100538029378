// Package walk implements a bounded-concurrency recursive directory walk
// that emits one tabular record per entry plus a per-directory aggregate,
// optionally through a streaming compressor.
package walk

import "os"

// Snapshot is a capture of a directory entry's lstat attributes, immutable
// once returned by lstatSnapshot. It deliberately mirrors the fields a raw
// struct stat exposes rather than Go's os.FileMode abstraction, because the
// output format (see Header) reproduces the raw inode metadata verbatim.
type Snapshot struct {
	Inode  uint64
	Dev    uint64
	Nlink  uint64
	Mode   uint32 // raw st_mode, including the file-type bits
	Uid    uint32
	Gid    uint32
	Size   int64
	Blocks int64
	Atime  int64
	Mtime  int64
	Ctime  int64
}

// lstatSnapshot lstats path without following a terminal symlink and
// returns both the os.FileInfo (used for the type check that drives
// fan-out/aggregation) and the raw Snapshot derived from it.
func lstatSnapshot(path string) (os.FileInfo, Snapshot, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return nil, Snapshot{}, err
	}
	snap, err := snapshotFromFileInfo(fi)
	if err != nil {
		return nil, Snapshot{}, err
	}
	return fi, snap, nil
}
