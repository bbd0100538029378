package walk

import (
	"context"
	"log"
	"os"
)

// MaxPath bounds composed entry paths (reference MAXPATH). A path that
// would exceed it is truncated rather than rejected, matching the
// reference's snprintf-based composition.
const MaxPath = 4096

const snapshotDirName = ".snapshot"

// traversalState is the process-wide context shared by every worker: the
// output sink, the worker pool/slot table, the diagnostic logger and the
// "ignore snapshots" option. Bundling these into one value (rather than
// module-scope globals, as the reference does) removes the re-entrancy
// hazard a second concurrent Walk call would otherwise hit.
type traversalState struct {
	sink            *sink
	pool            *pool
	log             *log.Logger
	ignoreSnapshots bool
}

// joinPath composes dir/name bounded by MaxPath, silently truncating an
// over-long result to match the reference's behavior rather than
// rejecting the entry outright.
func joinPath(dir, name string) string {
	full := dir + "/" + name
	if len(full) > MaxPath-1 {
		full = full[:MaxPath-1]
	}
	return full
}

func readDirNames(dname string) ([]string, error) {
	entries, err := os.ReadDir(dname)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

// emit encodes one record into c, flushing c through the sink first if the
// new line would overflow it. Flush errors are recorded by the sink and
// logged here; they never abort the calling worker.
func (ts *traversalState) emit(c *cell, path string, snap Snapshot, parentInode uint64, depth int, fcount, dirsum int64) {
	line := appendRecord(nil, path, snap, parentInode, depth, fcount, dirsum)
	if c.len()+len(line) > BufferSize {
		if err := ts.sink.flush(c); err != nil {
			ts.log.Printf("flush %s: %v", path, err)
		}
	}
	c.append(line)
}

// run is the per-worker traversal state machine, invoked either as a
// freshly spawned top-of-worker goroutine (topOfWorker=true,
// slot identifies its claimed table entry) or as inline recursion sharing
// its caller's cell (topOfWorker=false, slot unused).
//
// dname is the directory being enumerated; dstat is dname's own lstat
// snapshot (captured by the caller before descending); parentInode and
// depth describe dname itself, not its children.
func (ts *traversalState) run(ctx context.Context, dname string, parentInode uint64, depth int, dstat Snapshot, c *cell, slot int, topOfWorker bool) {
	names, err := readDirNames(dname)
	if err != nil {
		// Directory open failure: no DirectorySummaryRecord for D and no
		// records for D's children. D itself would otherwise vanish from
		// the stream despite having been lstat'd successfully by its
		// parent, so it gets a fallback EntryRecord built from the stat
		// the caller already captured, in place of the summary it can no
		// longer produce.
		ts.log.Printf("open %s: %v", dname, err)
		ts.emit(c, dname, dstat, parentInode, depth, entrySentinelCount, entrySentinelSum)
	} else {
		var localCount, localSum int64
	scan:
		for _, name := range names {
			if ts.ignoreSnapshots && name == snapshotDirName {
				continue
			}
			select {
			case <-ctx.Done():
				break scan
			default:
			}

			fullpath := joinPath(dname, name)
			fi, snap, err := lstatSnapshot(fullpath)
			if err != nil {
				// Child lstat failure: skip entirely, not counted.
				continue
			}
			localCount++

			if fi.IsDir() {
				if childSlot, childCell, _, ok := ts.pool.claim(); ok {
					go ts.run(ctx, fullpath, dstat.Inode, depth+1, snap, childCell, childSlot, true)
				} else {
					ts.run(ctx, fullpath, dstat.Inode, depth+1, snap, c, 0, false)
				}
				continue
			}

			localSum += snap.Size
			ts.emit(c, fullpath, snap, dstat.Inode, depth+1, entrySentinelCount, entrySentinelSum)
		}
		ts.emit(c, dname, dstat, parentInode, depth, localCount, localSum)
	}

	if topOfWorker {
		if err := ts.sink.flush(c); err != nil {
			ts.log.Printf("flush %s: %v", dname, err)
		}
		ts.pool.release(slot)
	}
}
