package walk

import (
	"context"
	"log"
	"os"

	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// DefaultJobs is the default value of cmd/gopwalk's -jobs flag. Walk does
// not substitute it for an unset Options.Jobs (see Options.Jobs).
const DefaultJobs = 8

// Options configures a single Walk call. Root and Output are required;
// the remaining fields default as documented.
type Options struct {
	// Root is the absolute path to traverse.
	Root string
	// Output is the path the record stream is written to.
	Output string
	// Jobs caps concurrent top-of-worker goroutines. Values <= 0 or
	// above MaxWorkerSlots are clamped to MaxWorkerSlots; the reference
	// ignores this parameter entirely, this implementation honors it.
	Jobs int
	// IgnoreSnapshots excludes a literal ".snapshot" entry at every
	// directory level. Callers that want that as the default should set
	// it explicitly; Options carries no defaulting magic of its own.
	IgnoreSnapshots bool
	// Compress enables streaming compression of the record stream
	// (everything after the header line).
	Compress bool
	// Format selects the compressor when Compress is true. Zero value
	// (FormatNone) is promoted to FormatZstd to match the reference's
	// hard-coded zstd behavior.
	Format Format
	// Logger receives diagnostics (directory open failures, sink errors,
	// termination timeout); child lstat failures are skipped without a
	// message. Defaults to a logger writing to stderr.
	Logger *log.Logger
}

// Result summarizes a completed Walk call.
type Result struct {
	SinkPath   string
	Compressed bool
}

// Walk performs a bounded-concurrency recursive traversal of Options.Root,
// writing the tabular output stream to Options.Output, and returns once
// every worker has released its slot (or the bounded termination timeout
// elapses).
func Walk(ctx context.Context, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "gopwalk: ", log.LstdFlags)
	}

	format := opts.Format
	if opts.Compress && format == FormatNone {
		format = FormatZstd
	}
	if !opts.Compress {
		format = FormatNone
	}

	_, rootSnap, err := lstatSnapshot(opts.Root)
	if err != nil {
		return Result{}, xerrors.Errorf("lstat root %s: %w", opts.Root, err)
	}

	f, err := os.Create(opts.Output)
	if err != nil {
		return Result{}, xerrors.Errorf("open sink %s: %w", opts.Output, err)
	}

	sk, err := newSink(f, format)
	if err != nil {
		f.Close()
		return Result{}, xerrors.Errorf("newSink: %w", err)
	}

	if err := sk.writeHeader([]byte(Header)); err != nil {
		logger.Printf("write header: %v", err)
	}

	p := newPool(opts.Jobs)
	ts := &traversalState{
		sink:            sk,
		pool:            p,
		log:             logger,
		ignoreSnapshots: opts.IgnoreSnapshots,
	}

	slot, c, _, ok := p.claim()
	if !ok {
		f.Close()
		return Result{}, xerrors.New("walk: failed to claim root worker slot")
	}
	go ts.run(ctx, opts.Root, 0, -1, rootSnap, c, slot, true)

	if timedOut := p.waitIdle(); timedOut {
		logger.Printf("WARNING: timeout waiting for workers to finish (active=%d)", p.activeCount())
	}

	sinkErr := sk.finalize()
	closeErr := f.Close()
	if sinkErr == nil {
		sinkErr = closeErr
	}

	return Result{SinkPath: opts.Output, Compressed: format != FormatNone}, sinkErr
}

// WalkMany runs Walk once per element of optsList concurrently, each against
// its own sink and its own worker pool, and waits for all of them on a
// shared errgroup.Group: the first failing Walk cancels nothing on its own,
// but its error is the one WalkMany returns once every goroutine has
// finished. Results line up index-for-index with optsList and hold whatever
// Walk returned: the zero Result for an entry that failed before its walk
// started (root lstat, sink open), a populated one for an entry whose only
// failure was a sink write or close error.
func WalkMany(ctx context.Context, optsList []Options) ([]Result, error) {
	results := make([]Result, len(optsList))
	var eg errgroup.Group
	for i, opts := range optsList {
		i, opts := i, opts
		eg.Go(func() error {
			r, err := Walk(ctx, opts)
			results[i] = r
			if err != nil {
				return xerrors.Errorf("walk %s: %w", opts.Root, err)
			}
			return nil
		})
	}
	err := eg.Wait()
	return results, err
}
