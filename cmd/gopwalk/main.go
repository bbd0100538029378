// Command gopwalk performs a parallel recursive directory walk, emitting a
// tabular record per entry plus a per-directory aggregate, optionally
// compressed with zstd or gzip.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/dpetersen/gopwalk/internal/walk"
)

var (
	root            = flag.String("root", "", "root directory to traverse (required unless -roots is set)")
	output          = flag.String("output", "", "path to write the record stream to (required unless -outputs is set)")
	roots           = flag.String("roots", "", "comma-separated list of root directories, walked concurrently; pairs positionally with -outputs")
	outputs         = flag.String("outputs", "", "comma-separated list of output paths, one per -roots entry")
	jobs            = flag.Int("jobs", walk.DefaultJobs, "maximum concurrent worker goroutines, per root")
	ignoreSnapshots = flag.Bool("ignore-snapshots", true, "skip a literal \".snapshot\" entry at every directory level")
	compress        = flag.Bool("compress", false, "stream the record output through a compressor")
	format          = flag.String("format", "zstd", "compressor to use when -compress is set: zstd or gzip")
)

func parseFormat(s string) (walk.Format, error) {
	switch s {
	case "zstd":
		return walk.FormatZstd, nil
	case "gzip":
		return walk.FormatGzip, nil
	default:
		return walk.FormatNone, fmt.Errorf("unknown -format %q (want zstd or gzip)", s)
	}
}

func funcmain() error {
	flag.Parse()

	if err := bumpRlimitNOFILE(); err != nil {
		log.Printf("bumpRlimitNOFILE: %v (continuing with the current limit)", err)
	}

	fmt_, err := parseFormat(*format)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	base := walk.Options{
		Jobs:            *jobs,
		IgnoreSnapshots: *ignoreSnapshots,
		Compress:        *compress,
		Format:          fmt_,
	}

	if *roots != "" || *outputs != "" {
		rootList := strings.Split(*roots, ",")
		outputList := strings.Split(*outputs, ",")
		if len(rootList) != len(outputList) {
			return fmt.Errorf("-roots has %d entries but -outputs has %d; they must pair up", len(rootList), len(outputList))
		}
		optsList := make([]walk.Options, len(rootList))
		for i := range rootList {
			opts := base
			opts.Root = strings.TrimSpace(rootList[i])
			opts.Output = strings.TrimSpace(outputList[i])
			optsList[i] = opts
		}
		results, err := walk.WalkMany(ctx, optsList)
		for _, r := range results {
			if r.SinkPath != "" {
				log.Printf("wrote %s (compressed=%v)", r.SinkPath, r.Compressed)
			}
		}
		return err
	}

	if *root == "" || *output == "" {
		flag.Usage()
		return fmt.Errorf("-root and -output are required (or use -roots/-outputs for multiple)")
	}

	base.Root = *root
	base.Output = *output
	result, err := walk.Walk(ctx, base)
	if err != nil {
		return err
	}

	log.Printf("wrote %s (compressed=%v)", result.SinkPath, result.Compressed)
	return nil
}

func main() {
	if err := funcmain(); err != nil {
		log.Fatal(err)
	}
}
