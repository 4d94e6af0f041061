// Command treehash-bench measures hashing throughput
// across a sweep of chunk counts.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gordian-engine/treehash"
	"github.com/spf13/pflag"
)

func main() {
	var (
		mode      = pflag.String("mode", "parallel", "engine mode: sequential, parallel, or pipelined")
		workers   = pflag.Int("workers", 0, "worker count for parallel mode (0 = GOMAXPROCS)")
		minChunks = pflag.Int("min-chunks-log2", 10, "smallest chunk count, as a power of two exponent")
		maxChunks = pflag.Int("max-chunks-log2", 16, "largest chunk count, as a power of two exponent")
		iters     = pflag.Int("iterations", 8, "iterations to average per size")
		verbose   = pflag.Bool("verbose", false, "enable debug logging")
	)
	pflag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	var m treehash.Mode
	switch *mode {
	case "sequential":
		m = treehash.ModeSequential
	case "parallel":
		m = treehash.ModeParallel
	case "pipelined":
		m = treehash.ModePipelined
	default:
		log.Error("Unknown mode", "mode", *mode)
		os.Exit(1)
	}

	if *minChunks < 0 || *maxChunks < *minChunks || *maxChunks > 30 {
		log.Error(
			"Invalid chunk count sweep",
			"min", *minChunks,
			"max", *maxChunks,
		)
		os.Exit(1)
	}

	e := treehash.NewEngine(treehash.Config{
		Mode:    m,
		Workers: *workers,
		Log:     log,
	})
	ctx := context.Background()

	fmt.Printf("%14s  %14s  %14s  %s\n",
		"input size", "avg hash time", "throughput", "digest prefix")

	for k := *minChunks; k <= *maxChunks; k++ {
		chunks := 1 << k

		input := make([]byte, chunks*1024)
		for i := range input {
			input[i] = 0xff
		}

		var total time.Duration
		var digest [32]byte
		for range *iters {
			res, err := e.Hash(ctx, input, chunks)
			if err != nil {
				log.Error("Hash failed", "err", err)
				os.Exit(1)
			}
			total += res.Elapsed
			digest = res.Digest
		}

		avg := total / time.Duration(*iters)
		mib := float64(len(input)) / (1 << 20)

		fmt.Printf("%10d MiB  %14s  %9.1f MiB/s  %x\n",
			len(input)>>20, avg, mib/avg.Seconds(), digest[:8])
	}
}
