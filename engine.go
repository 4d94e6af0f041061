package treehash

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/gordian-engine/treehash/b3"
	"github.com/gordian-engine/treehash/internal/cvmem"
)

// Mode selects the concurrency strategy for an [Engine].
type Mode int

const (
	// ModeSequential computes everything on the calling goroutine.
	// It is the reference mode that the other modes must match bit for bit.
	ModeSequential Mode = iota

	// ModeParallel fans independent chunks, and merge pairs within one
	// tree level, out to a worker pool. Consecutive levels are separated
	// by a barrier, because a level reads the previous level's output.
	ModeParallel

	// ModePipelined streams every block compression through an ordered
	// request/response link to a single compression engine,
	// keeping many chunks in flight at once.
	ModePipelined
)

func (m Mode) String() string {
	switch m {
	case ModeSequential:
		return "sequential"
	case ModeParallel:
		return "parallel"
	case ModePipelined:
		return "pipelined"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Config is the configuration for [NewEngine].
type Config struct {
	Mode Mode

	// Workers is the pool size for [ModeParallel].
	// Zero or negative means GOMAXPROCS.
	Workers int

	// Link is the compression link for [ModePipelined].
	// When nil, the engine starts an in-process compression worker
	// for each hash call.
	Link CompressLink

	// Log is optional; a nil value discards all logging.
	Log *slog.Logger
}

// Engine computes BLAKE3 digests of chunk-aligned buffers.
// An Engine is safe for concurrent use unless it was configured
// with a [CompressLink], which a single hash call owns exclusively.
type Engine struct {
	log *slog.Logger

	mode    Mode
	workers int
	link    CompressLink
}

// NewEngine returns an engine for the given configuration.
func NewEngine(cfg Config) *Engine {
	log := cfg.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Engine{
		log: log,

		mode:    cfg.Mode,
		workers: workers,
		link:    cfg.Link,
	}
}

// Result is the outcome of one hash call.
type Result struct {
	// Digest is the 32-byte BLAKE3 digest, little-endian encoded.
	Digest [32]byte

	// Elapsed is the wall time spent inside the compression pipeline,
	// excluding precondition checks and buffer allocation.
	Elapsed time.Duration
}

// Hash computes the digest of input,
// which must be exactly chunkCount * 1024 bytes
// for a power-of-two chunkCount of at least 1.
//
// A call either fully succeeds or fails before any compression starts;
// there is no partial digest.
func (e *Engine) Hash(ctx context.Context, input []byte, chunkCount int) (Result, error) {
	if err := validate(input, chunkCount); err != nil {
		return Result{}, err
	}

	buf := cvmem.New(chunkCount)

	e.log.Debug(
		"Hashing",
		"chunks", chunkCount,
		"bytes", len(input),
		"mode", e.mode,
	)

	start := time.Now()

	var err error
	switch e.mode {
	case ModeSequential:
		hashSequential(input, buf)
	case ModeParallel:
		err = hashParallel(ctx, input, buf, e.workers)
	case ModePipelined:
		err = e.hashPipelined(ctx, input, buf)
	default:
		panic(fmt.Errorf("BUG: unknown mode %d", e.mode))
	}
	if err != nil {
		return Result{}, err
	}

	res := Result{Elapsed: time.Since(start)}
	cv := buf.Digest()
	b3.EncodeCV(res.Digest[:], &cv)
	return res, nil
}

// Sum computes the digest of input with a sequential engine.
// It is shorthand for configuring an [Engine] in [ModeSequential].
func Sum(input []byte, chunkCount int) ([32]byte, error) {
	res, err := NewEngine(Config{}).Hash(context.Background(), input, chunkCount)
	return res.Digest, err
}
