package treehash

import (
	"context"
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/gordian-engine/treehash/b3"
	"github.com/gordian-engine/treehash/internal/cvmem"
)

// CompressRequest is one unit of work for a compression engine:
// the complete input of a single BLAKE3 block compression.
// The block length is always 64 in this design, so it is not carried.
type CompressRequest struct {
	CV      [8]uint32
	Block   [16]uint32
	Counter uint64
	Flags   uint32
}

// CompressLink connects the coordinator to a compression engine.
//
// The link is a strict FIFO pair: the i-th Recv returns the output
// chaining value of the i-th Send. The coordinator never reorders or
// skips a response, and an implementation must never begin a
// compression before fully consuming the previous request.
// That ordering is what lets requests match responses without
// sequence numbers.
//
// A CompressLink is not safe for concurrent use;
// one hash call owns the link for its duration.
type CompressLink interface {
	Send(CompressRequest) error
	Recv() ([8]uint32, error)

	// Close releases the link.
	// An engine only closes links it created itself.
	Close() error
}

// maxInFlight bounds the number of unanswered requests on a link.
// It also bounds the send window, so the in-process channels
// can never fill beyond it.
const maxInFlight = 128

var errLinkClosed = errors.New("compression link closed")

// chanLink is an in-process [CompressLink] backed by a pair of bounded
// channels and a single worker goroutine. The bounded channels give the
// backpressure relationship of a producer/consumer handoff: the sender
// stalls when the worker lags, and the worker stalls when no request
// is pending.
type chanLink struct {
	reqs chan CompressRequest
	cvs  chan [8]uint32
}

func newChanLink() *chanLink {
	l := &chanLink{
		reqs: make(chan CompressRequest, maxInFlight),
		cvs:  make(chan [8]uint32, maxInFlight),
	}
	go l.runWorker()
	return l
}

// runWorker is the compressor role:
// it drains one request at a time, in order,
// and emits exactly one response per request.
func (l *chanLink) runWorker() {
	defer close(l.cvs)

	for req := range l.reqs {
		l.cvs <- b3.Compress(&req.CV, &req.Block, req.Counter, b3.BlockLen, req.Flags)
	}
}

func (l *chanLink) Send(req CompressRequest) error {
	l.reqs <- req
	return nil
}

func (l *chanLink) Recv() ([8]uint32, error) {
	cv, ok := <-l.cvs
	if !ok {
		return [8]uint32{}, errLinkClosed
	}
	return cv, nil
}

func (l *chanLink) Close() error {
	close(l.reqs)
	return nil
}

// hashPipelined runs the orchestrator role:
// it feeds block compressions through the link in a deterministic order
// and applies the responses, which arrive in that same order.
func (e *Engine) hashPipelined(ctx context.Context, input []byte, buf *cvmem.Buffer) error {
	link := e.link
	if link == nil {
		cl := newChanLink()
		defer cl.Close()
		link = cl
	}

	if err := e.runLeafPhase(ctx, input, buf, link); err != nil {
		return fmt.Errorf("leaf phase: %w", err)
	}

	for r := range buf.MergeLevels() {
		if err := runMergeLevel(buf, link, r); err != nil {
			return fmt.Errorf("merge level %d: %w", r, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	e.log.Debug("Merge levels complete", "levels", buf.MergeLevels())

	if buf.ChunkCount() == 1 {
		// The leaf phase already compressed the root block.
		return nil
	}

	left, right := buf.RootChildren()
	if err := link.Send(CompressRequest{
		CV:    b3.IV,
		Block: b3.ParentBlock(left, right),
		Flags: b3.FlagParent | b3.FlagRoot,
	}); err != nil {
		return fmt.Errorf("root merge: %w", err)
	}
	cv, err := link.Recv()
	if err != nil {
		return fmt.Errorf("root merge: %w", err)
	}
	buf.SetDigest(cv)

	return nil
}

// runLeafPhase issues the sixteen block compressions of every chunk in
// round-robin order: block j of every chunk before block j+1 of any.
//
// The in-chunk chaining dependency is preserved by the send window:
// at most min(chunkCount, maxInFlight) requests are outstanding, so the
// response for chunk i's block j is always applied before the request
// for its block j+1 is built.
func (e *Engine) runLeafPhase(
	ctx context.Context, input []byte, buf *cvmem.Buffer, link CompressLink,
) error {
	n := buf.ChunkCount()

	window := n
	if window > maxInFlight {
		window = maxInFlight
	}

	// The final block of a single-chunk input is the root compression.
	var lastBlockFlags uint32
	if n == 1 {
		lastBlockFlags = b3.FlagRoot
	}

	cvs := make([][8]uint32, n)
	for i := range cvs {
		cvs[i] = b3.IV
	}

	// done holds one bit per chunk; chunk i completes when the response
	// for its final block is applied. The leaf phase ends, and the merge
	// levels may start, only once the set is full.
	done := bitset.MustNew(uint(n))

	total := n * b3.ChunkBlocks
	var sent, recvd int
	var block [16]uint32
	for !done.All() {
		for sent < total && sent-recvd < window {
			j := sent / n
			i := sent % n

			b3.DecodeBlock(&block, input[i*b3.ChunkLen+j*b3.BlockLen:])

			flags := b3.BlockFlags(j)
			if j == b3.ChunkBlocks-1 {
				flags |= lastBlockFlags
			}

			if err := link.Send(CompressRequest{
				CV:      cvs[i],
				Block:   block,
				Counter: uint64(i),
				Flags:   flags,
			}); err != nil {
				return fmt.Errorf("failed to send block compression request: %w", err)
			}
			sent++
		}

		cv, err := link.Recv()
		if err != nil {
			return fmt.Errorf("failed to receive block compression response: %w", err)
		}

		j := recvd / n
		i := recvd % n
		cvs[i] = cv
		if j == b3.ChunkBlocks-1 {
			buf.SetLeaf(i, cv)
			done.Set(uint(i))
		}
		recvd++

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	e.log.Debug("Leaf phase complete", "chunks", done.Count())

	return nil
}

// runMergeLevel issues one level of pairwise merges through the link.
// Merges within the level are independent, so they are windowed the same
// way as leaf blocks; the level as a whole completes before returning,
// which is the barrier the next level depends on.
func runMergeLevel(buf *cvmem.Buffer, link CompressLink, r int) error {
	width := buf.LevelWidth(r)

	window := width
	if window > maxInFlight {
		window = maxInFlight
	}

	var sent, recvd int
	for recvd < width {
		for sent < width && sent-recvd < window {
			left, right := buf.LevelChildren(r, sent)
			if err := link.Send(CompressRequest{
				CV:    b3.IV,
				Block: b3.ParentBlock(left, right),
				Flags: b3.FlagParent,
			}); err != nil {
				return fmt.Errorf("failed to send merge request: %w", err)
			}
			sent++
		}

		cv, err := link.Recv()
		if err != nil {
			return fmt.Errorf("failed to receive merge response: %w", err)
		}
		buf.SetLevelNode(r, recvd, cv)
		recvd++
	}

	return nil
}
