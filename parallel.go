package treehash

import (
	"context"
	"sync"

	"github.com/gordian-engine/treehash/b3"
	"github.com/gordian-engine/treehash/internal/cvmem"
)

// hashParallel runs the leaf pass and each merge level
// across a pool of goroutines.
//
// Work within a phase is independent: chunks never share state, and the
// merges of one level write disjoint slots. The only ordering that
// matters is the barrier between phases, which the per-phase WaitGroup
// provides. The context is consulted at those barriers only; the phases
// themselves are finite pure computation with no error path.
func hashParallel(ctx context.Context, input []byte, buf *cvmem.Buffer, workers int) error {
	n := buf.ChunkCount()

	if n == 1 {
		buf.SetLeaf(0, b3.ChunkCV(0, input, b3.FlagRoot))
		return nil
	}

	if workers > n {
		workers = n
	}

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := w; i < n; i += workers {
				buf.SetLeaf(i, b3.ChunkCV(uint64(i), input[i*b3.ChunkLen:], 0))
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	for r := range buf.MergeLevels() {
		width := buf.LevelWidth(r)

		levelWorkers := workers
		if levelWorkers > width {
			levelWorkers = width
		}

		var lwg sync.WaitGroup
		for w := range levelWorkers {
			lwg.Add(1)
			go func() {
				defer lwg.Done()
				for i := w; i < width; i += levelWorkers {
					left, right := buf.LevelChildren(r, i)
					buf.SetLevelNode(r, i, b3.ParentCV(left, right, 0))
				}
			}()
		}

		// Level barrier: level r+1 reads every slot this level wrote.
		lwg.Wait()

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	left, right := buf.RootChildren()
	buf.SetDigest(b3.RootCV(left, right))
	return nil
}
