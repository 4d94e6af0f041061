package treehash

import (
	"errors"
	"fmt"

	"github.com/gordian-engine/treehash/b3"
)

// ErrChunkCount is returned from [*Engine.Hash] when the chunk count
// is not a power of two, or is less than one.
var ErrChunkCount = errors.New("chunk count must be a power of two, at least one")

// ErrInputSize is returned from [*Engine.Hash] when the input length
// does not equal the chunk count times the 1024-byte chunk length.
var ErrInputSize = errors.New("input length must equal chunk count times chunk length")

// validate checks the hash preconditions.
// Violations surface here, before any compression work starts;
// once the pipeline is running, no stage has an error path.
func validate(input []byte, chunkCount int) error {
	if chunkCount < 1 || chunkCount&(chunkCount-1) != 0 {
		return fmt.Errorf("%w (got %d)", ErrChunkCount, chunkCount)
	}

	if len(input) != chunkCount*b3.ChunkLen {
		return fmt.Errorf(
			"%w (got %d bytes for %d chunks)", ErrInputSize, len(input), chunkCount,
		)
	}

	return nil
}
