package wmem

// blockFastChunkSize mirrors block.go's chunk size; see SPEC_FULL.md §6 Open
// Question 2 — this is a tuning parameter, not a contract.
const blockFastChunkSize = 128 * 1024

// blockFastJumboThreshold is the point past which an allocation bypasses
// chunks entirely and gets its own backing slice.
const blockFastJumboThreshold = blockFastChunkSize / 2

type fastChunk struct {
	buf    []byte
	offset int
}

// blockFastStrategy is the BLOCK_FAST strategy (spec.md §4.4): a pure
// bump allocator with no individual free, for write-once/read-many
// per-packet data. Chunks are retained (not released) across FreeAll so
// repeated per-packet cycles don't keep re-requesting memory from the
// system allocator.
type blockFastStrategy struct {
	chunks []*fastChunk
	cur    int // index into chunks of the chunk currently being bumped
	jumbo  [][]byte
}

func newBlockFast() *blockFastStrategy {
	return &blockFastStrategy{cur: -1}
}

func (s *blockFastStrategy) alloc(n int) []byte {
	if n == 0 {
		return allocResult(0, nil)
	}
	if n >= blockFastJumboThreshold {
		buf := make([]byte, n)
		s.jumbo = append(s.jumbo, buf)
		return buf
	}

	if s.cur < 0 || s.chunks[s.cur].offset+n > len(s.chunks[s.cur].buf) {
		s.openChunk()
	}

	c := s.chunks[s.cur]
	p := c.buf[c.offset : c.offset+n : c.offset+n]
	c.offset += n
	return p
}

func (s *blockFastStrategy) openChunk() {
	// Reuse the next retained chunk from a prior FreeAll if one exists and
	// is large enough; only grow the chunk list once every retained chunk
	// has been consumed by this round.
	for i := s.cur + 1; i < len(s.chunks); i++ {
		if s.chunks[i].offset == 0 {
			s.cur = i
			return
		}
	}
	s.chunks = append(s.chunks, &fastChunk{buf: make([]byte, blockFastChunkSize)})
	s.cur = len(s.chunks) - 1
}

func (s *blockFastStrategy) alloc0(n int) []byte {
	// make([]byte, ...) for a fresh chunk/jumbo block is already zero, but a
	// bumped sub-slice of a *retained* chunk may hold stale bytes from a
	// prior FreeAll round, so alloc0 must clear explicitly.
	buf := s.alloc(n)
	clear(buf)
	return buf
}

// realloc always allocates fresh and copies; the old block is leaked (not
// reclaimable) until the next FreeAll, per spec.md §4.4.
func (s *blockFastStrategy) realloc(p []byte, n int) []byte {
	if n == 0 {
		return allocResult(0, nil)
	}
	next := s.alloc(n)
	copy(next, p)
	return next
}

// free is a no-op: BLOCK_FAST supports no individual free.
func (s *blockFastStrategy) free([]byte) {}

func (s *blockFastStrategy) freeAll() {
	for _, c := range s.chunks {
		c.offset = 0
	}
	s.cur = -1
	s.jumbo = nil
}

func (s *blockFastStrategy) gc() {}

func (s *blockFastStrategy) destroyImpl() {
	s.chunks = nil
	s.jumbo = nil
	s.cur = -1
}
