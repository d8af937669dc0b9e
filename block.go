package wmem

import (
	"fmt"
	"math/bits"
	"unsafe"
)

// Tuning parameters for the BLOCK strategy. These are not contracts (spec.md
// §9 Open Question 2); only the invariants checked by verify() are.
const (
	blockChunkSize   = 128 * 1024
	blockJumbo       = blockChunkSize / 2 // allocations >= this are jumbo
	blockMinSplit    = 32                 // minimum remainder worth splitting off
	blockSizeClasses = 18                 // covers 1B .. blockChunkSize
)

// blockDesc describes one sub-block of a chunk. Per spec.md §9's guidance to
// re-architect raw pointer graphs as "arena + indices", chunk.blocks is an
// owned, contiguous partition of the chunk addressed by offset rather than a
// linked list of headers embedded in the memory itself.
type blockDesc struct {
	offset, size int
	free         bool
}

// blockChunk is one large region carved into blockDesc sub-blocks. bump is
// the offset of the first byte not yet claimed by any blockDesc ("virgin"
// space); space at [bump, len(buf)) belongs to no block until the bump
// allocator consumes it.
type blockChunk struct {
	buf    []byte
	start  uintptr
	blocks []blockDesc
	bump   int
}

type blockLoc struct {
	chunk, offset int
}

// blockStrategy is the BLOCK strategy (spec.md §4.3): chunks carved into
// free-list-managed sub-blocks with coalescing, plus a dedicated jumbo path
// for oversize allocations. Grounded on the teacher's size-class free list
// (pkg/arena/recycle.go) and on cloudfly-readgo/runtime/mcentral.go's
// chunk/free-list/coalescing shape.
type blockStrategy struct {
	chunks   []*blockChunk
	freeList [blockSizeClasses][]blockLoc

	jumbo    map[uintptr][]byte
	jumboIdx []uintptr // insertion order, for deterministic FreeAll iteration
}

func newBlock() *blockStrategy {
	return &blockStrategy{jumbo: make(map[uintptr][]byte)}
}

func sizeClassIndex(size int) int {
	if size < 1 {
		size = 1
	}
	log := bits.Len(uint(size - 1))
	return log
}

// freeClassIndex is the class a free block of size bytes is filed under:
// floor(log2(size)), so every block in class c holds at least 1<<c bytes and
// a request searching from sizeClassIndex(n) upward never finds one too small.
func freeClassIndex(size int) int {
	return bits.Len(uint(size)) - 1
}

func sizeClassCap(class int) int { return 1 << class }

func (s *blockStrategy) alloc(n int) []byte {
	if n == 0 {
		return allocResult(0, nil)
	}
	if n >= blockJumbo {
		buf := make([]byte, n)
		id := blockID(buf)
		s.jumbo[id] = buf
		s.jumboIdx = append(s.jumboIdx, id)
		return buf
	}

	if p := s.allocFromFreeList(n); p != nil {
		return p
	}
	return s.allocFromBump(n)
}

func (s *blockStrategy) allocFromFreeList(n int) []byte {
	class := sizeClassIndex(n)
	for class < blockSizeClasses {
		if loc, ok := s.popFree(class); ok {
			return s.claim(loc, n)
		}
		class++
	}
	return nil
}

// claim marks the free block at loc allocated, splitting off and re-freeing
// the remainder when it is large enough to be worth tracking separately.
func (s *blockStrategy) claim(loc blockLoc, n int) []byte {
	c := s.chunks[loc.chunk]
	idx := c.findBlock(loc.offset)
	c.blocks[idx].free = false
	s.splitTail(loc.chunk, idx, n)

	b := c.blocks[idx]
	return c.buf[b.offset : b.offset+n : b.offset+b.size]
}

// splitTail shrinks the allocated block at c.blocks[idx] to exactly n bytes
// and pushes the remainder back onto the free list as a new block, if the
// remainder is large enough to be worth tracking separately. idx's block
// must already be marked allocated (free: false).
func (s *blockStrategy) splitTail(chunkIdx, idx, n int) {
	c := s.chunks[chunkIdx]
	b := &c.blocks[idx]

	remainder := b.size - n
	if remainder < blockMinSplit {
		return
	}

	newBlock := blockDesc{offset: b.offset + n, size: remainder, free: true}
	b.size = n
	c.blocks = append(c.blocks, blockDesc{})
	copy(c.blocks[idx+2:], c.blocks[idx+1:len(c.blocks)-1])
	c.blocks[idx+1] = newBlock
	s.pushFree(blockLoc{chunkIdx, newBlock.offset}, newBlock.size)
}

func (s *blockStrategy) allocFromBump(n int) []byte {
	if len(s.chunks) > 0 {
		if c := s.chunks[len(s.chunks)-1]; c.bump+n <= len(c.buf) {
			return s.bumpIn(c, n)
		}
	}
	c := &blockChunk{buf: make([]byte, blockChunkSize)}
	c.start = uintptr(unsafe.Pointer(unsafe.SliceData(c.buf)))
	s.chunks = append(s.chunks, c)
	return s.bumpIn(c, n)
}

func (s *blockStrategy) bumpIn(c *blockChunk, n int) []byte {
	offset := c.bump
	c.blocks = append(c.blocks, blockDesc{offset: offset, size: n, free: false})
	c.bump += n
	return c.buf[offset : offset+n : offset+n]
}

func (s *blockStrategy) alloc0(n int) []byte {
	buf := s.alloc(n)
	clear(buf)
	return buf
}

func (s *blockStrategy) free(p []byte) {
	if len(p) == 0 {
		return
	}
	if s.freeJumbo(p) {
		return
	}

	chunkIdx, offset, ok := s.locate(p)
	if !ok {
		fatalf("Free", "pointer %p not owned by this BLOCK allocator", unsafe.SliceData(p))
	}

	c := s.chunks[chunkIdx]
	idx := c.findBlock(offset)
	c.blocks[idx].free = true
	s.coalesce(chunkIdx, idx)
}

func (s *blockStrategy) freeJumbo(p []byte) bool {
	id := blockID(p)
	if _, ok := s.jumbo[id]; !ok {
		return false
	}
	delete(s.jumbo, id)
	for i, x := range s.jumboIdx {
		if x == id {
			s.jumboIdx = append(s.jumboIdx[:i], s.jumboIdx[i+1:]...)
			break
		}
	}
	return true
}

// coalesce merges the free block at c.blocks[idx] with an immediately
// adjacent free neighbor on either side, re-registering the merged block in
// the free list. Coalescing is mandatory (spec.md §4.3): without it, long
// alloc/free sequences fragment chunks into unusable slivers.
func (s *blockStrategy) coalesce(chunkIdx, idx int) {
	c := s.chunks[chunkIdx]

	if idx+1 < len(c.blocks) && c.blocks[idx+1].free {
		next := c.blocks[idx+1]
		s.removeFree(blockLoc{chunkIdx, next.offset}, next.size)
		c.blocks[idx].size += next.size
		c.blocks = append(c.blocks[:idx+1], c.blocks[idx+2:]...)
	}

	if idx > 0 && c.blocks[idx-1].free {
		prev := c.blocks[idx-1]
		s.removeFree(blockLoc{chunkIdx, prev.offset}, prev.size)
		c.blocks[idx-1].size += c.blocks[idx].size
		c.blocks = append(c.blocks[:idx], c.blocks[idx+1:]...)
		idx--
	}

	b := c.blocks[idx]
	s.pushFree(blockLoc{chunkIdx, b.offset}, b.size)
}

func (s *blockStrategy) realloc(p []byte, n int) []byte {
	if len(p) == 0 {
		return s.alloc(n)
	}
	if n == 0 {
		s.free(p)
		return allocResult(0, nil)
	}

	if id := blockID(p); s.jumbo[id] != nil {
		return s.reallocCopy(p, n)
	}

	chunkIdx, offset, ok := s.locate(p)
	if !ok {
		fatalf("Realloc", "pointer %p not owned by this BLOCK allocator", unsafe.SliceData(p))
	}
	c := s.chunks[chunkIdx]
	idx := c.findBlock(offset)
	b := &c.blocks[idx]

	if n <= b.size {
		return c.buf[b.offset : b.offset+n : b.offset+b.size]
	}

	if idx+1 < len(c.blocks) && c.blocks[idx+1].free && b.size+c.blocks[idx+1].size >= n {
		next := c.blocks[idx+1]
		s.removeFree(blockLoc{chunkIdx, next.offset}, next.size)
		b.size += next.size
		c.blocks = append(c.blocks[:idx+1], c.blocks[idx+2:]...)
		s.splitTail(chunkIdx, idx, n)
		b = &c.blocks[idx]
		return c.buf[b.offset : b.offset+n : b.offset+b.size]
	}

	return s.reallocCopy(p, n)
}

func (s *blockStrategy) reallocCopy(p []byte, n int) []byte {
	next := s.alloc(n)
	copy(next, p)
	s.free(p)
	return next
}

func (s *blockStrategy) freeAll() {
	for _, c := range s.chunks {
		c.blocks = c.blocks[:0]
		c.blocks = append(c.blocks, blockDesc{offset: 0, size: len(c.buf), free: true})
		c.bump = len(c.buf)
	}
	for i := range s.freeList {
		s.freeList[i] = s.freeList[i][:0]
	}
	for idx, c := range s.chunks {
		s.pushFree(blockLoc{idx, 0}, len(c.buf))
	}
	s.jumbo = make(map[uintptr][]byte)
	s.jumboIdx = nil
}

// gc releases chunks that are entirely one free block, above a small
// reserve, back to the system allocator.
func (s *blockStrategy) gc() {
	const reserve = 1
	kept := make([]*blockChunk, 0, len(s.chunks))
	remap := make(map[int]int, len(s.chunks))
	for i, c := range s.chunks {
		fullyFree := len(c.blocks) == 1 && c.blocks[0].free && c.blocks[0].size == len(c.buf)
		if fullyFree && len(kept) >= reserve {
			continue
		}
		remap[i] = len(kept)
		kept = append(kept, c)
	}
	if len(kept) == len(s.chunks) {
		return
	}

	var newFreeList [blockSizeClasses][]blockLoc
	for class, locs := range s.freeList {
		for _, loc := range locs {
			if newIdx, ok := remap[loc.chunk]; ok {
				newFreeList[class] = append(newFreeList[class], blockLoc{newIdx, loc.offset})
			}
		}
	}
	s.chunks = kept
	s.freeList = newFreeList
}

func (s *blockStrategy) destroyImpl() {
	s.chunks = nil
	s.jumbo = nil
	s.jumboIdx = nil
	for i := range s.freeList {
		s.freeList[i] = nil
	}
}

func (s *blockStrategy) pushFree(loc blockLoc, size int) {
	class := freeClassIndex(size)
	s.freeList[class] = append(s.freeList[class], loc)
}

func (s *blockStrategy) popFree(class int) (blockLoc, bool) {
	list := s.freeList[class]
	if len(list) == 0 {
		return blockLoc{}, false
	}
	loc := list[len(list)-1]
	s.freeList[class] = list[:len(list)-1]
	return loc, true
}

func (s *blockStrategy) removeFree(loc blockLoc, size int) {
	class := freeClassIndex(size)
	list := s.freeList[class]
	for i, l := range list {
		if l == loc {
			s.freeList[class] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

func (c *blockChunk) findBlock(offset int) int {
	lo, hi := 0, len(c.blocks)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case c.blocks[mid].offset == offset:
			return mid
		case c.blocks[mid].offset < offset:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	fatalf("BLOCK", "no block at offset %d (corrupt bookkeeping)", offset)
	return -1
}

func (s *blockStrategy) locate(p []byte) (chunkIdx, offset int, ok bool) {
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(p)))
	for i, c := range s.chunks {
		end := c.start + uintptr(len(c.buf))
		if addr >= c.start && addr < end {
			return i, int(addr - c.start), true
		}
	}
	return 0, 0, false
}

// verify walks every chunk, checking the invariants in spec.md §4.3: blocks
// partition the chunk contiguously, free-list entries match in-place free
// blocks, sizes agree with offsets, and no two adjacent blocks are both
// free.
func (s *blockStrategy) verify() error {
	freeSet := make(map[blockLoc]bool)
	for _, list := range s.freeList {
		for _, loc := range list {
			freeSet[loc] = true
		}
	}

	for ci, c := range s.chunks {
		total := 0
		for bi, b := range c.blocks {
			if b.offset != total {
				return fmt.Errorf("wmem: verify: chunk %d block %d offset %d, want %d", ci, bi, b.offset, total)
			}
			total += b.size

			if b.free {
				if !freeSet[blockLoc{ci, b.offset}] {
					return fmt.Errorf("wmem: verify: chunk %d block %d marked free but absent from free list", ci, bi)
				}
				delete(freeSet, blockLoc{ci, b.offset})
			}

			if bi+1 < len(c.blocks) && b.free && c.blocks[bi+1].free {
				return fmt.Errorf("wmem: verify: chunk %d blocks %d,%d both free (coalescing violated)", ci, bi, bi+1)
			}
		}
		if total != c.bump {
			// Space past c.bump is virgin (not yet carved); total must match
			// the carved prefix exactly.
			return fmt.Errorf("wmem: verify: chunk %d blocks sum to %d, bump at %d", ci, total, c.bump)
		}
	}

	if len(freeSet) != 0 {
		return fmt.Errorf("wmem: verify: %d free-list entries do not correspond to any free block", len(freeSet))
	}
	return nil
}
