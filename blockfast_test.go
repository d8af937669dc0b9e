package wmem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohbentos/wireshark/wsutil/wmem"
)

func TestBlockFast_FreeIsNoop(t *testing.T) {
	a := wmem.ForceNew(wmem.BlockFast)
	defer a.Destroy()

	p := a.Alloc(64)
	assert.NotPanics(t, func() { a.Free(p) })
	// p remains readable; BlockFast.Free does nothing.
	assert.Len(t, p, 64)
}

func TestBlockFast_BumpAllocationDoesNotOverlap(t *testing.T) {
	a := wmem.ForceNew(wmem.BlockFast)
	defer a.Destroy()

	var bufs [][]byte
	for i := 0; i < 500; i++ {
		p := a.Alloc0(16)
		for j := range p {
			p[j] = byte(i)
		}
		bufs = append(bufs, p)
	}

	for i, p := range bufs {
		for _, b := range p {
			require.Equal(t, byte(i), b, "buffer %d was clobbered", i)
		}
	}
}

func TestBlockFast_FreeAllRetainsChunksForReuse(t *testing.T) {
	a := wmem.ForceNew(wmem.BlockFast)
	defer a.Destroy()

	for i := 0; i < 1024; i++ {
		a.Alloc(48)
	}
	a.FreeAll()

	// Alloc0 after free_all must read back zero, not stale bytes from the
	// retained (but not re-zeroed on carve) chunk.
	p := a.Alloc0(48)
	assert.Equal(t, make([]byte, 48), p)
}
