package memblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type element struct {
	frame int
	value int
}

func TestAcquireGrowsByChunk(t *testing.T) {
	p := NewPool[element](WithChunkLen(4), WithLabel("elements"))
	assert.Equal(t, "elements", p.Label())
	assert.Equal(t, 0, p.Cap())

	for i := 0; i < 5; i++ {
		h, e := p.Acquire()
		require.NotNil(t, e)
		assert.Equal(t, Handle(i), h)
		e.value = i
	}

	assert.Equal(t, 5, p.Len())
	assert.Equal(t, 8, p.Cap())
	assert.Equal(t, 2, p.Chunks())
}

func TestPointersStableAcrossGrowth(t *testing.T) {
	p := NewPool[element](WithChunkLen(2))
	_, first := p.Acquire()
	first.value = 42

	for i := 0; i < 100; i++ {
		p.Acquire()
	}

	assert.Equal(t, 42, first.value)
	assert.Same(t, first, p.Get(0))
}

func TestResetKeepsStorageAndContents(t *testing.T) {
	p := NewPool[element](WithChunkLen(8))
	for i := 0; i < 20; i++ {
		_, e := p.Acquire()
		e.frame = 1
		e.value = i
	}
	chunks := p.Chunks()

	p.Reset()
	assert.Equal(t, 0, p.Len())
	assert.Nil(t, p.Get(0))

	_, e := p.Acquire()
	assert.Equal(t, 1, e.frame, "recycled element keeps previous contents")
	assert.Equal(t, 0, e.value)
	assert.Equal(t, chunks, p.Chunks())
}

func TestSteadyStateDoesNotGrow(t *testing.T) {
	p := NewPool[element](WithChunkLen(16))
	for i := 0; i < 1000; i++ {
		p.Acquire()
	}
	capBefore := p.Cap()

	for frame := 0; frame < 10; frame++ {
		p.Reset()
		for i := 0; i < 1000; i++ {
			p.Acquire()
		}
		assert.Equal(t, capBefore, p.Cap())
	}

	allocs := testing.AllocsPerRun(20, func() {
		p.Reset()
		for i := 0; i < 1000; i++ {
			p.Acquire()
		}
	})
	assert.Zero(t, allocs)
}

func TestGrowthIsMonotonic(t *testing.T) {
	p := NewPool[element](WithChunkLen(4))
	loads := []int{10, 3, 40, 0, 7}
	prev := 0
	for _, n := range loads {
		p.Reset()
		for i := 0; i < n; i++ {
			p.Acquire()
		}
		assert.GreaterOrEqual(t, p.Cap(), prev)
		prev = p.Cap()
	}
	assert.Equal(t, 40, p.Cap())
}

func TestEachVisitsInAcquisitionOrder(t *testing.T) {
	p := NewPool[element](WithChunkLen(3))
	for i := 0; i < 7; i++ {
		_, e := p.Acquire()
		e.value = i * 10
	}

	var seen []int
	p.Each(func(h Handle, e *element) bool {
		seen = append(seen, e.value)
		return true
	})
	assert.Equal(t, []int{0, 10, 20, 30, 40, 50, 60}, seen)

	count := 0
	p.Each(func(h Handle, e *element) bool {
		count++
		return h < 2
	})
	assert.Equal(t, 3, count)
}

func TestGetRejectsOutOfRange(t *testing.T) {
	p := NewPool[element]()
	p.Acquire()
	assert.Nil(t, p.Get(InvalidHandle))
	assert.Nil(t, p.Get(1))
	assert.NotNil(t, p.Get(0))
}

func TestDestroyFreesAllocatedElements(t *testing.T) {
	p := NewPool[element](WithChunkLen(4))
	for i := 0; i < 6; i++ {
		p.Acquire()
	}
	p.Reset()
	p.Acquire()

	freed := 0
	p.Destroy(func(e *element) { freed++ })
	assert.Equal(t, 8, freed, "every allocated element is released, not only the acquired ones")
	assert.Equal(t, 0, p.Cap())
	assert.Equal(t, 0, p.Len())

	_, e := p.Acquire()
	assert.NotNil(t, e)
}

func TestNonPositiveChunkLenFallsBack(t *testing.T) {
	p := NewPool[element](WithChunkLen(0))
	p.Acquire()
	assert.Equal(t, DefaultChunkLen, p.Cap())
}
