package memblock

// Handle addresses an element acquired from a Pool during the current frame.
// Handles are invalidated by Reset.
type Handle int32

// InvalidHandle is the zero-value sentinel for "no element".
const InvalidHandle Handle = -1

// DefaultChunkLen is the number of elements allocated per backing chunk when no
// chunk length is configured.
const DefaultChunkLen = 64

// pool is the implementation of the Pool interface.
type pool[T any] struct {
	label    string
	chunkLen int
	chunks   [][]T
	used     int
}

// Pool is a growable arena of fixed-size elements that is logically cleared, not freed,
// between frames.
//
// Elements live in fixed-length chunks, so a pointer returned by Acquire stays valid until
// the pool is destroyed even when the pool grows. Reset rewinds the acquisition cursor
// without touching element contents: a recycled element still holds whatever the previous
// frame wrote into it, which lets callers keep persistent GPU handles (uniform buffers,
// bind groups) alive across frames. Callers must reinitialise the per-frame fields they
// depend on.
//
// A Pool is not safe for concurrent use.
type Pool[T any] interface {
	// Label returns the debug label of the pool.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Acquire returns the next element of the pool, growing backing storage by one chunk
	// when every allocated element is already in use.
	//
	// Returns:
	//   - Handle: the handle of the acquired element
	//   - *T: a stable pointer to the element
	Acquire() (Handle, *T)

	// Get resolves a handle acquired this frame back to its element.
	//
	// Parameters:
	//   - h: the handle to resolve
	//
	// Returns:
	//   - *T: the element, or nil if the handle is invalid or was not acquired this frame
	Get(h Handle) *T

	// Len returns the number of elements acquired since the last Reset.
	//
	// Returns:
	//   - int: the acquired element count
	Len() int

	// Cap returns the number of elements backed by allocated storage.
	//
	// Returns:
	//   - int: the allocated element count
	Cap() int

	// Chunks returns the number of backing chunks allocated so far.
	//
	// Returns:
	//   - int: the chunk count
	Chunks() int

	// Each calls fn for every element acquired since the last Reset, in acquisition order.
	// Iteration stops early when fn returns false.
	//
	// Parameters:
	//   - fn: the visitor
	Each(fn func(h Handle, elem *T) bool)

	// EachAllocated calls fn for every element backed by storage, acquired this frame or not.
	// Used to release per-element resources that outlive a frame.
	//
	// Parameters:
	//   - fn: the visitor
	EachAllocated(fn func(elem *T))

	// Reset logically empties the pool. Backing storage and element contents are kept.
	Reset()

	// Destroy calls free for every allocated element (if free is non-nil) and drops all
	// backing storage. The pool is empty and reusable afterwards.
	//
	// Parameters:
	//   - free: optional callback releasing per-element resources
	Destroy(free func(elem *T))
}

var _ Pool[int] = &pool[int]{}

// NewPool creates a new, empty Pool. No storage is allocated until the first Acquire.
//
// Parameters:
//   - options: variadic list of PoolBuilderOption functions to configure the pool
//
// Returns:
//   - Pool[T]: a new Pool instance
func NewPool[T any](options ...PoolBuilderOption) Pool[T] {
	cfg := &poolConfig{chunkLen: DefaultChunkLen}
	for _, opt := range options {
		opt(cfg)
	}
	if cfg.chunkLen <= 0 {
		cfg.chunkLen = DefaultChunkLen
	}
	return &pool[T]{
		label:    cfg.label,
		chunkLen: cfg.chunkLen,
	}
}

func (p *pool[T]) Label() string {
	return p.label
}

func (p *pool[T]) Acquire() (Handle, *T) {
	if p.used == p.Cap() {
		p.chunks = append(p.chunks, make([]T, p.chunkLen))
	}
	h := Handle(p.used)
	p.used++
	return h, p.at(int(h))
}

func (p *pool[T]) Get(h Handle) *T {
	if h < 0 || int(h) >= p.used {
		return nil
	}
	return p.at(int(h))
}

func (p *pool[T]) Len() int {
	return p.used
}

func (p *pool[T]) Cap() int {
	return len(p.chunks) * p.chunkLen
}

func (p *pool[T]) Chunks() int {
	return len(p.chunks)
}

func (p *pool[T]) Each(fn func(h Handle, elem *T) bool) {
	for i := 0; i < p.used; i++ {
		if !fn(Handle(i), p.at(i)) {
			return
		}
	}
}

func (p *pool[T]) EachAllocated(fn func(elem *T)) {
	for _, chunk := range p.chunks {
		for i := range chunk {
			fn(&chunk[i])
		}
	}
}

func (p *pool[T]) Reset() {
	p.used = 0
}

func (p *pool[T]) Destroy(free func(elem *T)) {
	if free != nil {
		p.EachAllocated(free)
	}
	p.chunks = nil
	p.used = 0
}

// at returns the element at flat index i. The caller guarantees i < Cap().
func (p *pool[T]) at(i int) *T {
	return &p.chunks[i/p.chunkLen][i%p.chunkLen]
}
