package memblock

// poolConfig collects construction settings shared by every element type.
type poolConfig struct {
	label    string
	chunkLen int
}

// PoolBuilderOption is a function that configures a Pool during construction.
type PoolBuilderOption func(*poolConfig)

// WithLabel is an option builder that sets the debug label of the pool.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - PoolBuilderOption: a function that applies the label option to a pool
func WithLabel(label string) PoolBuilderOption {
	return func(c *poolConfig) {
		c.label = label
	}
}

// WithChunkLen is an option builder that sets how many elements each backing chunk holds.
// Non-positive values fall back to DefaultChunkLen.
//
// Parameters:
//   - n: elements per chunk
//
// Returns:
//   - PoolBuilderOption: a function that applies the chunk length option to a pool
func WithChunkLen(n int) PoolBuilderOption {
	return func(c *poolConfig) {
		c.chunkLen = n
	}
}
