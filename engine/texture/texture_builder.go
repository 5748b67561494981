package texture

import "golang.org/x/image/draw"

// DefaultMaxSize is the longest texture edge kept by Load and Decode unless WithMaxSize says otherwise.
const DefaultMaxSize = 2048

type loadConfig struct {
	maxSize int
	scaler  draw.Scaler
}

// LoadOption configures image decoding.
type LoadOption func(*loadConfig)

// WithMaxSize caps the longest edge of decoded images. Zero keeps the source size.
//
// Parameters:
//   - size: the longest allowed edge in texels
//
// Returns:
//   - LoadOption: the option
func WithMaxSize(size int) LoadOption {
	return func(c *loadConfig) {
		c.maxSize = size
	}
}

// WithScaler selects the filter used when an image is scaled down. draw.BiLinear by default.
//
// Parameters:
//   - scaler: the scaler, e.g. draw.NearestNeighbor for pixel art
//
// Returns:
//   - LoadOption: the option
func WithScaler(scaler draw.Scaler) LoadOption {
	return func(c *loadConfig) {
		if scaler != nil {
			c.scaler = scaler
		}
	}
}
