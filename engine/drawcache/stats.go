package drawcache

import "fmt"

// PoolStats is the occupancy of a view layer's block pools.
type PoolStats struct {
	Objects, ObjectsCap     int
	Layers, LayersCap       int
	Vfx, VfxCap             int
	Materials, MaterialsCap int
	Lights, LightsCap       int
	Passes, PassesCap       int
}

// FrameStats counts what the last frame built and what it had to leave out.
type FrameStats struct {
	Frame int

	Objects       int
	Layers        int
	Strokes       int
	Effects       int
	MaterialPools int

	// LightsUsed is the number of records in the global light pool; it never exceeds
	// light.LightBufferLen.
	LightsUsed int

	// LightsDropped counts scene lights discarded because the global pool was full.
	LightsDropped int

	// VfxSkipped counts effect passes whose target was not allocated at finish time.
	VfxSkipped int

	// Passes and DrawCalls count what DrawScene submitted.
	Passes    int
	DrawCalls int

	Pools PoolStats
}

// String formats the stats as one log line.
func (s FrameStats) String() string {
	return fmt.Sprintf("frame %d | objects %d | layers %d | strokes %d | fx %d (skipped %d) | material pools %d | lights %d (dropped %d) | passes %d | draws %d",
		s.Frame, s.Objects, s.Layers, s.Strokes, s.Effects, s.VfxSkipped, s.MaterialPools, s.LightsUsed, s.LightsDropped, s.Passes, s.DrawCalls)
}
