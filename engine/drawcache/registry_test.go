package drawcache

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/memblock"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryEnsureIsIdempotent(t *testing.T) {
	r := NewRegistry(memblock.WithChunkLen(8))

	a := r.Ensure("View Layer")
	b := r.Ensure("View Layer")
	c := r.Ensure("Background")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, r.Len())
	assert.Same(t, c, r.Lookup("Background"))
	assert.Nil(t, r.Lookup("Missing"))
	assert.Equal(t, "View Layer Objects", a.objects.Label())
}

func TestRegistryFree(t *testing.T) {
	r := NewRegistry()
	r.Ensure("View Layer")

	assert.True(t, r.Free("View Layer"))
	assert.False(t, r.Free("View Layer"))
	assert.Zero(t, r.Len())
	assert.Nil(t, r.Lookup("View Layer"))
}

func TestViewLayersKeepSeparatePools(t *testing.T) {
	b := newFakeBackend()
	reg := NewRegistry()
	e := newTestEngine(b, WithRegistry(reg))
	defer e.Close()

	ob := scene.NewStrokeObject(scene.WithLayers(scene.NewLayer("L", stroke(0, 0, 3))))
	s := newTestScene(ob)

	require.NoError(t, runFrame(e, s))

	e.EngineInit("Background")
	require.NoError(t, e.CacheInit(s))
	require.NoError(t, e.CacheFinish())
	require.NoError(t, e.DrawScene())

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, 1, reg.Lookup("View Layer").PoolStats().Objects)
	assert.Zero(t, reg.Lookup("Background").PoolStats().Objects)
}

func TestCacheInitRewindsPools(t *testing.T) {
	reg := NewRegistry()
	e := newTestEngine(newFakeBackend(), WithRegistry(reg))
	defer e.Close()

	ob := scene.NewStrokeObject(scene.WithLayers(scene.NewLayer("L", stroke(0, 0, 3))))
	require.NoError(t, runFrame(e, newTestScene(ob)))
	require.Equal(t, 1, e.Stats().Pools.Objects)

	require.NoError(t, e.CacheInit(newTestScene()))
	assert.Empty(t, e.Frame().Objects())
	assert.Zero(t, e.Frame().Stats().Objects)

	stats := reg.Lookup("View Layer").PoolStats()
	assert.Zero(t, stats.Objects)
	assert.Positive(t, stats.ObjectsCap, "storage is kept")
}

func TestFrameStatsString(t *testing.T) {
	s := FrameStats{Frame: 3, Objects: 2, LightsUsed: 128, LightsDropped: 5, VfxSkipped: 1}
	out := s.String()
	assert.True(t, strings.HasPrefix(out, "frame 3"))
	assert.Contains(t, out, "lights 128 (dropped 5)")
	assert.Contains(t, out, "skipped 1")
}
