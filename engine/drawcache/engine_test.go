package drawcache

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/camera"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/light"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnginePanicsWithoutBackend(t *testing.T) {
	assert.Panics(t, func() { NewEngine(nil, nil) })
}

func TestLifecycleOrderIsEnforced(t *testing.T) {
	b := newFakeBackend()
	e := newTestEngine(b)
	defer e.Close()
	s := newTestScene()

	assert.ErrorIs(t, e.CacheInit(s), ErrNotInitialized)
	assert.ErrorIs(t, e.CachePopulate(scene.NewStrokeObject()), ErrNotInitialized)
	assert.ErrorIs(t, e.CacheFinish(), ErrNotInitialized)
	assert.ErrorIs(t, e.DrawScene(), ErrNotInitialized)

	e.EngineInit("View Layer")
	require.NoError(t, e.CacheInit(s))
	assert.ErrorIs(t, e.DrawScene(), ErrNotInitialized, "draw before finish")

	require.NoError(t, e.CacheFinish())
	assert.ErrorIs(t, e.CachePopulate(scene.NewStrokeObject()), ErrNotInitialized, "populate after finish")
	require.NoError(t, e.CacheFinish(), "finishing twice is harmless")
	require.NoError(t, e.DrawScene())
}

func TestEmptySceneSubmitsNothing(t *testing.T) {
	b := newFakeBackend()
	e := newTestEngine(b)
	defer e.Close()

	require.NoError(t, runFrame(e, newTestScene()))

	pd := e.Frame()
	require.NotNil(t, pd)
	assert.Empty(t, pd.Objects())
	assert.Nil(t, pd.Targets())
	assert.Nil(t, pd.CompositePass())
	assert.Empty(t, b.requests)
	assert.Empty(t, b.passes)
	assert.Empty(t, b.writes)
	assert.Zero(t, e.Stats().Passes)
}

func TestDisabledObjectsAreIgnored(t *testing.T) {
	b := newFakeBackend()
	e := newTestEngine(b)
	defer e.Close()

	ob := scene.NewStrokeObject(
		scene.WithEnabled(false),
		scene.WithLayers(scene.NewLayer("Lines", stroke(0, 0, 6))),
	)
	require.NoError(t, runFrame(e, newTestScene(ob)))
	assert.Empty(t, e.Frame().Objects())
	assert.Empty(t, b.passes)
}

func TestObjectsAreSortedStablyByDepth(t *testing.T) {
	b := newFakeBackend()
	e := newTestEngine(b)
	defer e.Close()

	zs := []float32{-1, -5, -1, -5, 3, -1}
	objects := make([]scene.StrokeObject, len(zs))
	for i, z := range zs {
		objects[i] = scene.NewStrokeObject(
			scene.WithID(uint64(i+1)),
			scene.WithPosition(0, 0, z),
		)
	}
	require.NoError(t, runFrame(e, newTestScene(objects...)))

	var got []uint64
	var depth []float32
	for _, tob := range e.Frame().Objects() {
		got = append(got, tob.Source.ID())
		depth = append(depth, tob.CameraZ)
	}
	assert.Equal(t, []uint64{2, 4, 1, 3, 6, 5}, got, "equal depths keep insertion order")
	assert.IsNonDecreasing(t, depth)
}

func TestSortObjectsIsStable(t *testing.T) {
	objects := []*TObject{
		{CameraZ: 2, seq: 0},
		{CameraZ: 1, seq: 1},
		{CameraZ: 2, seq: 2},
		{CameraZ: 1, seq: 3},
		{CameraZ: 0, seq: 4},
	}
	SortObjects(objects)

	seqs := make([]int, len(objects))
	for i, tob := range objects {
		seqs[i] = tob.seq
	}
	assert.Equal(t, []int{4, 1, 3, 0, 2}, seqs)
}

func TestStrokeBufferAndInFrontDrawLast(t *testing.T) {
	b := newFakeBackend()
	e := newTestEngine(b)
	defer e.Close()

	front := scene.NewStrokeObject(scene.WithID(1), scene.WithPosition(0, 0, -9), scene.WithInFront(true))
	near := scene.NewStrokeObject(scene.WithID(2), scene.WithPosition(0, 0, 5))
	far := scene.NewStrokeObject(scene.WithID(3), scene.WithPosition(0, 0, -5))
	buffer := scene.NewStrokeObject(scene.WithID(4), scene.WithPosition(0, 0, -20))

	s := newTestScene(front, near, far)
	s.SetStrokeBuffer(buffer)

	e.EngineInit("View Layer")
	require.NoError(t, e.CacheInit(s))
	for _, ob := range []scene.StrokeObject{front, near, far, buffer} {
		require.NoError(t, e.CachePopulate(ob))
	}
	require.NoError(t, e.CacheFinish())

	var got []uint64
	for _, tob := range e.Frame().Objects() {
		got = append(got, tob.Source.ID())
	}
	assert.Equal(t, []uint64{3, 2, 4, 1}, got)
	assert.True(t, e.Frame().Objects()[3].InFront)
}

func TestSimpleObjectDrawOrder(t *testing.T) {
	b := newFakeBackend()
	e := newTestEngine(b)
	defer e.Close()

	ob := scene.NewStrokeObject(scene.WithLayers(scene.NewLayer("Lines", stroke(0, 0, 6))))
	require.NoError(t, runFrame(e, newTestScene(ob)))

	require.Len(t, b.requests, 1)
	assert.Equal(t, renderer.TargetRequest{}, b.requests[0], "an opaque regular layer needs no extra targets")

	assert.Equal(t, []string{
		"GPencil Clear",
		"GPencil Clear",
		"GPencil Layer",
		"GPencil Merge Depth",
		"GPencil Composite",
	}, b.names())
	assert.Equal(t, renderer.ClearOp{Color: true, DepthStencil: true, DepthValue: 1}, b.passes[0].clear)
	assert.Equal(t, pass.TargetMain, b.passes[0].dst)
	assert.Equal(t, renderer.ClearOp{DepthStencil: true}, b.passes[1].clear, "2D objects clear depth to zero")
	assert.Equal(t, pass.TargetMain, b.passes[2].dst)
	assert.Equal(t, 1, b.passes[2].calls)
	assert.Equal(t, pass.TargetScene, b.passes[3].dst)
	assert.Equal(t, pass.TargetScene, b.passes[4].dst)

	stats := e.Stats()
	assert.Equal(t, 1, stats.Objects)
	assert.Equal(t, 1, stats.Layers)
	assert.Equal(t, 1, stats.Strokes)
	assert.Equal(t, 5, stats.Passes)
	assert.Equal(t, 4, stats.DrawCalls)
}

func TestDrawMode3DClearsDepthToFar(t *testing.T) {
	b := newFakeBackend()
	e := newTestEngine(b)
	defer e.Close()

	ob := scene.NewStrokeObject(
		scene.WithDrawMode3D(true),
		scene.WithLayers(scene.NewLayer("Lines", stroke(0, 0, 6))),
	)
	require.NoError(t, runFrame(e, newTestScene(ob)))

	require.GreaterOrEqual(t, len(b.passes), 2)
	assert.Equal(t, renderer.ClearOp{DepthStencil: true, DepthValue: 1}, b.passes[1].clear)

	tl := e.Frame().Objects()[0].Layers[0]
	assert.True(t, tl.GeomPass.State.Has(pass.DepthLessEqual|pass.WriteDepth))
	assert.False(t, tl.GeomPass.State.Has(pass.DepthGreater))
}

func TestMaterialPoolsChainThroughPopulate(t *testing.T) {
	b := newFakeBackend()
	e := newTestEngine(b)
	defer e.Close()

	materials := make([]material.Material, 300)
	for i := range materials {
		materials[i] = material.NewMaterial()
	}
	ob := scene.NewStrokeObject(scene.WithMaterials(materials...))

	e.EngineInit("View Layer")
	require.NoError(t, e.CacheInit(newTestScene(ob)))
	require.NoError(t, e.CachePopulate(ob))

	tob := e.Frame().Objects()[0]
	require.NotNil(t, tob.MaterialHead)
	assert.Equal(t, 0, tob.MaterialOfs)

	var used []int
	for p := tob.MaterialHead; p != nil; p = p.Next() {
		used = append(used, p.Used())
	}
	assert.Equal(t, []int{128, 128, 44}, used)

	pool, slot := material.Locate(tob.MaterialHead, 250)
	assert.Same(t, tob.MaterialHead.Next(), pool)
	assert.Equal(t, 122, slot)

	require.NoError(t, e.CacheFinish())
	assert.Equal(t, 3, e.Frame().Stats().MaterialPools)
}

func TestLightsBeyondCapacityAreDropped(t *testing.T) {
	b := newFakeBackend()
	e := newTestEngine(b)
	defer e.Close()

	lights := make([]light.Light, 130)
	for i := range lights {
		lights[i] = light.NewLight(light.LightTypePoint, light.WithPosition(float32(i), 0, 0))
	}
	s := scene.NewScene("Test", camera.NewCamera(), scene.WithSceneLights(lights...))

	e.EngineInit("View Layer")
	require.NoError(t, e.CacheInit(s))

	pd := e.Frame()
	assert.Equal(t, light.LightBufferLen, pd.GlobalLights.Used())
	// the world ambient takes the first record
	assert.Equal(t, 3, pd.GlobalLights.Dropped())
	assert.Equal(t, light.LightBufferLen, pd.Stats().LightsUsed)
	assert.Equal(t, 3, pd.Stats().LightsDropped)
	assert.Equal(t, 1, pd.ShadelessLights.Used())
}

func TestLightingDisabledKeepsOnlyAmbient(t *testing.T) {
	b := newFakeBackend()
	settings := DefaultFrameSettings()
	settings.UseLighting = false
	e := newTestEngine(b, WithSettings(settings))
	defer e.Close()

	s := scene.NewScene("Test", camera.NewCamera(),
		scene.WithSceneLights(light.NewLight(light.LightTypeSun)),
		scene.WithWorldColor(0.2, 0.2, 0.2),
	)
	e.EngineInit("View Layer")
	require.NoError(t, e.CacheInit(s))

	pd := e.Frame()
	assert.Equal(t, 1, pd.GlobalLights.Used())
	assert.Equal(t, [3]float32{0.2, 0.2, 0.2}, pd.GlobalLights.Records[0].Color)
	assert.Same(t, pd.ShadelessLights, pd.LightPoolCreate(scene.NewStrokeObject()))
}

func TestLightPoolCreate(t *testing.T) {
	b := newFakeBackend()
	e := newTestEngine(b)
	defer e.Close()

	e.EngineInit("View Layer")
	require.NoError(t, e.CacheInit(newTestScene()))
	pd := e.Frame()

	assert.Same(t, pd.GlobalLights, pd.LightPoolCreate(scene.NewStrokeObject()))
	assert.Same(t, pd.ShadelessLights, pd.LightPoolCreate(scene.NewStrokeObject(scene.WithLights(false))))
	assert.Equal(t, [3]float32{1, 1, 1}, pd.ShadelessLights.Records[0].Color)
}

func TestUploadWritesEveryBlockOnce(t *testing.T) {
	b := newFakeBackend()
	e := newTestEngine(b)
	defer e.Close()

	a := scene.NewStrokeObject(scene.WithMaterials(material.NewMaterial(), material.NewMaterial()))
	c := scene.NewStrokeObject(scene.WithMaterials(material.NewMaterial()))
	require.NoError(t, runFrame(e, newTestScene(a, c)))

	// one shared material pool, the global and shadeless light pools, and the view block
	require.Len(t, b.writes, 4)
	assert.Equal(t, 3*material.GPUMaterialSize, len(b.writes[0].Data))
	assert.Equal(t, 2*light.GPULightSize, len(b.writes[1].Data))
	assert.Equal(t, 2*light.GPULightSize, len(b.writes[2].Data))
	assert.Equal(t, camera.GPUCameraUniformSize, len(b.writes[3].Data))
	for _, w := range b.writes {
		assert.NotNil(t, w.Provider)
		assert.Zero(t, w.Binding)
	}
	assert.Equal(t, 4, b.inits)
}

func TestSteadyStateDoesNotGrowPools(t *testing.T) {
	b := newFakeBackend()
	e := newTestEngine(b)
	defer e.Close()

	var objects []scene.StrokeObject
	for i := 0; i < 10; i++ {
		objects = append(objects, scene.NewStrokeObject(
			scene.WithPosition(0, 0, float32(-i)),
			scene.WithLayers(
				scene.NewLayer("Lines", stroke(0, 0, 6)),
				&scene.Layer{Name: "Add", Opacity: 1, Blend: scene.BlendAdd, Strokes: []scene.Stroke{stroke(0, 6, 3)}},
			),
			scene.WithEffects(scene.NewEffect(scene.EffectBlur)),
		))
	}
	s := newTestScene(objects...)

	require.NoError(t, runFrame(e, s))
	first := e.Stats().Pools
	require.NoError(t, runFrame(e, s))
	second := e.Stats().Pools
	require.NoError(t, runFrame(e, s))
	third := e.Stats().Pools

	assert.Equal(t, first, second)
	assert.Equal(t, second, third)
	assert.Equal(t, 10, third.Objects)
	assert.Equal(t, 20, third.Layers)
}

func TestFreeViewLayerDropsData(t *testing.T) {
	b := newFakeBackend()
	reg := NewRegistry()
	e := newTestEngine(b, WithRegistry(reg))
	defer e.Close()

	require.NoError(t, runFrame(e, newTestScene(scene.NewStrokeObject())))
	require.Equal(t, 1, reg.Len())

	e.FreeViewLayer("View Layer")
	assert.Zero(t, reg.Len())
	assert.Nil(t, e.Frame())
	assert.ErrorIs(t, e.CacheInit(newTestScene()), ErrNotInitialized)
}

func TestExecuteErrorsAreWrapped(t *testing.T) {
	b := newFakeBackend()
	b.failExec = errors.New("device lost")
	e := newTestEngine(b)
	defer e.Close()

	ob := scene.NewStrokeObject(scene.WithLayers(scene.NewLayer("Lines", stroke(0, 0, 6))))
	err := runFrame(e, newTestScene(ob))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device lost")
	assert.Contains(t, err.Error(), "GPencil Clear")
}

func TestSettingsApplyOnNextFrame(t *testing.T) {
	b := newFakeBackend()
	e := newTestEngine(b)
	defer e.Close()

	settings := e.Settings()
	assert.True(t, settings.UseLighting)
	settings.SimplifyFill = true
	e.SetSettings(settings)

	e.EngineInit("View Layer")
	require.NoError(t, e.CacheInit(newTestScene()))
	assert.True(t, e.Frame().Settings.SimplifyFill)
}
