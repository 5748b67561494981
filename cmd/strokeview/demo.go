package main

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/camera"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/geometry"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/light"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/scene"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/texture"
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// uploader is the part of renderer.Renderer the demo scene needs.
type uploader interface {
	InitVertexBuffer(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error
	InitTexture(label string, width, height uint32, pixels []byte) (*wgpu.TextureView, error)
}

var (
	_ uploader         = renderer.Renderer(nil)
	_ texture.Uploader = uploader(nil)
)

// buildDemoScene creates three stroke objects exercising masks, layer blending, fills,
// textures, effects and lights. The notes object is textured with paper, or a checkerboard
// when paper is nil.
func buildDemoScene(r uploader, aspect float32, paper *texture.Image) (scene.Scene, error) {
	cam := camera.NewCamera(camera.WithPosition(0, 0, 8), camera.WithAspect(aspect))

	if paper == nil {
		paper = texture.Checker("Checker", 8)
	}
	tex, err := paper.Upload(r)
	if err != nil {
		return nil, err
	}

	background, err := newBackground(r)
	if err != nil {
		return nil, err
	}
	character, err := newCharacter(r)
	if err != nil {
		return nil, err
	}
	notes, err := newNotes(r, tex)
	if err != nil {
		return nil, err
	}

	s := scene.NewScene("Demo", cam,
		scene.WithObjects(background, character, notes),
		scene.WithWorldColor(0.2, 0.2, 0.25),
		scene.WithSceneLights(
			light.NewLight(light.LightTypeSun, light.WithDirection(-0.3, -0.5, -1), light.WithEnergy(2)),
			light.NewLight(light.LightTypePoint, light.WithPosition(2, 2, 2), light.WithColor(1, 0.8, 0.6), light.WithEnergy(40)),
		),
	)
	s.SetActiveObject(character.ID())
	return s, nil
}

func newBackground(r uploader) (scene.StrokeObject, error) {
	b := geometry.NewBuilder(geometry.WithThickness(0.08))
	sky := b.Stroke(0, rect(-4, -2.5, 4, 2.5), true)
	horizon := b.Stroke(1, line(mgl32.Vec3{-4, -0.5, 0}, mgl32.Vec3{4, -0.5, 0}, 16), false)

	geom, lo, hi, err := upload(r, "Background", b)
	if err != nil {
		return nil, err
	}
	layer := scene.NewLayer("Backdrop", sky, horizon)
	return scene.NewStrokeObject(
		scene.WithName("Background"),
		scene.WithPosition(0, 0, -2),
		scene.WithBounds(lo, hi),
		scene.WithGeometry(geom),
		scene.WithLayers(layer),
		scene.WithLights(false),
		scene.WithMaterials(
			material.NewMaterial(
				material.WithName("Sky"),
				material.WithoutStroke(),
				material.WithGradientFill(material.GradientLinear, [4]float32{0.3, 0.5, 0.9, 1}, [4]float32{0.9, 0.8, 0.7, 1}, 1),
			),
			material.NewMaterial(material.WithName("Horizon"), material.WithSolidStroke([4]float32{0.1, 0.1, 0.2, 1})),
		),
	), nil
}

func newCharacter(r uploader) (scene.StrokeObject, error) {
	b := geometry.NewBuilder(geometry.WithThickness(0.06))
	head := b.Stroke(0, circle(mgl32.Vec3{0, 0.5, 0}, 1, 32), true)
	ink := []scene.Stroke{
		b.Stroke(1, line(mgl32.Vec3{-1.5, 0.2, 0}, mgl32.Vec3{1.5, 0.9, 0}, 24), false),
		b.Stroke(1, line(mgl32.Vec3{-1.5, 0.8, 0}, mgl32.Vec3{1.5, 0.1, 0}, 24), false),
	}
	body := b.Stroke(1, line(mgl32.Vec3{0, -0.5, 0}, mgl32.Vec3{0, -2, 0}, 8), false)
	highlight := b.Stroke(2, circle(mgl32.Vec3{0.3, 0.8, 0}, 0.3, 16), true)
	onion := b.Stroke(1, line(mgl32.Vec3{-0.2, -0.5, 0}, mgl32.Vec3{-0.2, -2, 0}, 8), false)

	geom, lo, hi, err := upload(r, "Character", b)
	if err != nil {
		return nil, err
	}

	mask := scene.NewLayer("Head Mask", head)
	mask.IsMask = true
	hatching := scene.NewLayer("Hatching", ink...)
	hatching.UseMask = true
	hatching.Tint = [4]float32{0.8, 0.1, 0.1, 0.4}
	lines := scene.NewLayer("Body", body)
	lines.Onion = []scene.Stroke{onion}
	shine := scene.NewLayer("Shine", highlight)
	shine.Blend = scene.BlendAdd
	shine.Opacity = 0.7

	glow := scene.NewEffect(scene.EffectGlow)
	glow.Color = [4]float32{1, 0.9, 0.3, 1}
	shadow := scene.NewEffect(scene.EffectShadow)
	shadow.Offset = [2]float32{6, -6}

	return scene.NewStrokeObject(
		scene.WithName("Character"),
		scene.WithBounds(lo, hi),
		scene.WithGeometry(geom),
		scene.WithLayers(mask, hatching, lines, shine),
		scene.WithActiveLayer(2),
		scene.WithMaterials(
			material.NewMaterial(material.WithName("Skin"), material.WithSolidStroke([4]float32{0.2, 0.1, 0.05, 1}), material.WithSolidFill([4]float32{0.95, 0.8, 0.65, 1})),
			material.NewMaterial(material.WithName("Ink"), material.WithSolidStroke([4]float32{0.05, 0.05, 0.05, 1})),
			material.NewMaterial(material.WithName("Shine"), material.WithoutStroke(), material.WithSolidFill([4]float32{1, 1, 1, 0.6})),
		),
		scene.WithEffects(glow, shadow),
	), nil
}

func newNotes(r uploader, tex *material.Texture) (scene.StrokeObject, error) {
	b := geometry.NewBuilder(geometry.WithThickness(0.15), geometry.WithVertexColor([4]float32{0.2, 0.4, 1, 0.3}))
	var strokes []scene.Stroke
	for i := range 3 {
		y := 1.5 - float32(i)*0.6
		strokes = append(strokes, b.Stroke(0, wave(mgl32.Vec3{2, y, 0}, 1.5, 0.1, 24), false))
	}
	card := b.Stroke(1, rect(1.8, -0.2, 3.8, 2), true)

	geom, lo, hi, err := upload(r, "Notes", b)
	if err != nil {
		return nil, err
	}

	paper := scene.NewLayer("Paper", card)
	paper.Blend = scene.BlendMultiply
	writing := scene.NewLayer("Writing", strokes...)
	writing.ThicknessOffset = 2

	blur := scene.NewEffect(scene.EffectBlur)
	blur.ShowRender = false
	waveFx := scene.NewEffect(scene.EffectWave)

	return scene.NewStrokeObject(
		scene.WithName("Notes"),
		scene.WithPosition(0, 0, 1),
		scene.WithRotation(0, -0.3, 0),
		scene.WithBounds(lo, hi),
		scene.WithGeometry(geom),
		scene.WithLayers(paper, writing),
		scene.WithDrawMode3D(true),
		scene.WithInFront(true),
		scene.WithMaterials(
			material.NewMaterial(
				material.WithName("Marker"),
				material.WithTexturedStroke(tex, [4]float32{0.1, 0.2, 0.8, 1}, 0.5),
				material.WithStrokeMode(material.StrokeModeLine, material.AlignmentFollowPath),
			),
			material.NewMaterial(
				material.WithName("Card"),
				material.WithoutStroke(),
				material.WithTexturedFill(tex, [4]float32{1, 1, 0.9, 1}, 0.2),
				material.WithFillTransform([2]float32{0, 0}, [2]float32{4, 4}, 0),
			),
		),
		scene.WithEffects(blur, waveFx),
	), nil
}

// upload sends the builder's vertices to a new geometry provider.
func upload(r uploader, label string, b *geometry.Builder) (bind_group_provider.BindGroupProvider, mgl32.Vec3, mgl32.Vec3, error) {
	geom := bind_group_provider.NewBindGroupProvider(label + " Geometry")
	if err := r.InitVertexBuffer(geom, b.Bytes(), b.Len()); err != nil {
		return nil, mgl32.Vec3{}, mgl32.Vec3{}, fmt.Errorf("failed to upload %s geometry: %w", label, err)
	}
	lo, hi := b.Bounds()
	return geom, lo, hi, nil
}

func line(from, to mgl32.Vec3, n int) []geometry.Point {
	pts := make([]geometry.Point, n)
	for i := range pts {
		t := float32(i) / float32(n-1)
		// taper both ends
		pressure := 1 - math32.Abs(2*t-1)*0.6
		pts[i] = geometry.Point{Position: from.Add(to.Sub(from).Mul(t)), Pressure: pressure}
	}
	return pts
}

func circle(center mgl32.Vec3, radius float32, n int) []geometry.Point {
	pts := make([]geometry.Point, n+1)
	for i := range pts {
		a := 2 * math32.Pi * float32(i) / float32(n)
		pts[i] = geometry.Point{Position: center.Add(mgl32.Vec3{radius * math32.Cos(a), radius * math32.Sin(a), 0}), Pressure: 1}
	}
	return pts
}

func rect(x0, y0, x1, y1 float32) []geometry.Point {
	return []geometry.Point{
		{Position: mgl32.Vec3{x0, y0, 0}, Pressure: 1},
		{Position: mgl32.Vec3{x1, y0, 0}, Pressure: 1},
		{Position: mgl32.Vec3{x1, y1, 0}, Pressure: 1},
		{Position: mgl32.Vec3{x0, y1, 0}, Pressure: 1},
		{Position: mgl32.Vec3{x0, y0, 0}, Pressure: 1},
	}
}

func wave(start mgl32.Vec3, length, amplitude float32, n int) []geometry.Point {
	pts := make([]geometry.Point, n)
	for i := range pts {
		t := float32(i) / float32(n-1)
		pts[i] = geometry.Point{
			Position: start.Add(mgl32.Vec3{t * length, amplitude * math32.Sin(t*6*math32.Pi), 0}),
			Pressure: 1,
		}
	}
	return pts
}
