package drawcache

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/camera"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/light"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/memblock"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/pass"
)

const (
	materialBlockSize = material.MaterialBufferLen * material.GPUMaterialSize
	lightBlockSize    = light.LightBufferLen * light.GPULightSize
)

// SortObjects orders objects by ascending CameraZ, back to front. Objects at equal depth keep
// their insertion order.
//
// Parameters:
//   - objects: the objects to sort in place
func SortObjects(objects []*TObject) {
	slices.SortStableFunc(objects, func(a, b *TObject) int {
		return cmp.Compare(a.CameraZ, b.CameraZ)
	})
}

// uploadJob is one uniform block marshalled on the worker pool.
type uploadJob struct {
	ubo     bind_group_provider.BindGroupProvider
	marshal func(dst []byte) int
}

// finish sorts the frame's objects, uploads its uniform blocks, acquires the frame targets,
// resolves effect targets and builds the depth merge and composite passes. A frame without
// objects is left untouched.
func (e *engine) finish(pd *PrivateData) error {
	pd.finished = true
	pd.drawOrder = pd.drawOrder[:0]
	if len(pd.tobjects)+len(pd.sbufferTObjects)+len(pd.inFrontTObjects) == 0 {
		return nil
	}

	SortObjects(pd.tobjects)
	SortObjects(pd.inFrontTObjects)
	pd.drawOrder = append(pd.drawOrder, pd.tobjects...)
	pd.drawOrder = append(pd.drawOrder, pd.sbufferTObjects...)
	pd.drawOrder = append(pd.drawOrder, pd.inFrontTObjects...)

	if err := e.upload(pd); err != nil {
		return err
	}

	targets, err := e.backend.AcquireTargets(renderer.TargetRequest{
		Width:  pd.Settings.Width,
		Height: pd.Settings.Height,
		Layer:  pd.useLayerFB,
		Object: pd.useObjectFB,
		Masked: pd.useMaskFB,
		Signed: pd.useSignedFB,
	})
	if err != nil {
		return fmt.Errorf("drawcache: failed to acquire frame targets: %w", err)
	}
	pd.targets = targets

	for _, tob := range pd.drawOrder {
		for _, vfx := range tob.Vfx {
			vfx.Resolved = targets.Resolve(vfx.Target)
			if vfx.Resolved == nil {
				pd.stats.VfxSkipped++
			}
		}
		tob.MergePass = mergeDepthPass(pd, tob)
	}

	pd.compositePass = compositePass(pd)
	return nil
}

// mergeDepthPass builds the pass writing tob's stroke depth into the scene depth buffer on
// the quad spanned by its plane matrix.
func mergeDepthPass(pd *PrivateData, tob *TObject) *pass.Pass {
	p := pd.newPass("GPencil Merge Depth", pass.WriteDepth|pass.DepthLessEqual)
	grp := p.AddGroup(pass.ShaderDepthMerge)
	src := pass.TargetMain
	if len(tob.Vfx) > 0 {
		src = pass.TargetObject
	}
	grp.BindTarget("depthBuf", src, pass.AttachmentDepth)
	for c := 0; c < 4; c++ {
		grp.SetVec4(fmt.Sprintf("gpModelMatrix[%d]", c), tob.PlaneMat.Col(c))
	}
	grp.SetBool("strokeOrder3d", tob.IsDrawMode3D)
	grp.AddTriangles(2)
	return p
}

// compositePass builds the pass blending the main target over the scene: a multiply by the
// transmittance followed by an additive color pass.
func compositePass(pd *PrivateData) *pass.Pass {
	state := pass.WriteColor.WithBlend(pass.BlendMul)
	p := pd.newPass("GPencil Composite", state)
	grp := p.AddGroup(pass.ShaderComposite)
	grp.BindTarget("colorBuf", pass.TargetMain, pass.AttachmentColor)
	grp.BindTarget("revealBuf", pass.TargetMain, pass.AttachmentReveal)
	grp.SetBool("isFirstPass", true)
	grp.AddTriangles(1)

	sub := p.AddSubGroup(grp)
	sub.State = state.WithBlend(pass.BlendAddFull)
	sub.SetBool("isFirstPass", false)
	sub.AddTriangles(1)
	return p
}

// upload creates missing uniform buffers and writes the camera block, every material pool and
// the frame's light pools. Pools are marshalled in parallel on the worker pool; the writes are
// submitted to the renderer in one batch once every task has finished.
func (e *engine) upload(pd *PrivateData) error {
	data := pd.data

	if err := e.backend.InitUniformBuffer(data.view, camera.GPUCameraUniformSize); err != nil {
		return fmt.Errorf("drawcache: failed to create view uniform buffer: %w", err)
	}
	var view camera.GPUCameraUniform
	if pd.Camera != nil {
		view = pd.Camera.Uniform(pd.Settings.Width, pd.Settings.Height)
	}

	jobs := e.jobs[:0]
	var initErr error
	pd.materials.Each(func(p *material.Pool) {
		if initErr != nil {
			return
		}
		if err := e.backend.InitUniformBuffer(p.UBO(), materialBlockSize); err != nil {
			initErr = fmt.Errorf("drawcache: failed to create material uniform buffer: %w", err)
			return
		}
		jobs = append(jobs, uploadJob{ubo: p.UBO(), marshal: p.MarshalTo})
		pd.stats.MaterialPools++
	})
	if initErr != nil {
		return initErr
	}
	data.lights.Each(func(_ memblock.Handle, p *light.Pool) bool {
		if err := e.backend.InitUniformBuffer(p.UBO(), lightBlockSize); err != nil {
			initErr = fmt.Errorf("drawcache: failed to create light uniform buffer: %w", err)
			return false
		}
		jobs = append(jobs, uploadJob{ubo: p.UBO(), marshal: p.MarshalTo})
		return true
	})
	if initErr != nil {
		return initErr
	}
	e.jobs = jobs

	for len(data.staging) < len(jobs) {
		data.staging = append(data.staging, make([]byte, max(materialBlockSize, lightBlockSize)))
	}
	writes := pd.writes[:0]
	for range len(jobs) + 1 {
		writes = append(writes, bind_group_provider.BufferWrite{})
	}

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		dst := data.staging[i]
		e.workers.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				n := job.marshal(dst)
				writes[i] = bind_group_provider.BufferWrite{Provider: job.ubo, Binding: 0, Data: dst[:n]}
				return nil, nil
			},
		})
	}
	viewBuf := e.viewStaging[:]
	view.MarshalTo(viewBuf)
	writes[len(jobs)] = bind_group_provider.BufferWrite{Provider: data.view, Binding: 0, Data: viewBuf}
	wg.Wait()

	pd.writes = writes
	e.backend.WriteBuffers(writes)
	return nil
}
