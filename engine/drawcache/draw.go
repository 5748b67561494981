package drawcache

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/pass"
)

// draw submits the finished frame: the main target is cleared, every object is drawn into it
// in order and the result is composited onto the scene. Nothing is submitted when the frame
// has no objects.
func (e *engine) draw(pd *PrivateData) error {
	if len(pd.drawOrder) == 0 {
		return nil
	}

	main := pd.targets.Resolve(pass.TargetMain)
	if main == nil {
		return fmt.Errorf("drawcache: main target missing: %w", ErrNotInitialized)
	}

	if pd.clearPass == nil {
		pd.clearPass = pd.newPass("GPencil Clear", 0)
	}
	if err := e.execute(pd, pd.clearPass, main, renderer.ClearOp{Color: true, DepthStencil: true, DepthValue: 1}); err != nil {
		return err
	}

	for _, tob := range pd.drawOrder {
		if err := e.drawObject(pd, tob, main); err != nil {
			return err
		}
	}

	if scene := pd.targets.Resolve(pass.TargetScene); scene != nil {
		if err := e.execute(pd, pd.compositePass, scene, renderer.ClearOp{}); err != nil {
			return err
		}
	}
	return nil
}

// drawObject draws one object. Objects with effects draw into the object target, which the
// effect chain composes into the main target; other objects draw straight into main.
func (e *engine) drawObject(pd *PrivateData, tob *TObject, main *renderer.Framebuffer) error {
	fb := main
	clearOp := renderer.ClearOp{DepthStencil: true}
	if tob.IsDrawMode3D {
		clearOp.DepthValue = 1
	}
	if len(tob.Vfx) > 0 {
		if obj := pd.targets.Resolve(pass.TargetObject); obj != nil {
			fb = obj
			clearOp.Color = true
		}
	}
	if pd.clearPass == nil {
		pd.clearPass = pd.newPass("GPencil Clear", 0)
	}
	if err := e.execute(pd, pd.clearPass, fb, clearOp); err != nil {
		return err
	}

	layerFB := pd.targets.Resolve(pass.TargetLayer)
	maskedFB := pd.targets.Resolve(pass.TargetMasked)
	for _, tl := range tob.Layers {
		if tl.IsMasked && tl.DoMaskedClear && maskedFB != nil {
			if err := e.drawMask(pd, tob, maskedFB); err != nil {
				return err
			}
		}

		if tl.BlendPass != nil && layerFB != nil {
			if err := e.execute(pd, tl.GeomPass, layerFB, renderer.ClearOp{Color: true}); err != nil {
				return err
			}
			if err := e.execute(pd, tl.BlendPass, fb, renderer.ClearOp{}); err != nil {
				return err
			}
			continue
		}
		if err := e.execute(pd, tl.GeomPass, fb, renderer.ClearOp{}); err != nil {
			return err
		}
	}

	for _, vfx := range tob.Vfx {
		if vfx.Resolved == nil {
			continue
		}
		if err := e.execute(pd, vfx.Pass, vfx.Resolved, renderer.ClearOp{}); err != nil {
			return err
		}
	}

	if scene := pd.targets.Resolve(pass.TargetScene); scene != nil && tob.MergePass != nil {
		if err := e.execute(pd, tob.MergePass, scene, renderer.ClearOp{}); err != nil {
			return err
		}
	}
	return nil
}

// drawMask rebuilds the masked target from every mask layer of the object.
func (e *engine) drawMask(pd *PrivateData, tob *TObject, masked *renderer.Framebuffer) error {
	if err := e.execute(pd, pd.clearPass, masked, renderer.ClearOp{Color: true}); err != nil {
		return err
	}
	for _, tl := range tob.Layers {
		if !tl.IsMask {
			continue
		}
		if err := e.execute(pd, tl.GeomPass, masked, renderer.ClearOp{}); err != nil {
			return err
		}
	}
	return nil
}

func (e *engine) execute(pd *PrivateData, p *pass.Pass, dst *renderer.Framebuffer, clear renderer.ClearOp) error {
	if p.IsEmpty() && clear.IsZero() {
		return nil
	}
	if err := e.backend.ExecutePass(e.shaders, p, dst, clear, pd.targets); err != nil {
		return fmt.Errorf("drawcache: %s into %s: %w", p.Name, dst.Tag, err)
	}
	pd.stats.Passes++
	pd.stats.DrawCalls += p.CallCount()
	return nil
}
