// annotations.go defines the annotation types, argument constants, and parser for the
// stroke shader pre-processor. Annotations are single-line WGSL comments prefixed with
// @gp: that drive struct injection, uniform declaration, and binding role registration.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a WGSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@gp:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct definition
	// into the shader at the annotation site. It produces no declaration.
	//
	// Syntax: //@gp:include <struct_type>
	//
	// Example: //@gp:include material
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a uniform @group/@binding declaration of a
	// registered struct type and records it in the declarations list.
	//
	// Syntax: //@gp:group <group> <binding> <address_space> <var_name> <struct_type>
	//
	// Example: //@gp:group 0 1 storage_uniform gp_materials material
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider records the role of a hand-written binding declared directly
	// below the annotation (textures, samplers, raw arrays). It produces no WGSL.
	//
	// Syntax:
	//   //@gp:provider <group> <binding> <provider_identity>
	//   //@gp:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Example: //@gp:provider 1 0 textures fill_texture
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation represents a single parsed annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed (include, group, or provider).
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:  [0] = struct type key
	//   - group:    [0] = address space, [1] = var name, [2] = struct type key
	//   - provider: [0] = provider identity, [1] = binding role (optional)
	Args []AnnotationArg

	// Line is the 1-based line number in the original WGSL source.
	Line int

	// Group is the @group index for group and provider annotations. Nil for include annotations.
	Group *int

	// Binding is the @binding index for group and provider annotations. Nil for include annotations.
	Binding *int
}

// AnnotationArg is a typed string constant used as an argument in annotations.
type AnnotationArg string

// Struct type arguments. Each maps to a Go GPU type with an embedded .wgsl asset file.
const (
	// AnnotationArgCamera identifies the CameraUniform struct.
	// Source: engine/camera/assets/camera_uniform.wgsl
	AnnotationArgCamera AnnotationArg = "camera"

	// AnnotationArgMaterial identifies the GpMaterialBlock struct of one material pool.
	// Source: engine/renderer/material/assets/gp_material.wgsl
	AnnotationArgMaterial AnnotationArg = "material"

	// AnnotationArgLight identifies the GpLightBlock struct of one light pool.
	// Source: engine/light/assets/gp_light.wgsl
	AnnotationArgLight AnnotationArg = "light"
)

// Address space arguments.
const (
	// annotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"
)

// Provider identity arguments. These name the bind group a binding is filled from when a
// pass group is encoded.
const (
	// AnnotationArgView identifies the per-object uniform group: view, material and light pools.
	AnnotationArgView AnnotationArg = "view"

	// AnnotationArgTextures identifies the per-group texture and sampler bindings.
	AnnotationArgTextures AnnotationArg = "textures"

	// AnnotationArgParams identifies the per-group vec4 parameter block.
	AnnotationArgParams AnnotationArg = "params"
)

// Binding role arguments qualify the bindings of a textures provider.
const (
	AnnotationArgFillTexture   AnnotationArg = "fill_texture"
	AnnotationArgFillSampler   AnnotationArg = "fill_sampler"
	AnnotationArgStrokeTexture AnnotationArg = "stroke_texture"
	AnnotationArgStrokeSampler AnnotationArg = "stroke_sampler"
	AnnotationArgColorTexture  AnnotationArg = "color_texture"
	AnnotationArgColorSampler  AnnotationArg = "color_sampler"
	AnnotationArgRevealTexture AnnotationArg = "reveal_texture"
	AnnotationArgRevealSampler AnnotationArg = "reveal_sampler"
	AnnotationArgMaskTexture   AnnotationArg = "mask_texture"
	AnnotationArgMaskSampler   AnnotationArg = "mask_sampler"
)

// validStructTypes lists all AnnotationArg values that are accepted as struct type
// arguments in include and group annotations.
var validStructTypes = []AnnotationArg{
	AnnotationArgCamera,
	AnnotationArgMaterial,
	AnnotationArgLight,
}

// validAddressSpaces lists all AnnotationArg values that are accepted as address
// space arguments in group annotations.
var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
}

// validProviderIdentities lists all AnnotationArg values that are accepted as
// provider identity arguments in provider annotations.
var validProviderIdentities = []AnnotationArg{
	AnnotationArgView,
	AnnotationArgTextures,
	AnnotationArgParams,
}

// validBindingRoles lists all AnnotationArg values that are accepted as binding
// role qualifiers in provider annotations.
var validBindingRoles = []AnnotationArg{
	AnnotationArgFillTexture,
	AnnotationArgFillSampler,
	AnnotationArgStrokeTexture,
	AnnotationArgStrokeSampler,
	AnnotationArgColorTexture,
	AnnotationArgColorSampler,
	AnnotationArgRevealTexture,
	AnnotationArgRevealSampler,
	AnnotationArgMaskTexture,
	AnnotationArgMaskSampler,
}

// parseAnnotation attempts to parse a single line of WGSL source as an annotation.
// Returns nil with no error for lines that do not contain the annotation prefix.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(trimmed, "//")
	if !ok {
		return nil, nil
	}
	after, ok := strings.CutPrefix(strings.TrimSpace(rest), annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @gp annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @gp include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @gp include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @gp group annotation requires exactly five arguments (group, binding, address space, var name, struct type)", lineNum)
		}
		group, binding, err := parseSlot(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @gp group annotation", lineNum, args[3])
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[5])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @gp group annotation", lineNum, args[5])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil
	case string(AnnotationTypeProvider):
		if len(args) < 4 || len(args) > 5 {
			return nil, fmt.Errorf("line %d: @gp provider annotation requires three or four arguments (group, binding, provider identity[, binding role])", lineNum)
		}
		group, binding, err := parseSlot(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q in @gp provider annotation", lineNum, args[3])
		}
		providerArgs := []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !slices.Contains(validBindingRoles, AnnotationArg(args[4])) {
				return nil, fmt.Errorf("line %d: unknown binding role %q in @gp provider annotation", lineNum, args[4])
			}
			providerArgs = append(providerArgs, AnnotationArg(args[4]))
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    providerArgs,
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @gp annotation type %q", lineNum, args[0])
	}
}

func parseSlot(groupArg, bindingArg string, lineNum int) (int, int, error) {
	group, err := strconv.Atoi(groupArg)
	if err != nil || group < 0 {
		return 0, 0, fmt.Errorf("line %d: invalid group number %q", lineNum, groupArg)
	}
	binding, err := strconv.Atoi(bindingArg)
	if err != nil || binding < 0 {
		return 0, 0, fmt.Errorf("line %d: invalid binding number %q", lineNum, bindingArg)
	}
	return group, binding, nil
}
