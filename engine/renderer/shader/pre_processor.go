// pre_processor.go implements the stroke shader pre-processor. It scans WGSL source for
// @gp: annotations, replaces them with injected struct sources or generated uniform
// declarations, and collects the binding declarations so the binding layout of a program
// can be checked against the layout the renderer builds.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-gpencil/engine/camera"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/light"
	"github.com/Carmen-Shannon/oxy-gpencil/engine/renderer/material"
)

// registryEntry pairs a WGSL struct source string (embedded from a .wgsl asset file)
// with the WGSL type name used in generated @group/@binding declarations.
type registryEntry struct {
	// Source is the raw WGSL struct definition text injected by include.
	Source string

	// Type is the WGSL type name emitted in group declarations.
	Type string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// structRegistry maps struct type argument keys to their embedded WGSL source and type name.
	structRegistry map[AnnotationArg]registryEntry

	// addressSpaceRegistry maps address space argument keys to WGSL var<> syntax strings.
	addressSpaceRegistry map[AnnotationArg]string

	// declarations accumulates group and provider annotations during a Process call.
	declarations []Annotation
}

// PreProcessor processes raw WGSL shader source containing @gp: annotations.
type PreProcessor interface {
	// Process replaces include annotations with the struct source they name and group
	// annotations with generated uniform declarations. Provider annotations produce no WGSL.
	// A struct is injected at most once per call.
	//
	// The declarations list is reset at the start of each call.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code
	//
	// Returns:
	//   - string: the processed WGSL shader source
	//   - error: an error if an annotation is malformed or a binding slot is declared twice
	Process(source string) (string, error)

	// Declarations returns the group and provider annotations collected by the most recent
	// call to Process, in source order.
	//
	// Returns:
	//   - []Annotation: the declarations
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the camera, material pool and light pool
// structs registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgCamera:   {Source: camera.GPUCameraUniformSource, Type: "CameraUniform"},
			AnnotationArgMaterial: {Source: material.GPUMaterialSource, Type: "GpMaterialBlock"},
			AnnotationArgLight:    {Source: light.GPULightSource, Type: "GpLightBlock"},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform: "var<uniform>",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	included := map[AnnotationArg]bool{}
	slots := map[[2]int]int{}

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		if a.Group != nil {
			slot := [2]int{*a.Group, *a.Binding}
			if prev, ok := slots[slot]; ok {
				return "", fmt.Errorf("line %d: group %d binding %d already declared on line %d", a.Line, slot[0], slot[1], prev)
			}
			slots[slot] = a.Line
		}

		switch a.Type {
		case annotationTypeInclude:
			if included[a.Args[0]] {
				continue
			}
			included[a.Args[0]] = true
			out = append(out, p.structRegistry[a.Args[0]].Source)
		case AnnotationTypeBindingGroup:
			addrSpace := p.addressSpaceRegistry[a.Args[0]]
			entry := p.structRegistry[a.Args[2]]
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, addrSpace, a.Args[1], entry.Type))
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeProvider:
			p.declarations = append(p.declarations, *a)
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
