package handle

import (
	"strconv"

	"github.com/wippyai/ngfx/errors"
)

// Type is the 4-bit resource tag stored in the low bits of a Handle.
type Type uint8

const (
	Buffer Type = iota
	Texture
	Sampler
	RenderPass
	Pipeline
	BindGroup
	BufferView
	TextureView
	Fence

	RTAccelerationStructure Type = 14

	// TypeMax is the reserved sentinel. No live handle carries it.
	TypeMax Type = 15
)

var typeNames = [...]string{
	Buffer:                  "Buffer",
	Texture:                 "Texture",
	Sampler:                 "Sampler",
	RenderPass:              "RenderPass",
	Pipeline:                "Pipeline",
	BindGroup:               "BindGroup",
	BufferView:              "BufferView",
	TextureView:             "TextureView",
	Fence:                   "Fence",
	RTAccelerationStructure: "RTAccelerationStructure",
	TypeMax:                 "TypeMax",
}

// Valid reports whether t can be encoded in a live handle.
func (t Type) Valid() bool {
	return t < TypeMax
}

func (t Type) String() string {
	if int(t) < len(typeNames) && typeNames[t] != "" {
		return typeNames[t]
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

// ParseType resolves a type name as printed by Type.String. Numeric tags
// in the valid range are accepted as well.
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if n != "" && n == name && Type(i).Valid() {
			return Type(i), nil
		}
	}
	if v, err := strconv.ParseUint(name, 10, 8); err == nil && Type(v).Valid() {
		return Type(v), nil
	}
	return TypeMax, errors.New(errors.PhaseConfig, errors.KindInvalidType).
		Value(name).
		Detail("unknown resource type %q", name).
		Build()
}
