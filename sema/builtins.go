package sema

// Render-state enum values. Pipe members like blend_source reference
// user-declared const-globals; the values those constants carry are
// interpreted on this scale when the host-integration layer wires a
// pipeline into the target API.
const (
	BlendOne uint32 = iota
	BlendZero
	BlendSourceAlpha
	BlendDestAlpha
	BlendInvSourceAlpha
	BlendInvDestAlpha
	BlendSourceColor
	BlendDestColor
	BlendInvSourceColor
	BlendInvDestColor
)

// Blend operations.
const (
	BlendOpAdd uint32 = iota
	BlendOpSubtract
	BlendOpReverseSubtract
	BlendOpMin
	BlendOpMax
)

// Depth-compare modes.
const (
	CompareAlways uint32 = iota
	CompareNever
	CompareEqual
	CompareNotEqual
	CompareLess
	CompareLessEqual
	CompareGreater
	CompareGreaterEqual
)

// blendFactorNames is the host-integration spelling per value, in
// the D3D12 vocabulary; the integration emitter prefixes it per API.
var blendFactorNames = map[uint32]string{
	BlendOne:            "one",
	BlendZero:           "zero",
	BlendSourceAlpha:    "source_alpha",
	BlendDestAlpha:      "destination_alpha",
	BlendInvSourceAlpha: "inv_source_alpha",
	BlendInvDestAlpha:   "inv_destination_alpha",
	BlendSourceColor:    "source_color",
	BlendDestColor:      "destination_color",
	BlendInvSourceColor: "inv_source_color",
	BlendInvDestColor:   "inv_destination_color",
}

// BlendFactorName returns the canonical name for a blend-factor
// value, or "" when the value is out of range.
func BlendFactorName(value int64) string {
	if value < 0 {
		return ""
	}
	return blendFactorNames[uint32(value)]
}
