// Package spirv encodes lowered kong IR into binary SPIR-V modules,
// one per entry point, and embeds them as C string literals for
// linkage into a host runtime.
package spirv

// MagicNumber is the SPIR-V module magic.
const MagicNumber uint32 = 0x07230203

// VersionWord is SPIR-V 1.0 in header encoding.
const VersionWord uint32 = 0x00010000

// GeneratorID is this compiler's registered generator magic.
const GeneratorID uint32 = 44

// OpCode is a SPIR-V instruction opcode.
type OpCode uint16

// The instruction subset the encoder emits.
const (
	OpExtInstImport     OpCode = 11
	OpExtInst           OpCode = 12
	OpMemoryModel       OpCode = 14
	OpEntryPoint        OpCode = 15
	OpExecutionMode     OpCode = 16
	OpCapability        OpCode = 17
	OpTypeVoid          OpCode = 19
	OpTypeBool          OpCode = 20
	OpTypeInt           OpCode = 21
	OpTypeFloat         OpCode = 22
	OpTypeVector        OpCode = 23
	OpTypeMatrix        OpCode = 24
	OpTypeStruct        OpCode = 30
	OpTypePointer       OpCode = 32
	OpTypeFunction      OpCode = 33
	OpConstantTrue      OpCode = 41
	OpConstantFalse     OpCode = 42
	OpConstant          OpCode = 43
	OpConstantComposite OpCode = 44
	OpFunction          OpCode = 54
	OpFunctionEnd       OpCode = 56
	OpVariable          OpCode = 59
	OpLoad              OpCode = 61
	OpStore             OpCode = 62
	OpAccessChain       OpCode = 65
	OpDecorate          OpCode = 71
	OpMemberDecorate    OpCode = 72
	OpCompositeConstruct OpCode = 80
	OpCompositeExtract  OpCode = 81
	OpFNegate           OpCode = 127
	OpSNegate           OpCode = 126
	OpFAdd              OpCode = 129
	OpISub              OpCode = 130
	OpFSub              OpCode = 131
	OpIAdd              OpCode = 128
	OpIMul              OpCode = 132
	OpFMul              OpCode = 133
	OpUDiv              OpCode = 134
	OpSDiv              OpCode = 135
	OpFDiv              OpCode = 136
	OpUMod              OpCode = 137
	OpSMod              OpCode = 139
	OpFMod              OpCode = 141
	OpVectorTimesScalar OpCode = 142
	OpMatrixTimesVector OpCode = 145
	OpLogicalOr         OpCode = 166
	OpLogicalAnd        OpCode = 167
	OpLogicalNot        OpCode = 168
	OpIEqual            OpCode = 170
	OpINotEqual         OpCode = 171
	OpUGreaterThan      OpCode = 172
	OpSGreaterThan      OpCode = 173
	OpUGreaterThanEqual OpCode = 174
	OpSGreaterThanEqual OpCode = 175
	OpULessThan         OpCode = 176
	OpSLessThan         OpCode = 177
	OpULessThanEqual    OpCode = 178
	OpSLessThanEqual    OpCode = 179
	OpFOrdEqual         OpCode = 180
	OpFOrdNotEqual      OpCode = 182
	OpFOrdLessThan      OpCode = 184
	OpFOrdGreaterThan   OpCode = 186
	OpFOrdLessThanEqual OpCode = 188
	OpFOrdGreaterThanEqual OpCode = 190
	OpLabel             OpCode = 248
	OpBranch            OpCode = 249
	OpBranchConditional OpCode = 250
	OpSelectionMerge    OpCode = 247
	OpLoopMerge         OpCode = 246
	OpReturn            OpCode = 253
	OpReturnValue       OpCode = 254
)

// Capability values.
const CapabilityShader uint32 = 1

// Execution models.
const (
	ExecutionModelVertex   uint32 = 0
	ExecutionModelFragment uint32 = 4
)

// Execution modes.
const ExecutionModeOriginUpperLeft uint32 = 7

// Addressing and memory models.
const (
	AddressingModelLogical uint32 = 0
	MemoryModelGLSL450     uint32 = 1
)

// StorageClass is a SPIR-V storage class.
type StorageClass uint32

const (
	StorageClassUniformConstant StorageClass = 0
	StorageClassInput           StorageClass = 1
	StorageClassUniform         StorageClass = 2
	StorageClassOutput          StorageClass = 3
	StorageClassFunction        StorageClass = 7
)

// Decorations.
const (
	DecorationBlock         uint32 = 2
	DecorationBuiltIn       uint32 = 11
	DecorationLocation      uint32 = 30
	DecorationBinding       uint32 = 33
	DecorationDescriptorSet uint32 = 34
	DecorationOffset        uint32 = 35
	DecorationColMajor      uint32 = 5
	DecorationMatrixStride  uint32 = 7
)

// Built-in variable ids.
const BuiltInPosition uint32 = 0
