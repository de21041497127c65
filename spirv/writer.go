package spirv

import (
	"encoding/binary"
)

// Instruction is one encoded SPIR-V instruction: the opcode plus its
// operand words (result type and result id included, in stream
// order).
type Instruction struct {
	Opcode OpCode
	Words  []uint32
}

// Encode prepends the word-count/opcode word.
func (i Instruction) Encode() []uint32 {
	wordCount := uint32(len(i.Words) + 1)
	out := make([]uint32, 0, wordCount)
	out = append(out, (wordCount<<16)|uint32(i.Opcode))
	return append(out, i.Words...)
}

// stringWords packs a NUL-terminated UTF-8 string into operand words.
func stringWords(s string) []uint32 {
	bytes := append([]byte(s), 0)
	for len(bytes)%4 != 0 {
		bytes = append(bytes, 0)
	}
	words := make([]uint32, 0, len(bytes)/4)
	for i := 0; i < len(bytes); i += 4 {
		words = append(words, uint32(bytes[i])|uint32(bytes[i+1])<<8|uint32(bytes[i+2])<<16|uint32(bytes[i+3])<<24)
	}
	return words
}

// Builder assembles a module as three instruction streams that Build
// concatenates after the five header words: decorations (capability,
// ext-inst-import, memory model, entry point, execution modes, and
// decorations proper), constants-and-types (type, constant, and
// module-scope variable declarations), and instructions (function
// bodies).
type Builder struct {
	nextID uint32

	Decorations  []Instruction
	Constants    []Instruction
	Instructions []Instruction
}

// NewBuilder creates an empty module builder. Ids start at 1.
func NewBuilder() *Builder {
	return &Builder{nextID: 1}
}

// AllocID returns a fresh result id.
func (b *Builder) AllocID() uint32 {
	id := b.nextID
	b.nextID++
	return id
}

// Bound returns one plus the maximum id handed out.
func (b *Builder) Bound() uint32 {
	return b.nextID
}

func (b *Builder) decorate(op OpCode, words ...uint32) {
	b.Decorations = append(b.Decorations, Instruction{Opcode: op, Words: words})
}

func (b *Builder) constant(op OpCode, words ...uint32) {
	b.Constants = append(b.Constants, Instruction{Opcode: op, Words: words})
}

func (b *Builder) instruction(op OpCode, words ...uint32) {
	b.Instructions = append(b.Instructions, Instruction{Opcode: op, Words: words})
}

// AddCapability appends OpCapability to the decorations stream.
func (b *Builder) AddCapability(capability uint32) {
	b.decorate(OpCapability, capability)
}

// AddExtInstImport imports an extended instruction set.
func (b *Builder) AddExtInstImport(name string) uint32 {
	id := b.AllocID()
	b.decorate(OpExtInstImport, append([]uint32{id}, stringWords(name)...)...)
	return id
}

// SetMemoryModel appends OpMemoryModel.
func (b *Builder) SetMemoryModel(addressing, memory uint32) {
	b.decorate(OpMemoryModel, addressing, memory)
}

// AddEntryPoint declares the entry point and its interface variables.
func (b *Builder) AddEntryPoint(model uint32, function uint32, name string, interfaces ...uint32) {
	words := append([]uint32{model, function}, stringWords(name)...)
	words = append(words, interfaces...)
	b.decorate(OpEntryPoint, words...)
}

// AddExecutionMode appends OpExecutionMode.
func (b *Builder) AddExecutionMode(entryPoint uint32, mode uint32, params ...uint32) {
	b.decorate(OpExecutionMode, append([]uint32{entryPoint, mode}, params...)...)
}

// AddDecorate appends OpDecorate.
func (b *Builder) AddDecorate(target uint32, decoration uint32, params ...uint32) {
	b.decorate(OpDecorate, append([]uint32{target, decoration}, params...)...)
}

// AddMemberDecorate appends OpMemberDecorate.
func (b *Builder) AddMemberDecorate(structID, member uint32, decoration uint32, params ...uint32) {
	b.decorate(OpMemberDecorate, append([]uint32{structID, member, decoration}, params...)...)
}

// Type declarations. Each allocates a fresh id; deduplication is the
// backend's job through its type map.

func (b *Builder) AddTypeVoid() uint32 {
	id := b.AllocID()
	b.constant(OpTypeVoid, id)
	return id
}

func (b *Builder) AddTypeBool() uint32 {
	id := b.AllocID()
	b.constant(OpTypeBool, id)
	return id
}

func (b *Builder) AddTypeFloat(width uint32) uint32 {
	id := b.AllocID()
	b.constant(OpTypeFloat, id, width)
	return id
}

func (b *Builder) AddTypeInt(width uint32, signed bool) uint32 {
	id := b.AllocID()
	signedWord := uint32(0)
	if signed {
		signedWord = 1
	}
	b.constant(OpTypeInt, id, width, signedWord)
	return id
}

func (b *Builder) AddTypeVector(component uint32, count uint32) uint32 {
	id := b.AllocID()
	b.constant(OpTypeVector, id, component, count)
	return id
}

func (b *Builder) AddTypeMatrix(column uint32, columns uint32) uint32 {
	id := b.AllocID()
	b.constant(OpTypeMatrix, id, column, columns)
	return id
}

func (b *Builder) AddTypeStruct(members ...uint32) uint32 {
	id := b.AllocID()
	b.constant(OpTypeStruct, append([]uint32{id}, members...)...)
	return id
}

func (b *Builder) AddTypePointer(storage StorageClass, base uint32) uint32 {
	id := b.AllocID()
	b.constant(OpTypePointer, id, uint32(storage), base)
	return id
}

func (b *Builder) AddTypeFunction(returnType uint32, params ...uint32) uint32 {
	id := b.AllocID()
	b.constant(OpTypeFunction, append([]uint32{id, returnType}, params...)...)
	return id
}

// Constants.

func (b *Builder) AddConstant(typeID uint32, values ...uint32) uint32 {
	id := b.AllocID()
	b.constant(OpConstant, append([]uint32{typeID, id}, values...)...)
	return id
}

func (b *Builder) AddConstantBool(typeID uint32, value bool) uint32 {
	id := b.AllocID()
	if value {
		b.constant(OpConstantTrue, typeID, id)
	} else {
		b.constant(OpConstantFalse, typeID, id)
	}
	return id
}

// AddGlobalVariable declares a module-scope OpVariable in the
// constants-and-types stream.
func (b *Builder) AddGlobalVariable(pointerType uint32, storage StorageClass) uint32 {
	id := b.AllocID()
	b.constant(OpVariable, pointerType, id, uint32(storage))
	return id
}

// Function-body instructions.

func (b *Builder) AddFunction(returnType, functionType uint32) uint32 {
	id := b.AllocID()
	b.instruction(OpFunction, returnType, id, 0, functionType)
	return id
}

func (b *Builder) AddFunctionEnd() {
	b.instruction(OpFunctionEnd)
}

// AddLabel starts a block with a pre-allocated label id.
func (b *Builder) AddLabel(id uint32) {
	b.instruction(OpLabel, id)
}

// AddLocalVariable declares a function-scope OpVariable. SPIR-V
// requires these at the top of the entry block; callers emit them
// immediately after the first label.
func (b *Builder) AddLocalVariable(pointerType uint32) uint32 {
	id := b.AllocID()
	b.instruction(OpVariable, pointerType, id, uint32(StorageClassFunction))
	return id
}

func (b *Builder) AddLoad(resultType, pointer uint32) uint32 {
	id := b.AllocID()
	b.instruction(OpLoad, resultType, id, pointer)
	return id
}

func (b *Builder) AddStore(pointer, value uint32) {
	b.instruction(OpStore, pointer, value)
}

func (b *Builder) AddAccessChain(resultType, base uint32, indices ...uint32) uint32 {
	id := b.AllocID()
	b.instruction(OpAccessChain, append([]uint32{resultType, id, base}, indices...)...)
	return id
}

func (b *Builder) AddCompositeConstruct(resultType uint32, constituents ...uint32) uint32 {
	id := b.AllocID()
	b.instruction(OpCompositeConstruct, append([]uint32{resultType, id}, constituents...)...)
	return id
}

func (b *Builder) AddCompositeExtract(resultType, composite uint32, indices ...uint32) uint32 {
	id := b.AllocID()
	b.instruction(OpCompositeExtract, append([]uint32{resultType, id, composite}, indices...)...)
	return id
}

func (b *Builder) AddBinary(op OpCode, resultType, left, right uint32) uint32 {
	id := b.AllocID()
	b.instruction(op, resultType, id, left, right)
	return id
}

func (b *Builder) AddUnary(op OpCode, resultType, operand uint32) uint32 {
	id := b.AllocID()
	b.instruction(op, resultType, id, operand)
	return id
}

func (b *Builder) AddSelectionMerge(mergeLabel uint32) {
	b.instruction(OpSelectionMerge, mergeLabel, 0)
}

func (b *Builder) AddLoopMerge(mergeLabel, continueLabel uint32) {
	b.instruction(OpLoopMerge, mergeLabel, continueLabel, 0)
}

func (b *Builder) AddBranch(target uint32) {
	b.instruction(OpBranch, target)
}

func (b *Builder) AddBranchConditional(condition, trueLabel, falseLabel uint32) {
	b.instruction(OpBranchConditional, condition, trueLabel, falseLabel)
}

func (b *Builder) AddReturn() {
	b.instruction(OpReturn)
}

func (b *Builder) AddReturnValue(value uint32) {
	b.instruction(OpReturnValue, value)
}

// Build concatenates header, decorations, constants-and-types, and
// instructions into the final little-endian binary. The bound is one
// plus the maximum id used.
func (b *Builder) Build() []byte {
	words := []uint32{MagicNumber, VersionWord, GeneratorID, b.Bound(), 0}
	for _, stream := range [][]Instruction{b.Decorations, b.Constants, b.Instructions} {
		for _, inst := range stream {
			words = append(words, inst.Encode()...)
		}
	}

	out := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}
