package spirv

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructionEncoding(t *testing.T) {
	inst := Instruction{Opcode: OpTypeFloat, Words: []uint32{3, 32}}
	words := inst.Encode()

	require.Len(t, words, 3)
	assert.Equal(t, uint32(3)<<16|uint32(OpTypeFloat), words[0])
	assert.Equal(t, uint32(3), words[1])
	assert.Equal(t, uint32(32), words[2])
}

func TestStringWordsPadding(t *testing.T) {
	// "main" + NUL is five bytes, padded to eight.
	words := stringWords("main")
	require.Len(t, words, 2)
	assert.Equal(t, uint32('m')|uint32('a')<<8|uint32('i')<<16|uint32('n')<<24, words[0])
	assert.Equal(t, uint32(0), words[1])

	// Exactly four bytes still needs a word for the terminator.
	words = stringWords("abcd")
	require.Len(t, words, 2)
}

func TestBuilderStreamsConcatenateInOrder(t *testing.T) {
	b := NewBuilder()
	b.AddCapability(CapabilityShader)
	void := b.AddTypeVoid()
	fn := b.AddTypeFunction(void)
	f := b.AddFunction(void, fn)
	b.AddLabel(b.AllocID())
	b.AddReturn()
	b.AddFunctionEnd()
	b.AddEntryPoint(ExecutionModelVertex, f, "main")

	module := b.Build()
	words := make([]uint32, len(module)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(module[i*4:])
	}

	assert.Equal(t, MagicNumber, words[0])
	assert.Equal(t, VersionWord, words[1])
	assert.Equal(t, GeneratorID, words[2])
	assert.Equal(t, b.Bound(), words[3])
	assert.Equal(t, uint32(0), words[4])

	// First instruction after the header must come from the
	// decorations stream.
	assert.Equal(t, uint32(OpCapability), words[5]&0xFFFF)
}

func TestAllocIDMonotonic(t *testing.T) {
	b := NewBuilder()
	first := b.AllocID()
	second := b.AllocID()
	assert.Equal(t, first+1, second)
	assert.Equal(t, second+1, b.Bound())
}
