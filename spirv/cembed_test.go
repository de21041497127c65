package spirv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitCHeader(t *testing.T) {
	h := EmitCHeader("vs")

	assert.Contains(t, h, "#include <stddef.h>")
	assert.Contains(t, h, "#include <stdint.h>")
	assert.Contains(t, h, "extern uint8_t *vs_code;")
	assert.Contains(t, h, "extern size_t vs_code_size;")
}

func TestEmitCSourceEscaping(t *testing.T) {
	src := EmitCSource("vs", []byte{'A', '"', '\\', '\t', '\r', 0x00, 0x07, 0x1F, 0xFF})

	assert.Contains(t, src, `#include "kong_vs.h"`)
	assert.Contains(t, src, `uint8_t *vs_code = "A\"\\\t\r\000\a\037\377";`)
	assert.Contains(t, src, "size_t vs_code_size = 9;")
}

func TestEscapePrintableRunsUnchanged(t *testing.T) {
	var sb strings.Builder
	for _, b := range []byte("kong shader 123 [](){}<>") {
		escapeByte(&sb, b)
	}
	assert.Equal(t, "kong shader 123 [](){}<>", sb.String())
}

func TestEscapeOctalWidth(t *testing.T) {
	var sb strings.Builder
	escapeByte(&sb, 0x01)
	escapeByte(&sb, 0x80)
	assert.Equal(t, `\001\200`, sb.String())
}
