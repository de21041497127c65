package spirv

import (
	"fmt"
	"strings"
)

// escapeByte appends the C-string-literal encoding of one byte:
// printable ASCII except `"` and `\` passes through, the bytes
// \a \b \t \v \f \r " and \ use their short escapes, and every other
// byte, newline included, becomes a three-digit octal escape.
func escapeByte(sb *strings.Builder, b byte) {
	switch {
	case b >= ' ' && b <= '~' && b != '"' && b != '\\':
		sb.WriteByte(b)
	case b == '\a':
		sb.WriteString(`\a`)
	case b == '\b':
		sb.WriteString(`\b`)
	case b == '\t':
		sb.WriteString(`\t`)
	case b == '\v':
		sb.WriteString(`\v`)
	case b == '\f':
		sb.WriteString(`\f`)
	case b == '\r':
		sb.WriteString(`\r`)
	case b == '"':
		sb.WriteString(`\"`)
	case b == '\\':
		sb.WriteString(`\\`)
	default:
		fmt.Fprintf(sb, `\%03o`, b)
	}
}

// EmitCHeader renders the .h side of the embedded module:
//
//	extern uint8_t *<name>_code;
//	extern size_t  <name>_code_size;
func EmitCHeader(name string) string {
	var sb strings.Builder
	sb.WriteString("#include <stddef.h>\n#include <stdint.h>\n\n")
	fmt.Fprintf(&sb, "extern uint8_t *%s_code;\n", name)
	fmt.Fprintf(&sb, "extern size_t %s_code_size;\n", name)
	return sb.String()
}

// EmitCSource renders the .c side, embedding the module bytes as one
// escaped C string literal.
func EmitCSource(name string, module []byte) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#include \"kong_%s.h\"\n\n", name)
	fmt.Fprintf(&sb, "uint8_t *%s_code = \"", name)
	for _, b := range module {
		escapeByte(&sb, b)
	}
	sb.WriteString("\";\n")
	fmt.Fprintf(&sb, "size_t %s_code_size = %d;\n", name, len(module))
	return sb.String()
}
