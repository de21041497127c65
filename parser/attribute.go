package parser

import (
	"strconv"
	"strings"

	"github.com/kong-shade/kongc/ast"
	"github.com/kong-shade/kongc/diag"
	"github.com/kong-shade/kongc/token"
)

// parseAttribute splits a verbatim attribute body ("vertex",
// "threads(64, 1, 1)", "set(lights)") into its name and parameters.
// Parameters are numbers or identifiers.
func parseAttribute(file string, tok token.Token) (ast.Attribute, error) {
	pos := diag.Pos{Line: tok.Line, Column: tok.Column}
	body := strings.TrimSpace(tok.Lexeme)
	if body == "" {
		return ast.Attribute{}, diag.New(file, pos, "empty attribute")
	}

	open := strings.IndexByte(body, '(')
	if open < 0 {
		if !isIdentText(body) {
			return ast.Attribute{}, diag.New(file, pos, "malformed attribute %q", body)
		}
		return ast.Attribute{Name: body, Span: pos}, nil
	}

	name := strings.TrimSpace(body[:open])
	if !isIdentText(name) || !strings.HasSuffix(body, ")") {
		return ast.Attribute{}, diag.New(file, pos, "malformed attribute %q", body)
	}

	attr := ast.Attribute{Name: name, Span: pos}
	inner := strings.TrimSpace(body[open+1 : len(body)-1])
	if inner == "" {
		return attr, nil
	}
	for _, part := range strings.Split(inner, ",") {
		part = strings.TrimSpace(part)
		if num, err := strconv.ParseFloat(part, 64); err == nil {
			attr.Params = append(attr.Params, ast.AttrParam{Number: num, IsNum: true})
			continue
		}
		if !isIdentText(part) {
			return ast.Attribute{}, diag.New(file, pos, "malformed attribute parameter %q", part)
		}
		attr.Params = append(attr.Params, ast.AttrParam{Ident: part})
	}
	return attr, nil
}

func isIdentText(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}
