package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kong-shade/kongc/types"
)

// Print renders definitions back to kong source. The output is
// whitespace-normalized and every binary expression is wrapped in
// parentheses, so it can differ from the input by added parentheses;
// reparsing the output and printing it again yields the same text.
func Print(decls []Decl) string {
	var sb strings.Builder
	for i, decl := range decls {
		if i > 0 {
			sb.WriteByte('\n')
		}
		printDecl(&sb, decl)
	}
	return sb.String()
}

func printDecl(sb *strings.Builder, decl Decl) {
	switch d := decl.(type) {
	case *StructDecl:
		printAttributes(sb, d.Attributes)
		fmt.Fprintf(sb, "struct %s {\n", d.Name)
		for _, m := range d.Members {
			sb.WriteByte('\t')
			sb.WriteString(m.Name)
			if m.TypeName != "" {
				fmt.Fprintf(sb, ": %s", m.TypeName)
				printArraySuffix(sb, m.ArraySize)
			}
			if m.Default != nil {
				sb.WriteString(" = ")
				printExpr(sb, m.Default)
			}
			sb.WriteString(";\n")
		}
		sb.WriteString("}\n")

	case *FunctionDecl:
		printAttributes(sb, d.Attributes)
		fmt.Fprintf(sb, "fn %s(", d.Name)
		for i, p := range d.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%s: %s", p.Name, p.TypeName)
		}
		sb.WriteString(")")
		if d.ReturnType != "" {
			fmt.Fprintf(sb, " -> %s", d.ReturnType)
		}
		sb.WriteByte(' ')
		printBlock(sb, d.Body, 0)

	case *ConstDecl:
		printAttributes(sb, d.Attributes)
		fmt.Fprintf(sb, "const %s: %s", d.Name, d.TypeName)
		printArraySuffix(sb, d.ArraySize)
		if d.Init != nil {
			sb.WriteString(" = ")
			printExpr(sb, d.Init)
		}
		sb.WriteString(";\n")
	}
}

func printAttributes(sb *strings.Builder, attrs []Attribute) {
	for _, attr := range attrs {
		sb.WriteString("#[")
		sb.WriteString(attr.Name)
		if len(attr.Params) > 0 {
			sb.WriteByte('(')
			for i, p := range attr.Params {
				if i > 0 {
					sb.WriteString(", ")
				}
				if p.IsNum {
					sb.WriteString(formatNumber(p.Number))
				} else {
					sb.WriteString(p.Ident)
				}
			}
			sb.WriteByte(')')
		}
		sb.WriteString("]\n")
	}
}

func printArraySuffix(sb *strings.Builder, size uint32) {
	switch size {
	case 0:
	case types.Unbounded:
		sb.WriteString("[]")
	default:
		fmt.Fprintf(sb, "[%d]", size)
	}
}

func indent(sb *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		sb.WriteByte('\t')
	}
}

func printBlock(sb *strings.Builder, b *Block, depth int) {
	sb.WriteString("{\n")
	for _, stmt := range b.Stmts {
		printStmt(sb, stmt, depth+1)
	}
	indent(sb, depth)
	sb.WriteString("}\n")
}

func printStmt(sb *strings.Builder, stmt Stmt, depth int) {
	switch s := stmt.(type) {
	case *Block:
		indent(sb, depth)
		printBlock(sb, s, depth)

	case *LocalVarStmt:
		indent(sb, depth)
		if s.Var.Mutable {
			sb.WriteString("mut ")
		} else {
			sb.WriteString("let ")
		}
		sb.WriteString(s.Var.Name)
		if s.TypeName != "" {
			fmt.Fprintf(sb, ": %s", s.TypeName)
		}
		if s.Init != nil {
			sb.WriteString(" = ")
			printExpr(sb, s.Init)
		}
		sb.WriteString(";\n")

	case *ExprStmt:
		indent(sb, depth)
		printExpr(sb, s.Expr)
		sb.WriteString(";\n")

	case *ReturnStmt:
		indent(sb, depth)
		sb.WriteString("return")
		if s.Value != nil {
			sb.WriteByte(' ')
			printExpr(sb, s.Value)
		}
		sb.WriteString(";\n")

	case *IfStmt:
		indent(sb, depth)
		sb.WriteString("if (")
		printExpr(sb, s.Condition)
		sb.WriteString(") ")
		printArm(sb, s.Then, depth)
		if s.Else != nil {
			indent(sb, depth)
			sb.WriteString("else ")
			printArm(sb, s.Else, depth)
		}

	case *WhileStmt:
		indent(sb, depth)
		sb.WriteString("while (")
		printExpr(sb, s.Condition)
		sb.WriteString(") ")
		printArm(sb, s.Body, depth)
	}
}

// printArm prints a control-flow arm: blocks inline after the
// header, single statements on their own line.
func printArm(sb *strings.Builder, stmt Stmt, depth int) {
	if b, ok := stmt.(*Block); ok {
		printBlock(sb, b, depth)
		return
	}
	sb.WriteByte('\n')
	printStmt(sb, stmt, depth+1)
}

func printExpr(sb *strings.Builder, e Expr) {
	switch x := e.(type) {
	case *NumberLit:
		sb.WriteString(formatNumber(x.Value))
	case *BooleanLit:
		fmt.Fprintf(sb, "%t", x.Value)
	case *StringLit:
		fmt.Fprintf(sb, "%q", x.Value)
	case *Ident:
		sb.WriteString(x.Name)
	case *Grouping:
		// A binary expression already prints its own parentheses.
		if _, ok := x.Inner.(*BinaryExpr); ok {
			printExpr(sb, x.Inner)
			break
		}
		sb.WriteByte('(')
		printExpr(sb, x.Inner)
		sb.WriteByte(')')
	case *UnaryExpr:
		if x.Op == OpNot {
			sb.WriteByte('!')
		} else {
			sb.WriteByte('-')
		}
		printExpr(sb, x.Operand)
	case *BinaryExpr:
		// Every subexpression is parenthesized, so reparsing cannot
		// reassociate anything.
		sb.WriteByte('(')
		printExpr(sb, x.Left)
		fmt.Fprintf(sb, " %s ", x.Op)
		printExpr(sb, x.Right)
		sb.WriteByte(')')
	case *CallExpr:
		sb.WriteString(x.Callee)
		sb.WriteByte('(')
		for i, arg := range x.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			printExpr(sb, arg)
		}
		sb.WriteByte(')')
	case *MemberExpr:
		printExpr(sb, x.Base)
		sb.WriteByte('.')
		sb.WriteString(x.Name)
	case *IndexExpr:
		printExpr(sb, x.Base)
		sb.WriteByte('[')
		printExpr(sb, x.Index)
		sb.WriteByte(']')
	}
}

func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
