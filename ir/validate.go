package ir

import (
	"github.com/kong-shade/kongc/diag"
)

// Validate checks the structural invariants of every lowered function
// body:
//
//   - every SSA id read by an opcode has a prior defining opcode in
//     the same buffer (parameters and globals count as pre-defined),
//   - BLOCK_START/BLOCK_END and WHILE_START/WHILE_END nest properly,
//   - member opcodes carry a non-empty index chain with a parallel
//     array-index flag slice.
//
// Violations are internal errors: they indicate a compiler bug, not
// bad user input.
func Validate(m *Module) error {
	for i := range m.Functions() {
		f := m.Function(FunctionID(i))
		if f.Body == nil {
			continue
		}
		if err := validateFunction(m, f); err != nil {
			return err
		}
	}
	return nil
}

func validateFunction(m *Module, f *Function) error {
	name := m.Names.String(f.Name)

	defined := make(map[VarID]bool, len(f.Code))
	for _, p := range f.Params {
		defined[p.VarID] = true
	}
	for _, g := range m.Globals() {
		defined[g.VarID] = true
	}

	blockDepth := 0
	whileDepth := 0
	var uses []VarID

	for idx := range f.Code {
		op := &f.Code[idx]

		uses = op.Uses(uses[:0])
		for _, id := range uses {
			// Stores write through To; a VAR opcode must have
			// declared the slot first.
			if !defined[id] {
				return diag.Internal("", diag.Pos{},
					"function %s: opcode %d (%s) reads _%d before any defining opcode", name, idx, op.Kind, id)
			}
		}
		if def := op.Defines(); def != 0 {
			defined[def] = true
		}

		switch op.Kind {
		case OpBlockStart:
			blockDepth++
		case OpBlockEnd:
			blockDepth--
			if blockDepth < 0 {
				return diag.Internal("", diag.Pos{}, "function %s: BLOCK_END without BLOCK_START", name)
			}
		case OpWhileStart:
			whileDepth++
		case OpWhileEnd:
			whileDepth--
			if whileDepth < 0 {
				return diag.Internal("", diag.Pos{}, "function %s: WHILE_END without WHILE_START", name)
			}
		case OpLoadMember, OpStoreMember, OpAddAndStoreMember, OpSubAndStoreMember, OpMulAndStoreMember, OpDivAndStoreMember:
			if len(op.Indices) == 0 {
				return diag.Internal("", diag.Pos{}, "function %s: member opcode %d has an empty index chain", name, idx)
			}
			if len(op.Indices) != len(op.IndexIsArray) {
				return diag.Internal("", diag.Pos{}, "function %s: member opcode %d index flags out of step", name, idx)
			}
			if !op.MemberParent.Resolved {
				return diag.Internal("", diag.Pos{}, "function %s: member opcode %d parent type unresolved", name, idx)
			}
		}
	}

	if blockDepth != 0 {
		return diag.Internal("", diag.Pos{}, "function %s: %d unclosed blocks", name, blockDepth)
	}
	if whileDepth != 0 {
		return diag.Internal("", diag.Pos{}, "function %s: %d unclosed loops", name, whileDepth)
	}
	return nil
}
