// Package types implements the process-wide type registry: the fixed
// set of built-in GPU types plus every user-defined struct and array
// type discovered while analyzing a kong module.
package types

import (
	"fmt"

	"github.com/kong-shade/kongc/names"
)

// ID identifies a type. Built-in types have fixed, documented ids;
// user types are assigned ids in discovery order starting right after
// the built-ins.
type ID uint32

// Unbounded marks a runtime-sized array; bounded arrays carry their
// element count, scalars and structs carry zero.
const Unbounded uint32 = 1<<32 - 1

// Kind discriminates what a Type actually is.
type Kind uint8

const (
	KindVoid Kind = iota
	KindFloat
	KindFloat2
	KindFloat3
	KindFloat4
	KindFloat3x3
	KindFloat4x4
	KindInt
	KindInt2
	KindInt3
	KindInt4
	KindUint
	KindUint2
	KindUint3
	KindUint4
	KindBool
	KindSampler
	KindTex2D
	KindTex2DArray
	KindTexCube
	KindBVH
	KindStruct
	KindArray
)

// String returns a human-readable, kong-source-like spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindFloat:
		return "float"
	case KindFloat2:
		return "float2"
	case KindFloat3:
		return "float3"
	case KindFloat4:
		return "float4"
	case KindFloat3x3:
		return "float3x3"
	case KindFloat4x4:
		return "float4x4"
	case KindInt:
		return "int"
	case KindInt2:
		return "int2"
	case KindInt3:
		return "int3"
	case KindInt4:
		return "int4"
	case KindUint:
		return "uint"
	case KindUint2:
		return "uint2"
	case KindUint3:
		return "uint3"
	case KindUint4:
		return "uint4"
	case KindBool:
		return "bool"
	case KindSampler:
		return "sampler"
	case KindTex2D:
		return "tex2d"
	case KindTex2DArray:
		return "tex2darray"
	case KindTexCube:
		return "texcube"
	case KindBVH:
		return "bvh"
	case KindStruct:
		return "struct"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// IsVector reports whether the kind is a floatN/intN/uintN vector.
func (k Kind) IsVector() bool {
	switch k {
	case KindFloat2, KindFloat3, KindFloat4, KindInt2, KindInt3, KindInt4, KindUint2, KindUint3, KindUint4:
		return true
	default:
		return false
	}
}

// VectorArity returns the component count of a vector kind, or 0.
func (k Kind) VectorArity() int {
	switch k {
	case KindFloat2, KindInt2, KindUint2:
		return 2
	case KindFloat3, KindInt3, KindUint3:
		return 3
	case KindFloat4, KindInt4, KindUint4:
		return 4
	default:
		return 0
	}
}

// Member is one field of a struct type.
type Member struct {
	Name      names.ID
	Type      ID
	ArraySize uint32
	Default   Const    // zero Const means "no initializer"
	DefaultID names.ID // identifier default, used by pipe members
}

// Const is a small constant-expression value, used for struct member
// defaults and const-global initializers. Only one of the fields is
// meaningful, selected by Kind.
type Const struct {
	Kind  Kind // KindFloat, KindInt, KindUint or KindBool
	Float float64
	Int   int64
	Uint  uint64
	Bool  bool
	Set   bool // distinguishes "no default" from "default is zero"
}

// Type is one entry in the registry.
type Type struct {
	Name       names.ID
	Kind       Kind
	BuiltIn    bool
	Attributes []names.ID // attribute names attached to the declaration
	Members    []Member   // struct members, in declaration order
	ArraySize  uint32     // 0 = scalar/struct, Unbounded = runtime array
	Base       ID         // element type, for KindArray
}

// HasAttribute reports whether the type carries the named attribute.
func (t Type) HasAttribute(name names.ID) bool {
	for _, a := range t.Attributes {
		if a == name {
			return true
		}
	}
	return false
}

// Ref is a reference to a type as it appears on an expression, field,
// parameter, or variable declaration. Between parse and analyze, Type
// may be a placeholder and Resolved is false.
type Ref struct {
	Type      ID
	ArraySize uint32
	Resolved  bool
}

// Registry holds every type known during one compilation: the fixed
// built-ins plus user structs and arrays discovered while parsing.
// Reserved ids are assigned in the fixed order documented below, so
// NewRegistry alone establishes the built-in id space.
type Registry struct {
	types  []Type
	byName map[names.ID]ID
}

// NewRegistry creates a registry with every built-in type already
// present, at the fixed ids listed in builtinOrder.
func NewRegistry(pool *names.Pool) *Registry {
	r := &Registry{
		types:  make([]Type, 0, 32),
		byName: make(map[names.ID]ID, 32),
	}
	for _, k := range builtinOrder {
		r.types = append(r.types, Type{
			Name:    pool.Intern(k.String()),
			Kind:    k,
			BuiltIn: true,
		})
	}
	for id, t := range r.types {
		r.byName[t.Name] = ID(id)
	}
	return r
}

// builtinOrder fixes the id assignment order for reserved built-in
// types.
var builtinOrder = []Kind{
	KindVoid,
	KindFloat,
	KindFloat2,
	KindFloat3,
	KindFloat4,
	KindFloat3x3,
	KindFloat4x4,
	KindInt,
	KindInt2,
	KindInt3,
	KindInt4,
	KindUint,
	KindUint2,
	KindUint3,
	KindUint4,
	KindBool,
	KindSampler,
	KindTex2D,
	KindTex2DArray,
	KindTexCube,
	KindBVH,
}

// Builtin looks up the id of a reserved built-in type by kind. Panics
// if k is not one of the built-in kinds; that is a programming error,
// never a user-facing condition.
func (r *Registry) Builtin(k Kind) ID {
	for id, t := range r.types[:len(builtinOrder)] {
		if t.Kind == k {
			return ID(id)
		}
	}
	panic(fmt.Sprintf("types: %v is not a built-in kind", k))
}

// DefineStruct registers a new struct type and returns its id. Callers
// (the analyzer) are responsible for rejecting duplicate member names
// before calling this.
func (r *Registry) DefineStruct(name names.ID, members []Member) ID {
	id := ID(len(r.types))
	r.types = append(r.types, Type{
		Name:    name,
		Kind:    KindStruct,
		Members: members,
	})
	r.byName[name] = id
	return id
}

// DeclareStruct registers a struct name with no members yet, so that
// members of structs declared later in the module can refer to it.
// SetMembers fills the body in a second pass.
func (r *Registry) DeclareStruct(name names.ID, attrs []names.ID) ID {
	id := r.DefineStruct(name, nil)
	r.types[id].Attributes = attrs
	return id
}

// SetMembers fills in the member list of a struct declared with
// DeclareStruct.
func (r *Registry) SetMembers(id ID, members []Member) {
	r.types[id].Members = members
}

// DefineArray returns the id for an array of base with the given size,
// deduplicating against any array type already registered with the
// same (base, size) pair.
func (r *Registry) DefineArray(base ID, size uint32) ID {
	for id, t := range r.types {
		if t.Kind == KindArray && t.Base == base && t.ArraySize == size {
			return ID(id)
		}
	}
	id := ID(len(r.types))
	r.types = append(r.types, Type{
		Kind:      KindArray,
		Base:      base,
		ArraySize: size,
	})
	return id
}

// Lookup returns the type record for id.
func (r *Registry) Lookup(id ID) (Type, bool) {
	if int(id) >= len(r.types) {
		return Type{}, false
	}
	return r.types[id], true
}

// LookupName resolves a type name to an id.
func (r *Registry) LookupName(name names.ID) (ID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Member finds a member of the struct at id by name, returning its
// ordinal index (which also becomes the IR's member index) and the
// member record.
func (r *Registry) Member(id ID, name names.ID) (int, Member, bool) {
	t, ok := r.Lookup(id)
	if !ok || t.Kind != KindStruct {
		return 0, Member{}, false
	}
	for i, m := range t.Members {
		if m.Name == name {
			return i, m, true
		}
	}
	return 0, Member{}, false
}

// Count returns the number of registered types, built-in and user.
func (r *Registry) Count() int {
	return len(r.types)
}
