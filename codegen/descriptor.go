// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package codegen builds the language-neutral type descriptor a foreign
// binding generator consumes to mirror the wire codec (package wire)
// bit-for-bit in another host language.
//
// The descriptor is a structural walk, in the spirit of
// pumped-fn-pumped-go's pkg/schema reflect-based walker, over every struct
// and tagged-sum ("enum") reachable from an application's Event, ViewModel,
// Effect, Operation, and Output types. Go has no native tagged-sum type, so
// enums cannot be discovered by reflection alone the way structs can:
// callers declare them explicitly with AddEnum, naming each variant's tag
// and payload, mirroring the hand-written Variant constants and type
// switches in package capability.
//
// Builder never ranges over a map to produce output: struct fields come
// from reflect.Type.Field(i) in declaration order, and both structs and
// enums are emitted in the order they were added. A Builder driven by the
// same registration code therefore always produces the same Descriptor,
// satisfying the stability requirement a foreign-language generator needs.
package codegen

import "reflect"

// Kind classifies one node of the type graph.
type Kind string

const (
	KindPrimitive Kind = "primitive"
	KindString    Kind = "string"
	KindBytes     Kind = "bytes"
	KindBool      Kind = "bool"
	KindOption    Kind = "option"
	KindSeq       Kind = "seq"
	KindRef       Kind = "ref"
	KindUnit      Kind = "unit"
	KindOpaque    Kind = "opaque"
)

// TypeRef is a reference to a type: either a primitive/structural shape
// described inline, or a KindRef naming a StructDescriptor/EnumDescriptor
// added elsewhere in the same Descriptor.
type TypeRef struct {
	Kind  Kind     `yaml:"kind"`
	Name  string   `yaml:"name,omitempty"`
	Width int      `yaml:"width,omitempty"`
	Elem  *TypeRef `yaml:"elem,omitempty"`
}

// FieldDescriptor is one struct field, in declaration order.
type FieldDescriptor struct {
	Name string  `yaml:"name"`
	Type TypeRef `yaml:"type"`
}

// StructDescriptor describes a struct type as an ordered field list.
type StructDescriptor struct {
	Name   string            `yaml:"name"`
	Fields []FieldDescriptor `yaml:"fields"`
}

// VariantDescriptor is one variant of a tagged sum: a stable numeric tag
// (matching the wire protocol's variant-index encoding, §4.1) plus its
// payload shape. A unit variant (e.g. capability.Render) has a KindUnit
// Payload.
type VariantDescriptor struct {
	Name    string  `yaml:"name"`
	Tag     uint32  `yaml:"tag"`
	Payload TypeRef `yaml:"payload"`
}

// EnumDescriptor describes a tagged sum as an ordered variant list.
type EnumDescriptor struct {
	Name     string              `yaml:"name"`
	Variants []VariantDescriptor `yaml:"variants"`
}

// Descriptor is the full type graph reachable from an application's Event,
// ViewModel, Effect, Operation, and Output types.
type Descriptor struct {
	Structs []StructDescriptor `yaml:"structs"`
	Enums   []EnumDescriptor   `yaml:"enums"`
}

// EnumVariant is one case passed to Builder.AddEnum. Payload is the zero
// value of the variant's payload struct, or nil for a unit variant.
type EnumVariant struct {
	Name    string
	Tag     uint32
	Payload any
}

// Builder accumulates struct and enum descriptors as an application
// registers its types. A Builder from NewBuilder starts empty; one from
// BuiltinCatalogue (see catalogue.go) starts with the built-in capability
// catalogue already registered.
type Builder struct {
	structs map[string]StructDescriptor
	order   []string
	enums   []EnumDescriptor
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{structs: make(map[string]StructDescriptor)}
}

// AddStruct walks v's type (a struct, or pointer to one) by reflection and
// registers it, recursing into struct-typed fields. Returns a KindRef
// pointing at the registered name. Calling AddStruct twice for the same
// type is idempotent: the second call returns the same TypeRef without
// re-walking or re-ordering the descriptor.
func (b *Builder) AddStruct(v any) TypeRef {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return b.addStructType(t)
}

func (b *Builder) addStructType(t reflect.Type) TypeRef {
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	ref := TypeRef{Kind: KindRef, Name: name}
	if _, ok := b.structs[name]; ok {
		return ref
	}
	// Reserve the name before recursing so a self-referential struct
	// (a field whose type is the struct itself, e.g. via a slice) does
	// not recurse forever.
	b.structs[name] = StructDescriptor{Name: name}
	b.order = append(b.order, name)

	var fields []FieldDescriptor
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		fields = append(fields, FieldDescriptor{Name: f.Name, Type: b.typeRefFor(f.Type)})
	}
	b.structs[name] = StructDescriptor{Name: name, Fields: fields}
	return ref
}

func (b *Builder) typeRefFor(t reflect.Type) TypeRef {
	switch t.Kind() {
	case reflect.String:
		return TypeRef{Kind: KindString}
	case reflect.Bool:
		return TypeRef{Kind: KindBool}
	case reflect.Uint8, reflect.Int8:
		return TypeRef{Kind: KindPrimitive, Width: 8}
	case reflect.Uint16, reflect.Int16:
		return TypeRef{Kind: KindPrimitive, Width: 16}
	case reflect.Uint32, reflect.Int32:
		return TypeRef{Kind: KindPrimitive, Width: 32}
	case reflect.Uint64, reflect.Int64, reflect.Uint, reflect.Int:
		return TypeRef{Kind: KindPrimitive, Width: 64}
	case reflect.Float32:
		return TypeRef{Kind: KindPrimitive, Width: 32}
	case reflect.Float64:
		return TypeRef{Kind: KindPrimitive, Width: 64}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return TypeRef{Kind: KindBytes}
		}
		elem := b.typeRefFor(t.Elem())
		return TypeRef{Kind: KindSeq, Elem: &elem}
	case reflect.Map:
		// §4.1 has no native map rule; generated bindings model a map as
		// a sequence of (key, value) pairs, which is exactly how
		// capability.effect.go's encodeHeaders/decodeHeaders hand-roll it.
		elem := TypeRef{Kind: KindSeq}
		return TypeRef{Kind: KindSeq, Elem: &elem}
	case reflect.Pointer:
		inner := b.typeRefFor(t.Elem())
		return TypeRef{Kind: KindOption, Elem: &inner}
	case reflect.Struct:
		if t.NumField() == 0 {
			return TypeRef{Kind: KindUnit}
		}
		return b.addStructType(t)
	default:
		return TypeRef{Kind: KindOpaque, Name: t.String()}
	}
}

// AddEnum registers a tagged sum by name and its ordered variant list.
// Each variant whose Payload is non-nil has that payload walked with
// AddStruct; a nil Payload is recorded as a KindUnit variant (e.g.
// capability.Render, which carries no Output at all).
func (b *Builder) AddEnum(name string, variants ...EnumVariant) TypeRef {
	vs := make([]VariantDescriptor, 0, len(variants))
	for _, v := range variants {
		payload := TypeRef{Kind: KindUnit}
		if v.Payload != nil {
			t := reflect.TypeOf(v.Payload)
			for t.Kind() == reflect.Pointer {
				t = t.Elem()
			}
			payload = b.typeRefFor(t)
		}
		vs = append(vs, VariantDescriptor{Name: v.Name, Tag: v.Tag, Payload: payload})
	}
	b.enums = append(b.enums, EnumDescriptor{Name: name, Variants: vs})
	return TypeRef{Kind: KindRef, Name: name}
}

// Build returns the accumulated Descriptor. Structs are emitted in
// registration order (not map iteration order); enums are emitted in the
// order AddEnum was called.
func (b *Builder) Build() Descriptor {
	structs := make([]StructDescriptor, 0, len(b.order))
	for _, name := range b.order {
		structs = append(structs, b.structs[name])
	}
	enums := make([]EnumDescriptor, len(b.enums))
	copy(enums, b.enums)
	return Descriptor{Structs: structs, Enums: enums}
}
