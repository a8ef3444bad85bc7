package kumitate

import (
	"fmt"
	"reflect"
)

// componentValue is one component on its way into storage. typ is the
// column the value is written to and always equals val.Type().
type componentValue struct {
	typ reflect.Type
	val reflect.Value
}

// typedValue wraps a component whose type is known statically. Interface
// typed components keep their interface type instead of the dynamic one.
func typedValue[T any](p *T) componentValue {
	return componentValue{typ: reflect.TypeFor[T](), val: reflect.ValueOf(p).Elem()}
}

// dynamicValue wraps a component whose type is only known at run time.
func dynamicValue(v any) componentValue {
	if v == nil {
		panic("kumitate: nil component")
	}
	rv := reflect.ValueOf(v)
	return componentValue{typ: rv.Type(), val: rv}
}

// Bundle is a group of components that is spawned or inserted as a single
// unit. Use the statically typed Bundle1..Bundle4 when the component set is
// known at compile time, and DynamicBundle when it is assembled at the call
// site.
type Bundle interface {
	appendComponents(dst []componentValue) []componentValue
}

// DynamicBundle is a bundle whose component set is decided at the call site.
// Every element is stored under its dynamic type; nil elements and repeated
// types panic when the bundle is used.
type DynamicBundle []any

// Components returns a DynamicBundle holding the given component values.
func Components(components ...any) DynamicBundle {
	return DynamicBundle(components)
}

func (b DynamicBundle) appendComponents(dst []componentValue) []componentValue {
	for _, c := range b {
		dst = append(dst, dynamicValue(c))
	}
	return dst
}

// Bundle1 is a statically typed bundle of one component.
type Bundle1[T1 any] struct {
	C1 T1
}

// B1 returns a Bundle1 holding c1.
func B1[T1 any](c1 T1) Bundle1[T1] {
	return Bundle1[T1]{C1: c1}
}

func (b Bundle1[T1]) appendComponents(dst []componentValue) []componentValue {
	return append(dst, typedValue(&b.C1))
}

// Bundle2 is a statically typed bundle of two components.
type Bundle2[T1, T2 any] struct {
	C1 T1
	C2 T2
}

// B2 returns a Bundle2 holding c1 and c2.
func B2[T1, T2 any](c1 T1, c2 T2) Bundle2[T1, T2] {
	return Bundle2[T1, T2]{C1: c1, C2: c2}
}

func (b Bundle2[T1, T2]) appendComponents(dst []componentValue) []componentValue {
	return append(dst, typedValue(&b.C1), typedValue(&b.C2))
}

// Bundle3 is a statically typed bundle of three components.
type Bundle3[T1, T2, T3 any] struct {
	C1 T1
	C2 T2
	C3 T3
}

// B3 returns a Bundle3 holding c1, c2 and c3.
func B3[T1, T2, T3 any](c1 T1, c2 T2, c3 T3) Bundle3[T1, T2, T3] {
	return Bundle3[T1, T2, T3]{C1: c1, C2: c2, C3: c3}
}

func (b Bundle3[T1, T2, T3]) appendComponents(dst []componentValue) []componentValue {
	return append(dst, typedValue(&b.C1), typedValue(&b.C2), typedValue(&b.C3))
}

// Bundle4 is a statically typed bundle of four components.
type Bundle4[T1, T2, T3, T4 any] struct {
	C1 T1
	C2 T2
	C3 T3
	C4 T4
}

// B4 returns a Bundle4 holding c1 through c4.
func B4[T1, T2, T3, T4 any](c1 T1, c2 T2, c3 T3, c4 T4) Bundle4[T1, T2, T3, T4] {
	return Bundle4[T1, T2, T3, T4]{C1: c1, C2: c2, C3: c3, C4: c4}
}

func (b Bundle4[T1, T2, T3, T4]) appendComponents(dst []componentValue) []componentValue {
	return append(dst, typedValue(&b.C1), typedValue(&b.C2), typedValue(&b.C3), typedValue(&b.C4))
}

// bundleValues flattens a bundle. A nil Bundle interface is a caller bug.
func bundleValues(b Bundle, dst []componentValue) []componentValue {
	if b == nil {
		panic("kumitate: nil bundle")
	}
	return b.appendComponents(dst)
}

// duplicateComponentPanic reports a component type that appears twice in
// one bundle.
func duplicateComponentPanic(t reflect.Type) {
	panic(fmt.Sprintf("kumitate: duplicate component type %s in bundle", t))
}
