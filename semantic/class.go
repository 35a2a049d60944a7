// Copyright © 2024 The ELPS authors

package semantic

import (
	"iter"

	"github.com/luthersystems/jsscope/ast"
)

// ElementKind classifies a class element.
type ElementKind uint8

const (
	ElementProperty ElementKind = iota
	ElementMethod
	ElementGetter
	ElementSetter
)

func (k ElementKind) String() string {
	switch k {
	case ElementProperty:
		return "property"
	case ElementMethod:
		return "method"
	case ElementGetter:
		return "getter"
	case ElementSetter:
		return "setter"
	default:
		return "unknown"
	}
}

// Element is a named member of a class body. Private element names keep
// their leading '#'.
type Element struct {
	Name      string
	Span      ast.Span
	Node      ast.NodeID // the MethodDefinition or PropertyDefinition
	IsPrivate bool
	Static    bool
	Kind      ElementKind
}

// PrivateReference is a use of a private name such as this.#x or #x in o.
// It is recorded against the innermost enclosing class. Class is the class
// whose element list defines the name, which may be a lexically enclosing
// class, or NoClass when no enclosing class declares it.
type PrivateReference struct {
	Node     ast.NodeID // the PrivateIdentifier
	Name     string     // with the leading '#'
	Span     ast.Span
	Class    ClassID
	Elements []ElementID
}

// Resolved reports whether an enclosing class declares the name.
func (r *PrivateReference) Resolved() bool {
	return r.Class != NoClass
}

// Class is one class declaration or expression.
type Class struct {
	Parent ClassID // lexically enclosing class
	Node   ast.NodeID
	Scope  ScopeID

	Elements    []Element
	PrivateRefs []PrivateReference
}

// ClassTable is the append-only table of classes in a program.
type ClassTable struct {
	classes []Class
}

// NewClassTable returns an empty table.
func NewClassTable() *ClassTable {
	return &ClassTable{}
}

// DeclareClass appends a class nested lexically in parent.
func (t *ClassTable) DeclareClass(parent ClassID, node ast.NodeID, scope ScopeID) ClassID {
	id := nextID[ClassID]("class", len(t.classes))
	if parent != NoClass && parent >= id {
		invariantf("declare class", "parent class %d does not exist", parent)
	}
	t.classes = append(t.classes, Class{Parent: parent, Node: node, Scope: scope})
	return id
}

// Class returns the class for id.
func (t *ClassTable) Class(id ClassID) *Class {
	if int(id) >= len(t.classes) {
		invariantf("class", "class id %d out of bounds (len %d)", id, len(t.classes))
	}
	return &t.classes[id]
}

// Len returns the number of classes.
func (t *ClassTable) Len() int {
	return len(t.classes)
}

// All yields every class in declaration order.
func (t *ClassTable) All() iter.Seq2[ClassID, *Class] {
	return func(yield func(ClassID, *Class) bool) {
		for i := range t.classes {
			if !yield(ClassID(i), &t.classes[i]) {
				return
			}
		}
	}
}

// AddElement appends an element to class.
func (t *ClassTable) AddElement(class ClassID, e Element) ElementID {
	c := t.Class(class)
	id := nextID[ElementID]("element", len(c.Elements))
	c.Elements = append(c.Elements, e)
	return id
}

// Element returns element id of class.
func (t *ClassTable) Element(class ClassID, id ElementID) *Element {
	c := t.Class(class)
	if int(id) >= len(c.Elements) {
		invariantf("element", "element id %d out of bounds in class %d", id, class)
	}
	return &c.Elements[id]
}

// ElementIDs returns the elements of class named name. A property matches
// at most once; a getter and setter pair yields two ids.
func (t *ClassTable) ElementIDs(class ClassID, name string) []ElementID {
	var ids []ElementID
	for i, e := range t.Class(class).Elements {
		if e.Name != name {
			continue
		}
		ids = append(ids, ElementID(i))
		if e.Kind == ElementProperty || len(ids) == 2 {
			break
		}
	}
	return ids
}

// HasPrivateDefinition reports whether class itself declares the private
// name (given with its leading '#').
func (t *ClassTable) HasPrivateDefinition(class ClassID, name string) bool {
	for _, e := range t.Class(class).Elements {
		if e.IsPrivate && e.Name == name {
			return true
		}
	}
	return false
}

// Ancestors yields class and then each lexically enclosing class.
func (t *ClassTable) Ancestors(class ClassID) iter.Seq[ClassID] {
	return func(yield func(ClassID) bool) {
		for id := class; id != NoClass; id = t.Class(id).Parent {
			if !yield(id) {
				return
			}
		}
	}
}

// AddPrivateReference records ref against class.
func (t *ClassTable) AddPrivateReference(class ClassID, ref PrivateReference) {
	c := t.Class(class)
	c.PrivateRefs = append(c.PrivateRefs, ref)
}

// PrivateReferences returns the private name uses recorded against class.
func (t *ClassTable) PrivateReferences(class ClassID) []PrivateReference {
	return t.Class(class).PrivateRefs
}

// ResolvePrivate finds the class, starting at class and walking outward,
// that declares the private name, and the matching elements.
func (t *ClassTable) ResolvePrivate(class ClassID, name string) (ClassID, []ElementID) {
	for id := range t.Ancestors(class) {
		if !t.HasPrivateDefinition(id, name) {
			continue
		}
		var ids []ElementID
		for _, eid := range t.ElementIDs(id, name) {
			if t.classes[id].Elements[eid].IsPrivate {
				ids = append(ids, eid)
			}
		}
		return id, ids
	}
	return NoClass, nil
}
