// Package loader generates inline script code that creates a batch of
// script elements and appends them next to a marker element, so the browser
// treats them as non-parser-inserted.
package loader

import (
	"strconv"

	"github.com/eljojo/safescript/internal/script"
)

// Instr is one step of a loader program.
type Instr interface {
	instr()
}

// CreateElement binds a new script element to Var.
type CreateElement struct {
	Var string
}

// SetProperty assigns a DOM property directly: Var.Name = Value.
type SetProperty struct {
	Var   string
	Name  string
	Value script.Value
}

// SetAttribute calls Var.setAttribute(Name, Value), with Value in string form.
type SetAttribute struct {
	Var   string
	Name  string
	Value string
}

// AppendToMarkerParent appends every element in Vars, in order, to the
// parent of the element whose id is Marker.
type AppendToMarkerParent struct {
	Vars   []string
	Marker string
}

func (CreateElement) instr()        {}
func (SetProperty) instr()          {}
func (SetAttribute) instr()         {}
func (AppendToMarkerParent) instr() {}

// Program is a compiled loader. The zero Program serializes to "".
type Program struct {
	Instrs []Instr
}

// IsScriptProperty reports whether name is a script element property that
// can be assigned directly. Other names only exist as string attributes.
func IsScriptProperty(name string) bool {
	switch name {
	case "id", "src", "integrity", "async", "defer", "noModule", "crossOrigin", "nonce":
		return true
	}
	return false
}

// Compile turns a batch into a loader program that appends to the parent
// of the element identified by marker. An empty batch compiles to an empty
// program.
func Compile(batch script.Batch, marker string) Program {
	if len(batch) == 0 {
		return Program{}
	}

	var p Program
	vars := make([]string, len(batch))
	for i, attrs := range batch {
		v := "s" + strconv.Itoa(i)
		vars[i] = v
		p.Instrs = append(p.Instrs, CreateElement{Var: v})
		for _, a := range attrs {
			if IsScriptProperty(a.Name) {
				p.Instrs = append(p.Instrs, SetProperty{Var: v, Name: a.Name, Value: a.Value})
			} else {
				p.Instrs = append(p.Instrs, SetAttribute{Var: v, Name: a.Name, Value: a.Value.Text()})
			}
		}
	}
	p.Instrs = append(p.Instrs, AppendToMarkerParent{Vars: vars, Marker: marker})
	return p
}

// Generate compiles and serializes a loader for batch. It returns "" for
// an empty batch, which callers treat as nothing to inject.
func Generate(batch script.Batch, marker string) string {
	return Compile(batch, marker).String()
}
