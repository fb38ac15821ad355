package script

// Kind discriminates script elements from everything else.
type Kind int

const (
	KindOther Kind = iota
	KindScript
)

// Attr is a single named property value.
type Attr struct {
	Name  string
	Value Value
}

// Props is an ordered property bag. Order is declaration order and names
// are not required to be unique.
type Props []Attr

// Lookup returns the first property named name.
func (p Props) Lookup(name string) (Value, bool) {
	for _, a := range p {
		if a.Name == name {
			return a.Value, true
		}
	}
	return Value{}, false
}

// Get returns the first property named name, or the null value.
func (p Props) Get(name string) Value {
	v, _ := p.Lookup(name)
	return v
}

// Has reports whether a property named name exists.
func (p Props) Has(name string) bool {
	_, ok := p.Lookup(name)
	return ok
}

// Set replaces the first property named name in place, or appends it.
func (p Props) Set(name string, v Value) Props {
	for i := range p {
		if p[i].Name == name {
			p[i].Value = v
			return p
		}
	}
	return append(p, Attr{Name: name, Value: v})
}

// Delete removes every property named name.
func (p Props) Delete(name string) Props {
	out := p[:0]
	for _, a := range p {
		if a.Name != name {
			out = append(out, a)
		}
	}
	return out
}

// Clone returns a copy that shares no backing array with p.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	copy(out, p)
	return out
}

// Child is either a text child or a nested element.
type Child struct {
	Text string
	Node *Node
}

// Text returns a text child.
func Text(s string) Child { return Child{Text: s} }

// Element returns a nested element child.
func Element(n *Node) Child { return Child{Node: n} }

// IsText reports whether the child is a string.
func (c Child) IsText() bool { return c.Node == nil }

// Node is an element in a rendered document: a tag, an ordered property
// bag, and children.
type Node struct {
	Kind Kind
	// Tag is the element name. It is "script" for KindScript nodes.
	Tag string
	// Key is the element identity key used by the rendering layer.
	Key      string
	Props    Props
	Children []Child
	// InnerHTML is written verbatim by the renderer, without escaping.
	InnerHTML string
}

// NewScript returns a script node with the given props.
func NewScript(props ...Attr) *Node {
	return &Node{Kind: KindScript, Tag: "script", Props: Props(props)}
}

// NewInline returns a script node whose single child is code.
func NewInline(code string, props ...Attr) *Node {
	n := NewScript(props...)
	n.Children = []Child{Text(code)}
	return n
}

// IsScript reports whether n is a script element.
func IsScript(n *Node) bool {
	return n != nil && n.Kind == KindScript
}

// InlineCode returns the script's code if its single child is a string.
func (n *Node) InlineCode() (string, bool) {
	if n == nil || len(n.Children) != 1 || !n.Children[0].IsText() {
		return "", false
	}
	return n.Children[0].Text, true
}

// Clone returns a shallow copy of n with its own props and children slices.
// Nested element children are shared.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Props = n.Props.Clone()
	if n.Children != nil {
		c.Children = make([]Child, len(n.Children))
		copy(c.Children, n.Children)
	}
	return &c
}
