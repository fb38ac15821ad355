package script

// AttributeList is the scalar subset of a script's props, in declaration order.
type AttributeList []Attr

// Batch is an ordered list of scripts to load. Order is creation and
// append order at runtime.
type Batch []AttributeList

// Attributes returns the props of a script node that hold a string,
// boolean or number. Anything else (nested objects, callbacks, children)
// cannot be expressed in generated code and is dropped. Non-script nodes
// yield an empty list.
func Attributes(n *Node) AttributeList {
	if !IsScript(n) {
		return nil
	}
	var out AttributeList
	for _, a := range n.Props {
		if a.Value.IsScalar() {
			out = append(out, a)
		}
	}
	return out
}

// BatchOf extracts the attribute lists of nodes, one per node.
func BatchOf(nodes []*Node) Batch {
	b := make(Batch, len(nodes))
	for i, n := range nodes {
		b[i] = Attributes(n)
	}
	return b
}

// Get returns the first attribute named name, or the null value.
func (l AttributeList) Get(name string) Value {
	return Props(l).Get(name)
}
