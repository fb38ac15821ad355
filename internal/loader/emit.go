package loader

import (
	"strconv"
	"strings"

	"github.com/eljojo/safescript/internal/script"
)

// String serializes the program as an immediately-invoked function so the
// element variables never reach the global scope.
func (p Program) String() string {
	if len(p.Instrs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("(function () {\n")
	for _, in := range p.Instrs {
		switch in := in.(type) {
		case CreateElement:
			b.WriteString("  var " + in.Var + " = document.createElement('script');\n")
		case SetProperty:
			b.WriteString("  " + in.Var + "." + in.Name + "=" + literal(in.Value) + ";\n")
		case SetAttribute:
			b.WriteString("  " + in.Var + ".setAttribute(" + Quote(in.Name) + ", " + Quote(in.Value) + ");\n")
		case AppendToMarkerParent:
			b.WriteString("  var s = [" + strings.Join(in.Vars, ",") + "];\n")
			b.WriteString("  var p = document.getElementById(" + Quote(in.Marker) + ").parentNode;\n")
			b.WriteString("  s.forEach(function(si) {\n")
			b.WriteString("    p.appendChild(si);\n")
			b.WriteString("  });\n")
		}
	}
	b.WriteString("})()\n")
	return b.String()
}

// literal renders a property value: strings quoted, booleans and numbers raw.
func literal(v script.Value) string {
	switch v.Kind {
	case script.ValueString:
		return Quote(v.Str)
	case script.ValueBool:
		return strconv.FormatBool(v.Bool)
	case script.ValueNumber:
		return script.FormatNumber(v.Num)
	}
	return "null"
}

// Quote returns s as a single-quoted JavaScript string literal. Quotes,
// backslashes and line terminators are escaped, and so is '<' so the
// literal can never close the enclosing <script> element.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\u2028':
			b.WriteString(`\u2028`)
		case '\u2029':
			b.WriteString(`\u2029`)
		case '<':
			b.WriteString(`\x3C`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
