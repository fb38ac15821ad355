package script

// htmlNames maps DOM property names to their HTML attribute spelling.
var htmlNames = map[string]string{
	"crossOrigin":    "crossorigin",
	"noModule":       "nomodule",
	"referrerPolicy": "referrerpolicy",
	"fetchPriority":  "fetchpriority",
}

// AttributeName returns the HTML attribute name for a prop name.
func AttributeName(prop string) string {
	if n, ok := htmlNames[prop]; ok {
		return n
	}
	return prop
}

// IsBooleanAttribute reports whether the HTML attribute name is a boolean
// attribute of script elements.
func IsBooleanAttribute(name string) bool {
	switch name {
	case "async", "defer", "nomodule":
		return true
	}
	return false
}
