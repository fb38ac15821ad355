package html

import (
	_ "embed"
)

// Skeleton for the preview page written by "safescript build --page".

//go:embed assets/page.html
var pageHTMLTemplate string
