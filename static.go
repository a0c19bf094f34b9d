package main

import _ "embed"

// The web UI ships inside the binary so the studio is a single file.
var (
	//go:embed web/index.html
	indexHTML string

	//go:embed web/style.css
	styleCSS string

	//go:embed web/app.js
	appJS string
)
