package slidepaper

import (
	_ "embed"
)

//go:embed .version
var Version string

//go:embed slidepaper.toml
var DefaultConfig string
