// Package config loads the cbrsa-go command line settings from flags, the
// CBRSA_ environment and an optional cbrsa.{yaml,json,toml} file.
package config
