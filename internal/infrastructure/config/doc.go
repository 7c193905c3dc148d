// Package config loads and validates homegrid agent configuration.
//
// Configuration comes from a YAML file with environment variable overrides
// (HOMEGRID_SECTION_KEY pattern). Defaults are applied before the file is
// read, so a minimal config only needs the backend origin and token.
package config
