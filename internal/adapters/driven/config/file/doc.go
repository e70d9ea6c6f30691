// Package file provides file-based configuration loading.
// Settings live in a TOML file; every field has a working default so
// a missing file still yields a usable configuration.
package file
