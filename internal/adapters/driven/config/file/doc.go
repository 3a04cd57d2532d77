// Package file implements the file-system backed configuration adapters:
// TOML application settings with environment overlay, and locale-scoped
// prompt template files with embedded defaults.
package file
