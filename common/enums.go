// Package common holds small shared enums so that configuration,
// conversion and command layers can agree on them without importing
// each other.
package common

//go:generate go tool go-enum --marshal

// Specification of image resizing mode for background rasters that do
// not match the device resolution.
// ENUM(none, keepAR, stretch)
type ImageResizeMode int

// Specification of the note layout to generate.
// ENUM(template, paginated)
type NoteShape int
