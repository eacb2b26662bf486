// Package common contains shared constants and sentinel errors used across
// moviebox components.
package common

// MetaDirName is the hidden per-folder directory holding cached metadata
// records and artwork. Archive exports never include it.
const MetaDirName = ".meta"

// ImageRoutePrefix is the HTTP prefix under which cached artwork is served,
// relative to the shared root.
const ImageRoutePrefix = "/metadata_img/"
