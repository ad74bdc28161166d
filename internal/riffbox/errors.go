package riffbox

import "errors"

var (
	// ErrEmptyInput is returned when an ingestion call receives no paths.
	ErrEmptyInput = errors.New("empty input: no paths given")
	// ErrCollectionNotFound is returned when no stored collection has the requested id.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrVideoNotFound is returned when a collection has no video with the requested path.
	ErrVideoNotFound = errors.New("video not found")
	// ErrInvalidStyle is returned for a style name outside the closed enumeration.
	ErrInvalidStyle = errors.New("invalid style")
)
