package tiling

import "fmt"

// ConfigError reports an invalid tiling parameter, raised before any I/O.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

// BandIndexError reports an out-of-range channel selection.
type BandIndexError struct {
	Index    int
	Channels int
}

func (e *BandIndexError) Error() string {
	return fmt.Sprintf("selected band index %d out of range [0..%d]", e.Index, e.Channels-1)
}

// PatternError reports an unknown or malformed token in a name pattern.
type PatternError struct {
	Token string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("unknown token %q in name pattern, allowed: {base} {y} {x} {row} {col} {i} {ext}", e.Token)
}

// FormatError reports a channel count the target format cannot carry,
// under the strict policy.
type FormatError struct {
	Channels int
	Ext      string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("incompatible channel count %d for %s; use .png/.tif or the auto policy", e.Channels, e.Ext)
}

// TileError reports a fatal failure while producing a primary tile. The
// coordinates are the tile's top-left corner in source pixels, so the
// caller can retry with a smaller tile size.
type TileError struct {
	X   int
	Y   int
	Err error
}

func (e *TileError) Error() string {
	return fmt.Sprintf("failed to generate tile at (y=%d, x=%d): %v", e.Y, e.X, e.Err)
}

func (e *TileError) Unwrap() error { return e.Err }
