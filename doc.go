// Package oodle1 decompresses the Oodle1 compression scheme used by Granny2
// asset containers.
//
// The decoder is three stacked layers: a fractional bitstream reader, an
// adaptive arithmetic-style symbol coder, and an LZ77 stage that composes
// several hundred symbol-coder instances into literal bytes and copy-runs.
// The scheme has no end-of-stream marker, so callers must supply the exact
// decompressed size of every substream.
//
// A physical block may hold several consecutive substreams sharing one
// bitstream; use Decode or NewReader with one Stream descriptor per
// substream.
package oodle1
