package oodle1

import (
	"encoding/binary"
	"fmt"
)

// HeaderLen is the encoded size of a substream header.
const HeaderLen = 12

// Header describes one compressed substream. On disk it is three
// little-endian 32-bit words immediately preceding the substream's payload.
type Header struct {
	// WindowSize is the maximum copy distance, at most 2^23-1.
	WindowSize uint32

	// LitAlphabetSize is the literal alphabet bound, at most 256.
	LitAlphabetSize uint32

	// UniqueLitCount is the number of distinct literals that occur.
	UniqueLitCount uint32

	// Largest1KOffset is the highest 1-KiB offset unit used by any copy.
	Largest1KOffset uint32

	// UniqueRepLens holds the distinct repeat-length-code counts for the
	// four groups of length coders.
	UniqueRepLens [4]uint32
}

// ParseHeader decodes a 12-byte on-disk header.
func ParseHeader(raw []byte) (Header, error) {
	if len(raw) < HeaderLen {
		return Header{}, fmt.Errorf("%w: %d header bytes", ErrInvalidHeader, len(raw))
	}

	return HeaderFromWords(
		binary.LittleEndian.Uint32(raw[0:4]),
		binary.LittleEndian.Uint32(raw[4:8]),
		binary.LittleEndian.Uint32(raw[8:12]),
	)
}

// HeaderFromWords decodes a header from its three words in native order.
// Word 1 bits 9..18 are reserved and ignored. The repeat-length counts are
// taken most-significant byte first from word 2.
func HeaderFromWords(w0, w1, w2 uint32) (Header, error) {
	h := Header{
		LitAlphabetSize: w0 & 0x1FF,
		WindowSize:      w0 >> 9,
		UniqueLitCount:  w1 & 0x1FF,
		Largest1KOffset: w1 >> 19,
		UniqueRepLens: [4]uint32{
			(w2 >> 24) & 0xFF,
			(w2 >> 16) & 0xFF,
			(w2 >> 8) & 0xFF,
			w2 & 0xFF,
		},
	}

	return h, h.validate()
}

func (h Header) validate() error {
	if h.LitAlphabetSize == 0 || h.LitAlphabetSize > 256 {
		return fmt.Errorf("%w: literal alphabet size %d", ErrInvalidHeader, h.LitAlphabetSize)
	}

	if h.WindowSize == 0 || h.WindowSize > 1<<23-1 {
		return fmt.Errorf("%w: window size %d", ErrInvalidHeader, h.WindowSize)
	}

	if h.UniqueLitCount == 0 || h.UniqueLitCount > h.LitAlphabetSize {
		return fmt.Errorf("%w: %d unique literals in alphabet of %d",
			ErrInvalidHeader, h.UniqueLitCount, h.LitAlphabetSize)
	}

	if h.Largest1KOffset > h.WindowSize/1024 {
		return fmt.Errorf("%w: largest 1k offset %d exceeds window %d",
			ErrInvalidHeader, h.Largest1KOffset, h.WindowSize)
	}

	for i, n := range h.UniqueRepLens {
		if n > repeatCodeCount {
			return fmt.Errorf("%w: %d unique repeat lengths in group %d",
				ErrInvalidHeader, n, i)
		}
	}

	return nil
}
