package oodle1

import (
	"fmt"
	"io"
)

// repeatCodeCount is the length-code alphabet: code 0 means literal, codes
// 1..64 index repeatLengthTable.
const repeatCodeCount = 65

var repeatLengthTable = [repeatCodeCount]uint32{
	0, 2, 3, 4, 5, 6, 7, 8,
	9, 10, 11, 12, 13, 14, 15, 16,
	17, 18, 19, 20, 21, 22, 23, 24,
	25, 26, 27, 28, 29, 30, 31, 32,
	33, 34, 35, 36, 37, 38, 39, 40,
	41, 42, 43, 44, 45, 46, 47, 48,
	49, 50, 51, 52, 53, 54, 55, 56,
	57, 58, 59, 60, 61, 128, 192, 256, 512,
}

// Decompressor decodes one substream, one token per Decompress call. It
// owns its coder instances and borrows the shared Bitstream; the caller
// owns the output buffer and loops until the known decompressed size is
// reached.
type Decompressor struct {
	bs *Bitstream

	litDecoders    [4]symbolCoder
	lenDecoders    [repeatCodeCount]symbolCoder
	off1Decoder    symbolCoder
	off4Decoders   [256]symbolCoder
	off1024Decoder symbolCoder

	windowSize          uint32
	litAlphabetSize     uint32
	offset1AlphabetSize uint32

	bytesOutput    uint32
	lastRepeatCode uint32
}

// NewDecompressor builds the coder bank described by the header. All coder
// tables are sized here; Decompress itself does not allocate.
func NewDecompressor(bs *Bitstream, hdr Header) (*Decompressor, error) {
	if err := hdr.validate(); err != nil {
		return nil, err
	}

	d := &Decompressor{
		bs: bs,

		windowSize:      hdr.WindowSize,
		litAlphabetSize: hdr.LitAlphabetSize,
	}

	for i := range d.litDecoders {
		d.litDecoders[i] = newSymbolCoder(hdr.LitAlphabetSize, hdr.UniqueLitCount)
	}

	// Length coders come in four groups of sixteen, selected by the
	// previous token's length code; coder 64 shares group 3's count.
	for group := 0; group < 4; group++ {
		for i := 0; i < 16; i++ {
			d.lenDecoders[group*16+i] = newSymbolCoder(repeatCodeCount, hdr.UniqueRepLens[group])
		}
	}
	d.lenDecoders[64] = newSymbolCoder(repeatCodeCount, hdr.UniqueRepLens[3])

	d.offset1AlphabetSize = hdr.WindowSize + 1
	if d.offset1AlphabetSize > 4 {
		d.offset1AlphabetSize = 4
	}

	off4AlphabetSize := hdr.WindowSize/4 + 1
	if off4AlphabetSize > 256 {
		off4AlphabetSize = 256
	}

	d.off1Decoder = newSymbolCoder(d.offset1AlphabetSize, d.offset1AlphabetSize)
	for i := range d.off4Decoders {
		d.off4Decoders[i] = newSymbolCoder(off4AlphabetSize, off4AlphabetSize)
	}
	d.off1024Decoder = newSymbolCoder(hdr.WindowSize/1024+1, hdr.Largest1KOffset+1)

	return d, nil
}

// BytesOutput reports how many bytes have been decoded so far.
func (d *Decompressor) BytesOutput() uint32 {
	return d.bytesOutput
}

// Decompress decodes one token into out, which must be the substream's
// whole output buffer: copy-runs read back into the already-decoded
// prefix. It returns the number of bytes appended, at least 1.
func (d *Decompressor) Decompress(out []byte) (int, error) {
	lenCode, err := d.lenDecoders[d.lastRepeatCode].decode(d.bs, repeatCodeCount)
	if err != nil {
		return 0, fmt.Errorf("repeat length code: %w", err)
	}

	d.lastRepeatCode = lenCode

	if lenCode == 0 {
		lit, err := d.litDecoders[d.bytesOutput&0x03].decode(d.bs, d.litAlphabetSize)
		if err != nil {
			return 0, fmt.Errorf("literal: %w", err)
		}

		if uint64(d.bytesOutput) >= uint64(len(out)) {
			return 0, io.ErrShortBuffer
		}

		out[d.bytesOutput] = byte(lit)
		d.bytesOutput++

		return 1, nil
	}

	length := repeatLengthTable[lenCode]

	effectiveWindow := d.windowSize
	if d.bytesOutput < effectiveWindow {
		effectiveWindow = d.bytesOutput
	}

	off1, err := d.off1Decoder.decode(d.bs, d.offset1AlphabetSize)
	if err != nil {
		return 0, fmt.Errorf("1-byte offset: %w", err)
	}

	off1k, err := d.off1024Decoder.decode(d.bs, effectiveWindow/1024+1)
	if err != nil {
		return 0, fmt.Errorf("1k offset: %w", err)
	}
	if off1k >= uint32(len(d.off4Decoders)) {
		return 0, fmt.Errorf("%w: 1k offset %d", ErrInvalidOffset, off1k)
	}

	off4AlphabetSize := effectiveWindow/4 + 1
	if off4AlphabetSize > 256 {
		off4AlphabetSize = 256
	}

	off4, err := d.off4Decoders[off1k].decode(d.bs, off4AlphabetSize)
	if err != nil {
		return 0, fmt.Errorf("4-byte offset: %w", err)
	}

	offset := off1k*1024 + off4*4 + off1 + 1
	if offset > effectiveWindow {
		return 0, fmt.Errorf("%w: offset %d, window %d", ErrInvalidOffset, offset, effectiveWindow)
	}

	if uint64(d.bytesOutput)+uint64(length) > uint64(len(out)) {
		return 0, io.ErrShortBuffer
	}

	// Strict forward byte copy: when offset < length each written byte is
	// read again later in the same run.
	pos := d.bytesOutput
	for i := uint32(0); i < length; i++ {
		out[pos+i] = out[pos+i-offset]
	}

	d.bytesOutput += length

	return int(length), nil
}
