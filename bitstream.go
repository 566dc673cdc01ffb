package oodle1

import (
	"errors"
	"io"
)

const (
	// ingestThreshold is the modulus at or below which the shift register no
	// longer holds enough precision and more input must be shifted in.
	ingestThreshold = 0x800000

	initialModulus = 0x80
)

// Bitstream reads a byte stream as one arbitrary-precision fraction in
// [0, 1). The shift register sr holds the unconsumed high bits of the
// fraction; modulus is the full-scale value those bits are measured
// against, so sr/modulus is the current fractional remainder.
//
// Each input byte is split 7+1: the high 7 bits enter the shift register
// immediately, the lowest bit is latched and shifted in only when the next
// byte is ingested. Compressed payloads must be zero-padded to a multiple
// of four bytes; running off the end of input yields ErrTruncatedStream.
type Bitstream struct {
	inStream io.ByteReader

	sr      uint32
	modulus uint32
	lsb     byte
}

// NewBitstream consumes the first payload byte and primes the register.
// One Bitstream may be shared by several consecutive substreams.
func NewBitstream(inStream io.ByteReader) (*Bitstream, error) {
	b, err := inStream.ReadByte()
	if err != nil {
		return nil, truncated(err)
	}

	return &Bitstream{
		inStream: inStream,

		sr:      uint32(b >> 1),
		modulus: initialModulus,
		lsb:     b & 0x01,
	}, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) {
		return ErrTruncatedStream
	}

	return err
}

func (bs *Bitstream) ingest() error {
	for bs.modulus <= ingestThreshold {
		b, err := bs.inStream.ReadByte()
		if err != nil {
			return truncated(err)
		}

		bs.sr = (bs.sr << 1) | uint32(bs.lsb)
		bs.sr = (bs.sr << 7) | uint32(b>>1)
		bs.lsb = b & 0x01
		bs.modulus <<= 8
	}

	return nil
}

// Peek returns the fractional value scaled to [0, one) without consuming
// anything. The caller narrows the range afterwards with Consume.
func (bs *Bitstream) Peek(one uint32) (uint32, error) {
	if err := bs.ingest(); err != nil {
		return 0, err
	}

	scale := bs.modulus / one
	z := bs.sr / scale
	if z > one-1 {
		z = one - 1
	}

	return z, nil
}

// Consume narrows the range to [minZ, minZ+spanZ) out of one. When the
// consumed span reaches the top of the alphabet the peeked value may have
// been clamped, so only the consumed portion is subtracted from the
// modulus instead of rescaling to the span.
func (bs *Bitstream) Consume(minZ, spanZ, one uint32) {
	scale := bs.modulus / one
	scaledZ := minZ * scale
	bs.sr -= scaledZ

	if minZ < one-spanZ {
		bs.modulus = spanZ * scale
	} else {
		bs.modulus -= scaledZ
	}
}

// Get is Peek followed by a unit-span Consume.
func (bs *Bitstream) Get(one uint32) (uint32, error) {
	if err := bs.ingest(); err != nil {
		return 0, err
	}

	scale := bs.modulus / one
	z := bs.sr / scale
	if z > one-1 {
		z = one - 1
	}

	bs.sr -= z * scale
	if z < one-1 {
		bs.modulus = scale
	} else {
		bs.modulus -= z * scale
	}

	return z, nil
}
