package oodle1

import "io"

// Stream describes one substream of a physical block: its header and its
// exact decompressed size. The scheme has no end-of-stream marker, so the
// size must come from the container.
type Stream struct {
	Header Header
	Size   uint32
}

// Reader decompresses a sequence of substreams from one shared bitstream
// and serves the result as an io.Reader. Substream transitions happen on
// output byte boundaries: each substream gets a fresh Decompressor while
// the bitstream keeps its position.
type Reader struct {
	bs      *Bitstream
	streams []Stream

	dec    *Decompressor
	buf    []byte
	served int
}

// NewReader constructs a Reader over inStream. The payload must already be
// positioned past any container framing; headers travel in streams, not in
// the bitstream itself.
func NewReader(inStream io.ByteReader, streams []Stream) (*Reader, error) {
	if len(streams) == 0 {
		return &Reader{}, nil
	}

	bs, err := NewBitstream(inStream)
	if err != nil {
		return nil, err
	}

	return &Reader{
		bs:      bs,
		streams: streams,
	}, nil
}

func (r *Reader) startStream() error {
	if len(r.streams) == 0 {
		return io.EOF
	}

	s := r.streams[0]
	r.streams = r.streams[1:]

	dec, err := NewDecompressor(r.bs, s.Header)
	if err != nil {
		return err
	}

	r.dec = dec
	r.buf = make([]byte, s.Size)
	r.served = 0

	return nil
}

func (r *Reader) Read(p []byte) (n int, err error) {
	for n < len(p) {
		if r.dec == nil {
			if err = r.startStream(); err != nil {
				return n, err
			}
		}

		decoded := int(r.dec.BytesOutput())

		if r.served < decoded {
			k := copy(p[n:], r.buf[r.served:decoded])
			n += k
			r.served += k

			continue
		}

		if decoded == len(r.buf) {
			r.dec = nil

			continue
		}

		if _, err = r.dec.Decompress(r.buf); err != nil {
			return n, err
		}
	}

	return n, nil
}

// Decode decompresses every substream in order and writes the output to
// outStream.
func Decode(inStream io.ByteReader, outStream io.Writer, streams []Stream) error {
	r, err := NewReader(inStream, streams)
	if err != nil {
		return err
	}

	_, err = io.Copy(outStream, r)

	return err
}
