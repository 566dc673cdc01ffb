package oodle1

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func multiStreamHeader() Header {
	return Header{
		WindowSize:      1024,
		LitAlphabetSize: 256,
		UniqueLitCount:  256,
		Largest1KOffset: 1,
		UniqueRepLens:   [4]uint32{65, 65, 65, 65},
	}
}

// multiStreamFixture holds two one-literal substreams sharing a bitstream:
// the second decompressor starts fresh while the bit cursor carries on.
var multiStreamFixture = []byte{0x01, 0x00, 0x03, 0xBE, 0x00, 0x00, 0x00, 0x00}

func TestReaderMultiStreamHandoff(t *testing.T) {
	r := require.New(t)

	hdr := multiStreamHeader()
	streams := []Stream{
		{Header: hdr, Size: 1},
		{Header: hdr, Size: 1},
	}

	rd, err := NewReader(bytes.NewReader(multiStreamFixture), streams)
	r.NoError(err)

	out, err := io.ReadAll(rd)
	r.NoError(err)
	r.Equal([]byte("AB"), out)
}

func TestDecode(t *testing.T) {
	r := require.New(t)

	testCases := []struct {
		name string

		payload []byte
		streams []Stream
		want    []byte

		checkErr func(err error, msgAndArgs ...interface{})
	}{
		{
			name:    "two_substreams",
			payload: multiStreamFixture,
			streams: []Stream{
				{Header: multiStreamHeader(), Size: 1},
				{Header: multiStreamHeader(), Size: 1},
			},
			want:     []byte("AB"),
			checkErr: r.NoError,
		},
		{
			name:    "overlapping_copy",
			payload: overlapFixture,
			streams: []Stream{
				{Header: testHeader(), Size: 3},
			},
			want:     []byte{0x11, 0x11, 0x11},
			checkErr: r.NoError,
		},
		{
			name:     "no_substreams",
			payload:  nil,
			streams:  nil,
			want:     nil,
			checkErr: r.NoError,
		},
		{
			name:    "truncated_payload",
			payload: []byte{0x01, 0x00, 0x03, 0xBE},
			streams: []Stream{
				{Header: multiStreamHeader(), Size: 3},
			},
			checkErr: func(err error, msgAndArgs ...interface{}) {
				r.ErrorIs(err, ErrTruncatedStream, msgAndArgs...)
			},
		},
		{
			name:    "bad_header",
			payload: multiStreamFixture,
			streams: []Stream{
				{Header: Header{}, Size: 1},
			},
			checkErr: func(err error, msgAndArgs ...interface{}) {
				r.ErrorIs(err, ErrInvalidHeader, msgAndArgs...)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer

			err := Decode(bytes.NewReader(tc.payload), &out, tc.streams)
			tc.checkErr(err)

			if len(tc.want) > 0 {
				r.Equal(tc.want, out.Bytes())
			}
		})
	}
}

func TestReaderServesPartialReads(t *testing.T) {
	r := require.New(t)

	rd, err := NewReader(bytes.NewReader(overlapFixture), []Stream{
		{Header: testHeader(), Size: 3},
	})
	r.NoError(err)

	p := make([]byte, 1)
	for _, want := range []byte{0x11, 0x11, 0x11} {
		n, err := rd.Read(p)
		r.NoError(err)
		r.Equal(1, n)
		r.Equal(want, p[0])
	}

	_, err = rd.Read(p)
	r.ErrorIs(err, io.EOF)
}

func BenchmarkDecode(b *testing.B) {
	hdr := multiStreamHeader()
	streams := []Stream{
		{Header: hdr, Size: 1},
		{Header: hdr, Size: 1},
	}

	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		var out bytes.Buffer

		err := Decode(bytes.NewReader(multiStreamFixture), &out, streams)
		if err != nil {
			b.Fatal(err)
		}

		b.SetBytes(int64(out.Len()))
	}
}
