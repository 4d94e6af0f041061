// Package thremote runs the compressor role of the hashing pipeline
// behind a QUIC connection.
//
// Each bidirectional stream is one independent compression link.
// A QUIC stream is an ordered, reliable byte FIFO, which is exactly the
// discipline [treehash.CompressLink] requires, so the wire protocol
// carries no tags or sequence numbers: the i-th response on a stream
// answers the i-th request.
package thremote

import (
	"encoding/binary"
	"io"

	"github.com/gordian-engine/treehash"
)

// ALPN is the TLS next-protocol identifier for the compression service.
const ALPN = "treehash-compress/1"

// Wire format, all fields little-endian.
//
// A request is the full input of one block compression:
// the 32-byte chaining value, the 64-byte message block,
// the 8-byte counter, and the 4-byte flags.
// The block length is fixed at 64 and is not carried.
//
// A response is the 32-byte output chaining value.
const (
	requestSize  = 32 + 64 + 8 + 4
	responseSize = 32
)

func marshalRequest(dst *[requestSize]byte, req treehash.CompressRequest) {
	off := 0
	for _, w := range req.CV {
		binary.LittleEndian.PutUint32(dst[off:], w)
		off += 4
	}
	for _, w := range req.Block {
		binary.LittleEndian.PutUint32(dst[off:], w)
		off += 4
	}
	binary.LittleEndian.PutUint64(dst[off:], req.Counter)
	off += 8
	binary.LittleEndian.PutUint32(dst[off:], req.Flags)
}

func parseRequest(frame *[requestSize]byte) treehash.CompressRequest {
	var req treehash.CompressRequest

	off := 0
	for i := range req.CV {
		req.CV[i] = binary.LittleEndian.Uint32(frame[off:])
		off += 4
	}
	for i := range req.Block {
		req.Block[i] = binary.LittleEndian.Uint32(frame[off:])
		off += 4
	}
	req.Counter = binary.LittleEndian.Uint64(frame[off:])
	off += 8
	req.Flags = binary.LittleEndian.Uint32(frame[off:])

	return req
}

func marshalResponse(dst *[responseSize]byte, cv [8]uint32) {
	for i, w := range cv {
		binary.LittleEndian.PutUint32(dst[4*i:], w)
	}
}

func parseResponse(frame *[responseSize]byte) [8]uint32 {
	var cv [8]uint32
	for i := range cv {
		cv[i] = binary.LittleEndian.Uint32(frame[4*i:])
	}
	return cv
}

// readRequest reads one request frame from r.
// A clean EOF before the first byte is returned as io.EOF,
// so the caller can distinguish an orderly stream close
// from a truncated frame.
func readRequest(r io.Reader, frame *[requestSize]byte) error {
	if _, err := io.ReadFull(r, frame[:]); err != nil {
		return err
	}
	return nil
}
