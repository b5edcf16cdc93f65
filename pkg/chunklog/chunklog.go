// Package chunklog stores the attributed chunks of one encode invocation as
// a compact binary log: a fixed header, length-delimited records and a CRC32
// tail, with the record body optionally zstd-compressed. Payload bytes stay
// opaque; the log frames them without reading them.
package chunklog

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/zstd"

	dynstruct "github.com/mfrager/dynamic-struct"
	"github.com/mfrager/dynamic-struct/internal/common"
)

const (
	MagicV1 = 0x314C5344 // "DSL1"
	Version = 1

	FlagZstd uint16 = 1 << 0

	headerSize = 8
)

var (
	ErrClosed   = errors.New("log writer closed")
	ErrNoNode   = errors.New("attribution without node")
	ErrBadMagic = errors.New("bad log magic")
	ErrCorrupt  = errors.New("corrupt log")
)

type Options struct {
	Zstd bool // compress the record body (headers stay plain)
}

// Record is one attributed chunk as stored in a log.
type Record struct {
	Path    string
	Kind    dynstruct.Kind
	Part    uint8
	Payload []byte
}

// Writer accumulates records and emits the framed log on Close. Records are
// buffered so the body can be compressed as one block.
type Writer struct {
	w      io.Writer
	opts   Options
	body   []byte
	crc    hash.Hash32
	closed bool
}

// NewWriter builds a log writer emitting to w.
func NewWriter(w io.Writer, opts Options) *Writer {
	return &Writer{w: w, opts: opts, crc: crc32.NewIEEE()}
}

// Record frames one attributed chunk into the log. The attribution must
// carry its node; a nodeless one is rejected before any bytes are buffered.
func (lw *Writer) Record(att dynstruct.Attribution, chunk []byte) error {
	if lw.closed {
		return ErrClosed
	}
	if att.Node == nil {
		return ErrNoNode
	}
	start := len(lw.body)
	lw.body = common.WriteVarUint(lw.body, uint64(len(att.Path)))
	lw.body = append(lw.body, att.Path...)
	lw.body = append(lw.body, byte(att.Node.Kind), byte(att.Part))
	lw.body = common.WriteVarUint(lw.body, uint64(len(chunk)))
	lw.body = append(lw.body, chunk...)
	lw.crc.Write(lw.body[start:])
	return nil
}

// Close terminates the record stream, appends the checksum and writes the
// whole log out.
func (lw *Writer) Close() error {
	if lw.closed {
		return ErrClosed
	}
	lw.closed = true

	// terminator: zero path length, then the CRC of all record bytes
	lw.body = append(lw.body, 0)
	lw.body = binary.LittleEndian.AppendUint32(lw.body, lw.crc.Sum32())

	var flags uint16
	body := lw.body
	if lw.opts.Zstd {
		flags |= FlagZstd
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return err
		}
		body = enc.EncodeAll(body, nil)
		enc.Close()
	}

	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:], MagicV1)
	binary.LittleEndian.PutUint16(header[4:], Version)
	binary.LittleEndian.PutUint16(header[6:], flags)
	if _, err := lw.w.Write(header[:]); err != nil {
		return err
	}
	_, err := lw.w.Write(body)
	return err
}

// Reader iterates a framed log: for r.Next() { r.Record() }, then r.Err().
type Reader struct {
	body []byte
	pos  int
	crc  hash.Hash32
	rec  Record
	err  error
	done bool
}

// NewReader reads the whole log from r, decompressing the body if flagged.
func NewReader(r io.Reader) (*Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < headerSize {
		return nil, ErrBadMagic
	}
	if binary.LittleEndian.Uint32(data[0:]) != MagicV1 {
		return nil, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint16(data[4:]); v != Version {
		return nil, fmt.Errorf("%w: version %d", ErrCorrupt, v)
	}
	flags := binary.LittleEndian.Uint16(data[6:])
	body := data[headerSize:]
	if flags&FlagZstd != 0 {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		body, err = dec.DecodeAll(body, nil)
		dec.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	}
	return &Reader{body: body, crc: crc32.NewIEEE()}, nil
}

// Next advances to the next record, returning false at the terminator or on
// error.
func (lr *Reader) Next() bool {
	if lr.done || lr.err != nil {
		return false
	}
	start := lr.pos
	pathLen, ok := lr.varint()
	if !ok {
		return false
	}
	if pathLen == 0 {
		lr.finish()
		return false
	}
	path, ok := lr.take(pathLen)
	if !ok {
		return false
	}
	meta, ok := lr.take(2)
	if !ok {
		return false
	}
	payloadLen, ok := lr.varint()
	if !ok {
		return false
	}
	payload, ok := lr.take(payloadLen)
	if !ok {
		return false
	}
	lr.crc.Write(lr.body[start:lr.pos])
	lr.rec = Record{
		Path:    string(path),
		Kind:    dynstruct.Kind(meta[0]),
		Part:    meta[1],
		Payload: payload,
	}
	return true
}

// Record returns the record Next stopped on. Payload aliases the log buffer.
func (lr *Reader) Record() Record { return lr.rec }

// Err reports the first framing or checksum failure, nil after a clean
// terminator.
func (lr *Reader) Err() error { return lr.err }

func (lr *Reader) finish() {
	lr.done = true
	sum, ok := lr.take(4)
	if !ok {
		return
	}
	if binary.LittleEndian.Uint32(sum) != lr.crc.Sum32() {
		lr.err = fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
}

func (lr *Reader) varint() (uint64, bool) {
	v, n := common.ReadVarUint(lr.body[lr.pos:])
	if n == 0 {
		lr.err = fmt.Errorf("%w: truncated varint", ErrCorrupt)
		return 0, false
	}
	lr.pos += n
	return v, true
}

// take slices off the next n body bytes. n comes off the wire, so the bound
// is checked in uint64 before any int conversion.
func (lr *Reader) take(n uint64) ([]byte, bool) {
	if n > uint64(len(lr.body)-lr.pos) {
		lr.err = fmt.Errorf("%w: truncated record", ErrCorrupt)
		return nil, false
	}
	b := lr.body[lr.pos : lr.pos+int(n)]
	lr.pos += int(n)
	return b, true
}
