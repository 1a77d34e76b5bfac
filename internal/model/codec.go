// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package model

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"
	"math"
	"time"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/als"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/interactions"
)

// Magic identifies a model artifact.
const Magic = "SRALS\x00"

// FormatVersion is the artifact layout written by this package. Load
// rejects any other version.
const FormatVersion uint16 = 1

// FlagGzip marks a gzip-compressed body.
const FlagGzip uint8 = 1 << 0

const knownFlags = FlagGzip

// Section tags.
const (
	tagEnd uint16 = iota
	tagParams
	tagMetadata
	tagUserIDs
	tagItemIDs
	tagUserFactors
	tagItemFactors
)

const (
	paramsLen   = 4 + 8 + 8 + 4 + 8
	metadataLen = 6 * 8
	maxIDLen    = 1 << 16
	chunkFloats = 8192
)

var byteOrder = binary.BigEndian

// Encode writes m to w in artifact format.
func Encode(w io.Writer, m *FactorModel) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}

	hdr := &binWriter{w: w}
	hdr.raw([]byte(Magic))
	hdr.u16(FormatVersion)
	hdr.u8(FlagGzip)
	if hdr.err != nil {
		return fmt.Errorf("write header: %w", hdr.err)
	}

	gz := gzip.NewWriter(w)
	sum := sha256.New()
	bw := &binWriter{w: io.MultiWriter(gz, sum)}

	writeParams(bw, m.Params)
	writeMetadata(bw, m.Metadata)
	writeUserIDs(bw, m.Users)
	writeItemIDs(bw, m.Items)
	writeFactors(bw, tagUserFactors, m.UserFactors)
	writeFactors(bw, tagItemFactors, m.ItemFactors)
	bw.section(tagEnd, 0)
	if bw.err != nil {
		return fmt.Errorf("write body: %w", bw.err)
	}

	if err := gz.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}
	if _, err := w.Write(sum.Sum(nil)); err != nil {
		return fmt.Errorf("write checksum: %w", err)
	}
	return nil
}

func writeParams(bw *binWriter, p Params) {
	bw.section(tagParams, paramsLen)
	bw.u32(uint32(p.Factors)) //nolint:gosec // factors validated positive and small
	bw.f64(p.Regularization)
	bw.f64(p.Alpha)
	bw.u32(uint32(p.Iterations)) //nolint:gosec // iterations validated positive and small
	bw.u64(p.Seed)
}

func writeMetadata(bw *binWriter, md Metadata) {
	bw.section(tagMetadata, metadataLen)
	var trained int64
	if !md.TrainedAt.IsZero() {
		trained = md.TrainedAt.UnixNano()
	}
	bw.i64(trained)
	bw.i64(int64(md.TrainingDuration))
	bw.i64(md.Records)
	bw.i64(md.NNZ)
	bw.i64(md.NumUsers)
	bw.i64(md.NumItems)
}

func writeUserIDs(bw *binWriter, users *interactions.IDMap[int64]) {
	n := users.Len()
	bw.section(tagUserIDs, uint64(8+8*n)) //nolint:gosec // n >= 0
	bw.u64(uint64(n))                     //nolint:gosec // n >= 0
	for i := 0; i < n; i++ {
		bw.i64(users.ID(i))
	}
}

func writeItemIDs(bw *binWriter, items *interactions.IDMap[string]) {
	n := items.Len()
	size := uint64(8)
	for i := 0; i < n; i++ {
		size += 4 + uint64(len(items.ID(i)))
	}
	bw.section(tagItemIDs, size)
	bw.u64(uint64(n)) //nolint:gosec // n >= 0
	for i := 0; i < n; i++ {
		id := items.ID(i)
		bw.u32(uint32(len(id))) //nolint:gosec // bounded by maxIDLen on read
		bw.raw([]byte(id))
	}
}

func writeFactors(bw *binWriter, tag uint16, d *als.Dense) {
	bw.section(tag, 16+8*uint64(len(d.Data)))
	bw.u64(uint64(d.Rows)) //nolint:gosec // rows >= 0
	bw.u64(uint64(d.Cols)) //nolint:gosec // cols >= 0

	buf := make([]byte, 0, 8*chunkFloats)
	for k, v := range d.Data {
		buf = byteOrder.AppendUint64(buf, math.Float64bits(v))
		if len(buf) == cap(buf) || k == len(d.Data)-1 {
			bw.raw(buf)
			buf = buf[:0]
		}
	}
}

// Decode reads an artifact from r and verifies its checksum. Every format
// problem is reported as a *CorruptModelError.
func Decode(r io.Reader) (*FactorModel, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	if _, err := readHeader(br); err != nil {
		return nil, err
	}
	body, closeBody, err := openBody(br)
	if err != nil {
		return nil, err
	}
	defer closeBody()

	sum := sha256.New()
	d := &decoder{r: io.TeeReader(body, sum), seen: make(map[uint16]bool)}
	if err := d.sections(false); err != nil {
		return nil, err
	}

	// Drain the body so gzip verifies its own CRC and nothing follows tagEnd.
	if n, err := io.Copy(io.Discard, d.r); err != nil {
		return nil, corrupt("read body", err)
	} else if n != 0 {
		return nil, corrupt(fmt.Sprintf("%d unexpected bytes after last section", n), nil)
	}

	if err := verifyTrailer(br, sum); err != nil {
		return nil, err
	}
	return d.model()
}

// Info is the header-level description of an artifact.
type Info struct {
	FormatVersion uint16   `json:"format_version"`
	Params        Params   `json:"params"`
	Metadata      Metadata `json:"metadata"`
}

// DecodeInfo reads only the header, params and metadata. The checksum is
// not verified.
func DecodeInfo(r io.Reader) (*Info, error) {
	br := bufio.NewReader(r)
	version, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	body, closeBody, err := openBody(br)
	if err != nil {
		return nil, err
	}
	defer closeBody()

	d := &decoder{r: body, seen: make(map[uint16]bool)}
	if err := d.sections(true); err != nil {
		return nil, err
	}
	if !d.seen[tagParams] || !d.seen[tagMetadata] {
		return nil, corrupt("missing params or metadata section", nil)
	}
	return &Info{FormatVersion: version, Params: d.params, Metadata: d.meta}, nil
}

func readHeader(br *bufio.Reader) (uint16, error) {
	var hdr [len(Magic) + 3]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return 0, corrupt("truncated header", err)
	}
	if !bytes.Equal(hdr[:len(Magic)], []byte(Magic)) {
		return 0, corrupt("bad magic", nil)
	}
	version := byteOrder.Uint16(hdr[len(Magic):])
	if version != FormatVersion {
		return 0, corrupt(fmt.Sprintf("unsupported format version %d (want %d)", version, FormatVersion), nil)
	}
	flags := hdr[len(Magic)+2]
	if flags&^knownFlags != 0 {
		return 0, corrupt(fmt.Sprintf("unknown flags %#x", flags), nil)
	}
	if flags&FlagGzip == 0 {
		// Every writer of this version compresses; an uncompressed body
		// cannot be delimited from the trailer.
		return 0, corrupt("uncompressed body not supported", nil)
	}
	return version, nil
}

func openBody(br *bufio.Reader) (io.Reader, func(), error) {
	gz, err := gzip.NewReader(br)
	if err != nil {
		return nil, nil, corrupt("open compressed body", err)
	}
	gz.Multistream(false)
	return gz, func() { _ = gz.Close() }, nil //nolint:errcheck // close after read is not actionable
}

func verifyTrailer(br *bufio.Reader, sum hash.Hash) error {
	var want [sha256.Size]byte
	if _, err := io.ReadFull(br, want[:]); err != nil {
		return corrupt("truncated checksum", err)
	}
	if got := sum.Sum(nil); !bytes.Equal(got, want[:]) {
		return corrupt(fmt.Sprintf("checksum mismatch: expected %x, got %x", want, got), nil)
	}
	if _, err := br.Peek(1); !errors.Is(err, io.EOF) {
		return corrupt("trailing data after checksum", err)
	}
	return nil
}

type decoder struct {
	r    io.Reader
	seen map[uint16]bool

	params      Params
	meta        Metadata
	userIDs     []int64
	itemIDs     []string
	userFactors *als.Dense
	itemFactors *als.Dense
}

// sections reads sections until tagEnd. With headOnly it stops once params
// and metadata are both read.
func (d *decoder) sections(headOnly bool) error {
	hdr := &binReader{r: d.r}
	for {
		tag := hdr.u16()
		length := hdr.u64()
		if hdr.err != nil {
			return corrupt("truncated section header", hdr.err)
		}
		if tag == tagEnd {
			if length != 0 {
				return corrupt("end marker with payload", nil)
			}
			return nil
		}
		if d.seen[tag] {
			return corrupt(fmt.Sprintf("duplicate section %d", tag), nil)
		}
		d.seen[tag] = true

		lr := &io.LimitedReader{R: d.r, N: int64(length)} //nolint:gosec // bounded by the data actually present
		br := &binReader{r: lr}
		switch tag {
		case tagParams:
			d.readParams(br, length)
		case tagMetadata:
			d.readMetadata(br, length)
		case tagUserIDs:
			d.readUserIDs(br, length)
		case tagItemIDs:
			d.readItemIDs(br)
		case tagUserFactors:
			d.userFactors = readFactors(br, length)
		case tagItemFactors:
			d.itemFactors = readFactors(br, length)
		default:
			// Unknown sections from a compatible writer are skipped.
			_, br.err = io.Copy(io.Discard, lr)
		}
		if br.err != nil {
			return corrupt(fmt.Sprintf("section %d", tag), br.err)
		}
		if lr.N != 0 {
			return corrupt(fmt.Sprintf("section %d: %d unread bytes", tag, lr.N), nil)
		}

		if headOnly && d.seen[tagParams] && d.seen[tagMetadata] {
			return nil
		}
	}
}

func (d *decoder) readParams(br *binReader, length uint64) {
	if length != paramsLen {
		br.fail(fmt.Errorf("params length %d", length))
		return
	}
	d.params = Params{
		Factors:        int(br.u32()),
		Regularization: br.f64(),
		Alpha:          br.f64(),
		Iterations:     int(br.u32()),
		Seed:           br.u64(),
	}
}

func (d *decoder) readMetadata(br *binReader, length uint64) {
	if length != metadataLen {
		br.fail(fmt.Errorf("metadata length %d", length))
		return
	}
	var trainedAt time.Time
	if ns := br.i64(); ns != 0 {
		trainedAt = time.Unix(0, ns).UTC()
	}
	d.meta = Metadata{
		TrainedAt:        trainedAt,
		TrainingDuration: time.Duration(br.i64()),
		Records:          br.i64(),
		NNZ:              br.i64(),
		NumUsers:         br.i64(),
		NumItems:         br.i64(),
	}
}

func (d *decoder) readUserIDs(br *binReader, length uint64) {
	n := br.u64()
	if br.err != nil {
		return
	}
	if length < 8 || (length-8)/8 != n || (length-8)%8 != 0 {
		br.fail(fmt.Errorf("user id count %d does not match length %d", n, length))
		return
	}
	d.userIDs = make([]int64, 0, min(n, 1<<16))
	for i := uint64(0); i < n && br.err == nil; i++ {
		d.userIDs = append(d.userIDs, br.i64())
	}
}

func (d *decoder) readItemIDs(br *binReader) {
	n := br.u64()
	if br.err != nil {
		return
	}
	for i := uint64(0); i < n && br.err == nil; i++ {
		size := br.u32()
		if size > maxIDLen {
			br.fail(fmt.Errorf("item id %d length %d exceeds limit", i, size))
			return
		}
		buf := make([]byte, size)
		br.raw(buf)
		d.itemIDs = append(d.itemIDs, string(buf))
	}
}

func readFactors(br *binReader, length uint64) *als.Dense {
	rows, cols := br.u64(), br.u64()
	if br.err != nil {
		return nil
	}
	if length < 16 || (length-16)%8 != 0 {
		br.fail(fmt.Errorf("factor section length %d", length))
		return nil
	}
	total := (length - 16) / 8
	if rows > math.MaxInt32 || cols > math.MaxInt32 || rows*cols != total {
		br.fail(fmt.Errorf("factor shape (%d, %d) does not match length %d", rows, cols, length))
		return nil
	}

	// Grow as data arrives so a forged length cannot force a huge allocation.
	data := make([]float64, 0, min(total, 1<<20))
	buf := make([]byte, 8*chunkFloats)
	for remaining := int(total); remaining > 0 && br.err == nil; {
		n := min(chunkFloats, remaining)
		br.raw(buf[:8*n])
		if br.err != nil {
			break
		}
		for k := 0; k < n; k++ {
			data = append(data, math.Float64frombits(byteOrder.Uint64(buf[8*k:])))
		}
		remaining -= n
	}
	if br.err != nil {
		return nil
	}
	d, err := als.DenseFromData(int(rows), int(cols), data)
	if err != nil {
		br.fail(err)
		return nil
	}
	return d
}

func (d *decoder) model() (*FactorModel, error) {
	for _, tag := range []uint16{tagParams, tagMetadata, tagUserIDs, tagItemIDs, tagUserFactors, tagItemFactors} {
		if !d.seen[tag] {
			return nil, corrupt(fmt.Sprintf("missing section %d", tag), nil)
		}
	}

	users, err := interactions.IDMapFromSlice(d.userIDs)
	if err != nil {
		return nil, corrupt("user ids", err)
	}
	items, err := interactions.IDMapFromSlice(d.itemIDs)
	if err != nil {
		return nil, corrupt("item ids", err)
	}

	m := &FactorModel{
		Params:      d.params,
		Metadata:    d.meta,
		Users:       users,
		Items:       items,
		UserFactors: d.userFactors,
		ItemFactors: d.itemFactors,
	}
	if err := m.Validate(); err != nil {
		return nil, corrupt("inconsistent sections", err)
	}
	return m, nil
}

type binWriter struct {
	w   io.Writer
	err error
	buf [8]byte
}

func (b *binWriter) raw(p []byte) {
	if b.err != nil {
		return
	}
	_, b.err = b.w.Write(p)
}

func (b *binWriter) u8(v uint8) { b.raw([]byte{v}) }

func (b *binWriter) u16(v uint16) {
	byteOrder.PutUint16(b.buf[:2], v)
	b.raw(b.buf[:2])
}

func (b *binWriter) u32(v uint32) {
	byteOrder.PutUint32(b.buf[:4], v)
	b.raw(b.buf[:4])
}

func (b *binWriter) u64(v uint64) {
	byteOrder.PutUint64(b.buf[:8], v)
	b.raw(b.buf[:8])
}

func (b *binWriter) i64(v int64)   { b.u64(uint64(v)) } //nolint:gosec // bit reinterpretation
func (b *binWriter) f64(v float64) { b.u64(math.Float64bits(v)) }

func (b *binWriter) section(tag uint16, length uint64) {
	b.u16(tag)
	b.u64(length)
}

type binReader struct {
	r   io.Reader
	err error
	buf [8]byte
}

func (b *binReader) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *binReader) raw(p []byte) {
	if b.err != nil {
		return
	}
	_, err := io.ReadFull(b.r, p)
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	b.err = err
}

func (b *binReader) u16() uint16 {
	b.raw(b.buf[:2])
	if b.err != nil {
		return 0
	}
	return byteOrder.Uint16(b.buf[:2])
}

func (b *binReader) u32() uint32 {
	b.raw(b.buf[:4])
	if b.err != nil {
		return 0
	}
	return byteOrder.Uint32(b.buf[:4])
}

func (b *binReader) u64() uint64 {
	b.raw(b.buf[:8])
	if b.err != nil {
		return 0
	}
	return byteOrder.Uint64(b.buf[:8])
}

func (b *binReader) i64() int64   { return int64(b.u64()) } //nolint:gosec // bit reinterpretation
func (b *binReader) f64() float64 { return math.Float64frombits(b.u64()) }
