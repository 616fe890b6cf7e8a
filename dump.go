// Package dmp formats byte streams as hex/ASCII dump text.
//
// The engine consumes bytes one at a time and writes formatted lines
// (address column, hex digit pairs grouped by word size, ASCII gutter) to a
// sink, under the layout rules of a [Config]. It owns no resources beyond
// its in-memory buffers and keeps no global state, so distinct runs never
// contaminate each other.
package dmp

import (
	"bufio"
	"errors"
	"io"
)

// Summary reports how one dump run ended.
type Summary struct {
	// Bytes counts the bytes included in the output. Bytes skipped before
	// the start offset and bytes beyond the limit are excluded.
	Bytes int64

	// Truncated is true when the byte limit stopped the run, false when
	// the natural end of the stream did.
	Truncated bool
}

const (
	hexUpper = "0123456789ABCDEF"
	hexLower = "0123456789abcdef"

	// In continuous mode no line wrap drains the staging buffer, so it is
	// written through once it reaches this size.
	writeThreshold = 4096
)

// Dumper is a streaming dump formatter. Bytes written to it are rendered
// per its [Config] and written to the underlying [io.Writer].
//
// It is the caller's responsibility to call Close on the [Dumper] when done:
// Close emits the final partial line and the trailing address line.
type Dumper struct {
	w   io.Writer
	cfg Config

	digits string // hex digit set, case per cfg.LowerCase

	addr      int64  // next absolute offset, advances across skipped bytes too
	lineIdx   int    // bytes placed into the current line
	ascii     []byte // gutter characters accumulated for the current line
	emitted   int64  // bytes included in the output
	truncated bool

	buf []byte // staged output, handed to w in ordered fragments
}

// NewDumper returns a new [Dumper] writing formatted text to w.
// The configuration is validated once here; the engine never normalizes it.
func NewDumper(w io.Writer, cfg Config) (*Dumper, error) {
	d := new(Dumper)
	if err := d.Reset(w, cfg); err != nil {
		return nil, err
	}
	return d, nil
}

// Reset discards the [Dumper] d's run state and makes it equivalent to the
// result of [NewDumper], but writing to w instead. This permits reusing a
// Dumper across sequential streams rather than allocating a new one.
func (d *Dumper) Reset(w io.Writer, cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	d.w = w
	d.cfg = cfg
	d.digits = hexUpper
	if cfg.LowerCase {
		d.digits = hexLower
	}
	d.addr = 0
	d.lineIdx = 0
	d.ascii = d.ascii[:0]
	d.emitted = 0
	d.truncated = false
	d.buf = d.buf[:0]

	return nil
}

var errWriterNil = errors.New("writer is nil")

// Write renders p to the underlying [io.Writer]. Bytes before the start
// offset are discarded, bytes beyond the limit are dropped and mark the run
// truncated. Formatted text is not necessarily flushed until a line
// completes or the [Dumper] is closed.
func (d *Dumper) Write(p []byte) (n int, err error) {
	if d.w == nil {
		return 0, errWriterNil
	}

	for _, b := range p {
		if d.addr < d.cfg.StartOffset {
			d.addr++
			continue
		}
		if d.cfg.Limit > 0 && d.emitted == d.cfg.Limit {
			d.truncated = true
			break
		}
		if err := d.putByte(b); err != nil {
			return 0, err
		}
	}

	return len(p), nil
}

// putByte places one post-skip, in-limit byte into the current line.
func (d *Dumper) putByte(b byte) error {
	if d.lineIdx == 0 && d.cfg.AddrMode != AddrNone {
		d.appendAddr()
	}

	if d.cfg.ShowHex {
		d.buf = append(d.buf, d.digits[b>>4], d.digits[b&0x0F])
	}
	if d.cfg.ShowASCII {
		d.ascii = append(d.ascii, gutterChar(b))
	}

	d.lineIdx++
	d.appendGroupGaps()

	if d.cfg.BytesPerLine > 0 && d.lineIdx >= d.cfg.BytesPerLine {
		if d.cfg.ShowASCII {
			d.appendGutter()
		}
		d.buf = append(d.buf, '\n')
		d.lineIdx = 0
		d.ascii = d.ascii[:0]
	}

	d.addr++
	d.emitted++

	if (d.cfg.BytesPerLine > 0 && d.lineIdx == 0) || len(d.buf) >= writeThreshold {
		return d.flush()
	}
	return nil
}

// Close emits the final partial line, if any, and the trailing address
// line, then flushes. It is an error to call Write after calling Close.
func (d *Dumper) Close() error {
	if d.w == nil {
		return errWriterNil
	}
	defer func() { d.w = nil }()

	if d.cfg.ShowASCII && d.lineIdx > 0 {
		// Blank-fill the rest of the hex field, two spaces standing in
		// for each missing digit pair, group gaps included.
		for d.cfg.BytesPerLine > 0 && d.lineIdx < d.cfg.BytesPerLine {
			if d.cfg.ShowHex {
				d.buf = append(d.buf, ' ', ' ')
			}
			if d.cfg.ASCIIFullWidth {
				d.ascii = append(d.ascii, ' ')
			}
			d.lineIdx++
			d.appendGroupGaps()
		}
		d.appendGutter()
		d.buf = append(d.buf, '\n')
	} else if d.lineIdx > 0 {
		d.buf = append(d.buf, '\n')
	}

	if d.cfg.TrailingAddr {
		// The byte count as a "next address", always 8-digit lowercase.
		d.appendHex(hexLower, uint64(d.emitted), 8)
		d.buf = append(d.buf, '\n')
	}

	if d.cfg.Limit > 0 && d.emitted == d.cfg.Limit {
		d.truncated = true
	}

	return d.flush()
}

// Summary reports the run's emitted byte count and whether the byte limit
// cut it short.
func (d *Dumper) Summary() Summary {
	return Summary{Bytes: d.emitted, Truncated: d.truncated}
}

func (d *Dumper) flush() error {
	if len(d.buf) == 0 {
		return nil
	}
	_, err := d.w.Write(d.buf)
	d.buf = d.buf[:0]
	return err
}

// appendGroupGaps emits the word-group space and the independent half-gap
// space after the byte at lineIdx. A boundary satisfying both gets both.
func (d *Dumper) appendGroupGaps() {
	if !d.cfg.ShowHex {
		return
	}
	if d.cfg.WordGroup > 0 && d.lineIdx%d.cfg.WordGroup == 0 {
		d.buf = append(d.buf, ' ')
	}
	if d.cfg.HalfGap > 0 && d.lineIdx%d.cfg.HalfGap == 0 {
		d.buf = append(d.buf, ' ')
	}
}

// appendGutter emits the separator and the |...| ASCII field. The two-space
// separator loses one space for an active word group and one more when the
// half gap is active too, since the last group boundary already wrote its
// trailing space(s).
func (d *Dumper) appendGutter() {
	if d.cfg.ShowHex {
		sep := 2
		if d.cfg.WordGroup > 0 {
			sep--
			if d.cfg.HalfGap > 0 {
				sep--
			}
		}
		for ; sep > 0; sep-- {
			d.buf = append(d.buf, ' ')
		}
	}
	d.buf = append(d.buf, '|')
	d.buf = append(d.buf, d.ascii...)
	d.buf = append(d.buf, '|')
}

// appendAddr emits the line-start address column plus its two-space suffix.
func (d *Dumper) appendAddr() {
	switch d.cfg.AddrMode {
	case AddrShort:
		d.appendHex(d.digits, uint64(d.addr), 4)
	case AddrLong:
		d.appendHex(d.digits, uint64(d.addr), 8)
	case AddrVar:
		// Digit count grows with magnitude; leading spaces keep the hex
		// field right-aligned in a fixed 8-wide column.
		var n int
		switch {
		case d.addr < 0x1_0000:
			n = 4
		case d.addr < 0x10_0000:
			n = 5
		case d.addr < 0x100_0000:
			n = 6
		case d.addr < 0x1000_0000:
			n = 7
		default:
			n = 8
		}
		for pad := 8 - n; pad > 0; pad-- {
			d.buf = append(d.buf, ' ')
		}
		d.appendHex(d.digits, uint64(d.addr), n)
	}
	d.buf = append(d.buf, ' ', ' ')
}

// appendHex emits v zero-padded to width digits. Values too large for the
// width keep all their digits, so an overflowing address widens the column
// rather than losing information.
func (d *Dumper) appendHex(digits string, v uint64, width int) {
	var tmp [16]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = digits[v&0x0F]
		v >>= 4
	}
	for len(tmp)-i < width {
		i--
		tmp[i] = '0'
	}
	d.buf = append(d.buf, tmp[i:]...)
}

// gutterChar maps a byte to its ASCII gutter rendering.
func gutterChar(b byte) byte {
	switch {
	case b == 0x00:
		return '_'
	case b < 0x20 || b > 0x7E:
		return '.'
	}
	return b
}

// Dump renders r to w under cfg and reports the run's [Summary]. Bytes are
// pulled lazily one at a time, so infinite or non-seekable sources work; the
// start offset is honored by discarding, never by seeking. Once the byte
// limit is reached no further bytes are pulled from r.
//
// A read or write failure propagates immediately with no partial flush of
// the final line.
func Dump(w io.Writer, r io.Reader, cfg Config) (Summary, error) {
	d, err := NewDumper(w, cfg)
	if err != nil {
		return Summary{}, err
	}

	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}

	var one [1]byte
	for {
		if cfg.Limit > 0 && d.emitted == cfg.Limit {
			d.truncated = true
			break
		}
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return d.Summary(), err
		}
		one[0] = b
		if _, err := d.Write(one[:]); err != nil {
			return d.Summary(), err
		}
	}

	if err := d.Close(); err != nil {
		return d.Summary(), err
	}
	return d.Summary(), nil
}
