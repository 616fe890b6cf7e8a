package dmp

import (
	"errors"
	"fmt"
)

// AddrMode selects how the address column at the start of each dump line is
// rendered.
type AddrMode int

const (
	AddrNone  AddrMode = 0 // no address column
	AddrShort AddrMode = 1 // exactly 4 hex digits
	AddrLong  AddrMode = 2 // exactly 8 hex digits
	AddrVar   AddrMode = 3 // digit count grows with magnitude, field stays 8 wide
)

func (m AddrMode) valid() bool {
	return m >= AddrNone && m <= AddrVar
}

// Config is an immutable snapshot of the display options for one dump run.
// The zero value is a bare continuous dump: no hex, no ASCII, no addresses.
// Use [DefaultConfig] for the layout the dmp tool produces by default.
//
// A Config is never mutated by the engine, so one value can drive any number
// of sequential or concurrent runs.
type Config struct {
	// ShowHex emits two hex digits per byte.
	ShowHex bool

	// ShowASCII accumulates a |...| gutter of printable characters at the
	// end of each line. NUL renders as '_', other non-printables as '.'.
	ShowASCII bool

	// LowerCase selects lowercase hex digits for data and addresses.
	LowerCase bool

	// WordGroup inserts one space after every WordGroup hex byte pairs.
	// 0 disables grouping.
	WordGroup int

	// HalfGap inserts one additional space after every HalfGap hex byte
	// pairs, independently of WordGroup. 0 disables it. At a boundary
	// satisfying both, both spaces are emitted.
	HalfGap int

	// BytesPerLine wraps the line after this many bytes. 0 never wraps:
	// the whole stream becomes one line.
	BytesPerLine int

	// AddrMode formats the address column at the start of each line.
	AddrMode AddrMode

	// ASCIIFullWidth pads the gutter of a short trailing line with spaces
	// out to BytesPerLine, keeping the closing '|' in a fixed column.
	ASCIIFullWidth bool

	// TrailingAddr emits one final line holding the emitted byte count as
	// an 8-digit lowercase hex value, the "next address" convention of
	// hexdump -C -v.
	TrailingAddr bool

	// StartOffset skips this many leading bytes. Skipped bytes advance the
	// address but are neither shown nor counted. Skipping is done by
	// discarding, never by seeking, so pipes behave like files.
	StartOffset int64

	// Limit stops the dump after this many emitted bytes. 0 is unlimited.
	// Hitting the limit is reported as a truncated run, distinct from
	// reaching the natural end of the stream.
	Limit int64
}

var errBadAddrMode = errors.New("address mode out of range")

func (c Config) validate() error {
	if c.WordGroup < 0 {
		return fmt.Errorf("[dmp] word group %d is negative", c.WordGroup)
	}
	if c.HalfGap < 0 {
		return fmt.Errorf("[dmp] half gap %d is negative", c.HalfGap)
	}
	if c.BytesPerLine < 0 {
		return fmt.Errorf("[dmp] bytes per line %d is negative", c.BytesPerLine)
	}
	if c.StartOffset < 0 {
		return fmt.Errorf("[dmp] start offset %d is negative", c.StartOffset)
	}
	if c.Limit < 0 {
		return fmt.Errorf("[dmp] byte limit %d is negative", c.Limit)
	}
	if !c.AddrMode.valid() {
		return fmt.Errorf("[dmp] address mode %d: %w", c.AddrMode, errBadAddrMode)
	}
	return nil
}

// DefaultConfig returns the dmp tool's default layout: 8-digit uppercase
// addresses, 16 bytes per line with a space after every byte, and a
// full-width ASCII gutter.
//
//	00000000  65 78 61 6D 70 6C 65 20 70 69 70 65 20 63 6F 6E  |example pipe con|
//	00000010  74 65 6E 74 73 0A                                |tents.          |
func DefaultConfig() Config {
	return Config{
		ShowHex:        true,
		ShowASCII:      true,
		WordGroup:      1,
		BytesPerLine:   16,
		AddrMode:       AddrLong,
		ASCIIFullWidth: true,
	}
}

// HexdumpC returns a layout matching `hexdump -C -v`: lowercase, an extra
// gap in the middle of the line, no gutter padding on the trailing line, and
// a final line carrying the byte count.
//
//	00000000  65 78 61 6d 70 6c 65 20  70 69 70 65 20 63 6f 6e  |example pipe con|
//	00000010  74 65 6e 74 73 0a                                 |tents.|
//	00000016
func HexdumpC() Config {
	return Config{
		ShowHex:      true,
		ShowASCII:    true,
		LowerCase:    true,
		WordGroup:    1,
		HalfGap:      8,
		BytesPerLine: 16,
		AddrMode:     AddrLong,
		TrailingAddr: true,
	}
}

// HexOnly returns a layout of bare hex pairs on a single unwrapped line,
// with no addresses and no gutter: space-separated pairs, or one unbroken
// digit string when continuous is set.
func HexOnly(continuous bool) Config {
	c := Config{ShowHex: true}
	if !continuous {
		c.WordGroup = 1
	}
	return c
}
