// Package notes decodes the Pegasus note container: a chain of
// variable-length records laid out in one flat buffer, linked by 24-bit
// little-endian absolute offsets.
package notes

import (
	"crypto/md5"
	"encoding/hex"
)

// HeaderLen is the fixed per-record prefix: 3 next-pointer bytes, the flag
// byte, note id, note count, 4 timestamp bytes, the protocol id byte and 3
// reserved bytes.
const HeaderLen = 14

// penLift is the 4-byte group that closes a stroke instead of carrying a
// coordinate pair.
var penLift = [4]byte{0x00, 0x00, 0x00, 0x80}

// Flags is the note status bitfield. Several bits are active-low.
type Flags uint8

const (
	flagHasContent   Flags = 1 << 7
	flagOpen         Flags = 1 << 6
	flagClosedByUser Flags = 1 << 5
	flagRequired     Flags = 1 << 4
	flagSideLeft     Flags = 1 << 3
	flagSideRight    Flags = 1 << 2
	flagNotUploaded  Flags = 1 << 1
	flagBatteryOK    Flags = 1 << 0
)

func (f Flags) HasContent() bool      { return f&flagHasContent != 0 }
func (f Flags) Closed() bool          { return f&flagOpen == 0 }
func (f Flags) ClosedByUser() bool    { return f&flagClosedByUser != 0 }
func (f Flags) SideLeft() bool        { return f&flagSideLeft != 0 }
func (f Flags) SideRight() bool       { return f&flagSideRight != 0 }
func (f Flags) AlreadyUploaded() bool { return f&flagNotUploaded == 0 }
func (f Flags) PenBatteryLow() bool   { return f&flagBatteryOK == 0 }

// Point is one pen sample in device coordinates.
type Point struct {
	X, Y int16
}

// Stroke is one pen-down-to-pen-up sequence of samples.
type Stroke []Point

// Fingerprint is the 128-bit content identity of a note's stroke payload.
// It covers the bytes after the fixed header only, so re-captures of the
// same ink dedupe regardless of header or timestamp.
type Fingerprint [md5.Size]byte

func (fp Fingerprint) String() string {
	return hex.EncodeToString(fp[:])
}

// Note is one decoded record. Immutable after decode.
type Note struct {
	Flags       Flags
	ID          uint8
	Count       uint8
	Timestamp   uint32
	ProtocolID  byte
	Reserved    [3]byte
	Strokes     []Stroke
	Fingerprint Fingerprint
}
