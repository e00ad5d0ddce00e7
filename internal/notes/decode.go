package notes

import (
	"crypto/md5"
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrPointerRange   = errors.New("notes: next pointer outside buffer")
	ErrPointerOrder   = errors.New("notes: next pointer not increasing")
	ErrRecordTooShort = errors.New("notes: record shorter than header")
	ErrRaggedPayload  = errors.New("notes: payload not 4-byte aligned")
	ErrFlagRequired   = errors.New("notes: required flag bit unset")
)

// RecordError ties a decode failure to the buffer offset of its record.
type RecordError struct {
	Offset int
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record at offset %d: %v", e.Offset, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Decode walks the next-pointer chain from offset 0 and decodes every
// record. Pointers must be strictly increasing and stay inside the buffer,
// so adversarial cycles terminate with an error instead of looping. A zero
// pointer marks the final record, which is still decoded when it carries a
// full header; an all-zero tail is terminator padding (device dumps are
// whole packets, so the terminator is followed by zero fill).
//
// Corrupt records are isolated: the walk continues at the next pointer and
// the failures come back joined alongside the notes that did decode.
func Decode(data []byte) ([]Note, error) {
	var (
		out  []Note
		errs []error
	)
	offset := 0
	for offset+3 <= len(data) {
		ptr := int(data[offset]) | int(data[offset+1])<<8 | int(data[offset+2])<<16
		if ptr == 0 {
			if tail := data[offset:]; len(tail) >= HeaderLen && !allZero(tail) {
				n, err := decodeRecord(tail)
				if err != nil {
					errs = append(errs, &RecordError{Offset: offset, Err: err})
				} else {
					out = append(out, n)
				}
			}
			break
		}
		if ptr > len(data) {
			errs = append(errs, &RecordError{Offset: offset, Err: fmt.Errorf("%w: %d > %d", ErrPointerRange, ptr, len(data))})
			break
		}
		if ptr <= offset {
			errs = append(errs, &RecordError{Offset: offset, Err: fmt.Errorf("%w: %d -> %d", ErrPointerOrder, offset, ptr)})
			break
		}
		n, err := decodeRecord(data[offset:ptr])
		if err != nil {
			errs = append(errs, &RecordError{Offset: offset, Err: err})
		} else {
			out = append(out, n)
		}
		offset = ptr
	}
	return out, errors.Join(errs...)
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func decodeRecord(rec []byte) (Note, error) {
	if len(rec) < HeaderLen {
		return Note{}, fmt.Errorf("%w: %d bytes", ErrRecordTooShort, len(rec))
	}
	flags := Flags(rec[3])
	if flags&flagRequired == 0 {
		return Note{}, fmt.Errorf("%w: flags=0b%08b", ErrFlagRequired, uint8(flags))
	}
	payload := rec[HeaderLen:]
	if len(payload)%4 != 0 {
		return Note{}, fmt.Errorf("%w: %d payload bytes", ErrRaggedPayload, len(payload))
	}

	n := Note{
		Flags:     flags,
		ID:        rec[4],
		Count:     rec[5],
		Timestamp: binary.LittleEndian.Uint32(rec[6:10]),
		// The protocol id at byte 10 is captured, not validated.
		ProtocolID:  rec[10],
		Fingerprint: md5.Sum(payload),
	}
	copy(n.Reserved[:], rec[11:14])

	var stroke Stroke
	for i := 0; i < len(payload); i += 4 {
		if [4]byte(payload[i:i+4]) == penLift {
			n.Strokes = append(n.Strokes, stroke)
			stroke = nil
			continue
		}
		stroke = append(stroke, Point{
			X: int16(binary.LittleEndian.Uint16(payload[i : i+2])),
			Y: int16(binary.LittleEndian.Uint16(payload[i+2 : i+4])),
		})
	}
	// Only sentinel-terminated strokes are recorded; a trailing open
	// stroke is dropped.
	return n, nil
}
