package notes

import (
	"encoding/binary"
	"errors"
	"testing"
)

// recordSpec describes one synthetic record for buffer building.
type recordSpec struct {
	next    int // absolute offset of the next record, 0 terminates
	flags   byte
	id      uint8
	count   uint8
	ts      uint32
	payload []byte
}

func encodeRecord(spec recordSpec) []byte {
	rec := make([]byte, HeaderLen+len(spec.payload))
	rec[0] = byte(spec.next)
	rec[1] = byte(spec.next >> 8)
	rec[2] = byte(spec.next >> 16)
	rec[3] = spec.flags
	rec[4] = spec.id
	rec[5] = spec.count
	binary.LittleEndian.PutUint32(rec[6:10], spec.ts)
	rec[10] = 0x01
	copy(rec[HeaderLen:], spec.payload)
	return rec
}

func point(x, y int16) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint16(b[0:2], uint16(x))
	binary.LittleEndian.PutUint16(b[2:4], uint16(y))
	return b
}

func sentinel() []byte {
	return []byte{0x00, 0x00, 0x00, 0x80}
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestDecodeRoundTrip(t *testing.T) {
	payload := cat(
		point(10, -20), point(11, -21), sentinel(),
		point(100, 200), sentinel(),
	)
	buf := encodeRecord(recordSpec{next: 0, flags: 0b10010000, id: 7, count: 9, ts: 0x01020304, payload: payload})

	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 note, got %d", len(got))
	}
	n := got[0]
	if n.ID != 7 || n.Count != 9 || n.Timestamp != 0x01020304 || n.ProtocolID != 0x01 {
		t.Fatalf("header mismatch: %+v", n)
	}
	if len(n.Strokes) != 2 {
		t.Fatalf("expected 2 strokes, got %d", len(n.Strokes))
	}
	wantFirst := Stroke{{10, -20}, {11, -21}}
	if len(n.Strokes[0]) != 2 || n.Strokes[0][0] != wantFirst[0] || n.Strokes[0][1] != wantFirst[1] {
		t.Fatalf("stroke 0 mismatch: %+v", n.Strokes[0])
	}
	if len(n.Strokes[1]) != 1 || n.Strokes[1][0] != (Point{100, 200}) {
		t.Fatalf("stroke 1 mismatch: %+v", n.Strokes[1])
	}
}

func TestDecodeTwoRecordChain(t *testing.T) {
	rec1Payload := cat(point(1, 2), sentinel())
	rec1Len := HeaderLen + len(rec1Payload)
	buf := cat(
		encodeRecord(recordSpec{next: rec1Len, flags: 0b10010000, id: 1, payload: rec1Payload}),
		encodeRecord(recordSpec{next: 0, flags: 0b10010000, id: 2}),
	)

	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(got))
	}
	if len(got[0].Strokes) != 1 || len(got[0].Strokes[0]) != 1 {
		t.Fatalf("note 1 should have exactly 1 stroke of 1 point: %+v", got[0].Strokes)
	}
	if got[1].ID != 2 {
		t.Fatalf("note 2 id: got %d", got[1].ID)
	}
}

// Device dumps are whole 62-byte packets, so the terminator is followed
// by zero fill. The padding must not surface as a corrupt record.
func TestDecodePacketPaddedDump(t *testing.T) {
	rec1Payload := cat(point(1, 2), sentinel())
	rec1 := encodeRecord(recordSpec{next: HeaderLen + len(rec1Payload), flags: 0b10010000, id: 1, payload: rec1Payload})
	buf := append(rec1, make([]byte, 62-len(rec1))...)

	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("zero padding must decode clean, got %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected exactly the real note, got %+v", got)
	}
}

func TestDecodeEmptyListTerminator(t *testing.T) {
	got, err := Decode([]byte{0x00, 0x00, 0x00})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no notes, got %d", len(got))
	}
}

func TestDecodeTerminatesOnBackwardPointer(t *testing.T) {
	// Record 1 is well formed; the record it points at points backwards,
	// which would loop forever without the monotonicity guard.
	rec1Payload := cat(point(1, 1), sentinel())
	rec1 := encodeRecord(recordSpec{next: HeaderLen + len(rec1Payload), flags: 0b10010000, payload: rec1Payload})
	loop := encodeRecord(recordSpec{next: 1, flags: 0b10010000})
	buf := cat(rec1, loop)

	got, err := Decode(buf)
	if !errors.Is(err, ErrPointerOrder) {
		t.Fatalf("expected ErrPointerOrder, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("notes before the corrupt pointer should survive, got %d", len(got))
	}
}

func TestDecodeRejectsPointerPastEnd(t *testing.T) {
	buf := encodeRecord(recordSpec{next: 4096, flags: 0b10010000})
	_, err := Decode(buf)
	if !errors.Is(err, ErrPointerRange) {
		t.Fatalf("expected ErrPointerRange, got %v", err)
	}
}

func TestDecodeSkipsCorruptRecord(t *testing.T) {
	// Record 1 has a ragged payload; record 2 is fine.
	rec1 := encodeRecord(recordSpec{next: HeaderLen + 3, flags: 0b10010000, id: 1, payload: []byte{1, 2, 3}})
	rec2 := encodeRecord(recordSpec{next: 0, flags: 0b10010000, id: 2, payload: cat(point(5, 6), sentinel())})
	buf := cat(rec1, rec2)

	got, err := Decode(buf)
	if !errors.Is(err, ErrRaggedPayload) {
		t.Fatalf("expected ErrRaggedPayload, got %v", err)
	}
	var rerr *RecordError
	if !errors.As(err, &rerr) || rerr.Offset != 0 {
		t.Fatalf("error should carry the record offset: %v", err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("good record should survive a corrupt sibling: %+v", got)
	}
}

func TestDecodeEnforcesRequiredFlagBit(t *testing.T) {
	buf := encodeRecord(recordSpec{next: 0, flags: 0b10000000})
	_, err := Decode(buf)
	if !errors.Is(err, ErrFlagRequired) {
		t.Fatalf("expected ErrFlagRequired, got %v", err)
	}
}

func TestDecodeFlagBits(t *testing.T) {
	buf := encodeRecord(recordSpec{next: 0, flags: 0b10011100, id: 3})
	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	f := got[0].Flags
	if !f.HasContent() {
		t.Fatalf("bit7 set: HasContent must be true")
	}
	if !f.Closed() {
		t.Fatalf("bit6 clear: Closed must be true")
	}
	if f.ClosedByUser() {
		t.Fatalf("bit5 clear: ClosedByUser must be false")
	}
	if !f.SideLeft() {
		t.Fatalf("bit3 set: SideLeft must be true")
	}
	if !f.SideRight() {
		t.Fatalf("bit2 set: SideRight must be true")
	}
	if !f.AlreadyUploaded() {
		t.Fatalf("bit1 clear: AlreadyUploaded must be true")
	}
	if !f.PenBatteryLow() {
		t.Fatalf("bit0 clear: PenBatteryLow must be true")
	}
}

// The device's capture format only records sentinel-terminated strokes; a
// trailing open stroke is dropped. Documented quirk, not a guaranteed
// contract.
func TestDecodeDropsUnterminatedTrailingStroke(t *testing.T) {
	payload := cat(point(1, 1), sentinel(), point(2, 2), point(3, 3))
	buf := encodeRecord(recordSpec{next: 0, flags: 0b10010000, payload: payload})

	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got[0].Strokes) != 1 {
		t.Fatalf("trailing open stroke must not be flushed, got %d strokes", len(got[0].Strokes))
	}
}

func TestDecodeEmptyStrokeFromDoubleSentinel(t *testing.T) {
	payload := cat(point(1, 1), sentinel(), sentinel())
	buf := encodeRecord(recordSpec{next: 0, flags: 0b10010000, payload: payload})

	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got[0].Strokes) != 2 {
		t.Fatalf("double sentinel records an empty stroke, got %d strokes", len(got[0].Strokes))
	}
	if len(got[0].Strokes[1]) != 0 {
		t.Fatalf("second stroke should be empty")
	}
}

func TestFingerprintCoversPayloadOnly(t *testing.T) {
	payload := cat(point(1, 2), sentinel())
	a := encodeRecord(recordSpec{next: 0, flags: 0b10010000, id: 1, ts: 100, payload: payload})
	b := encodeRecord(recordSpec{next: 0, flags: 0b11010000, id: 9, ts: 999, payload: payload})

	na, err := Decode(a)
	if err != nil {
		t.Fatalf("decode a: %v", err)
	}
	nb, err := Decode(b)
	if err != nil {
		t.Fatalf("decode b: %v", err)
	}
	if na[0].Fingerprint != nb[0].Fingerprint {
		t.Fatalf("identical payloads must share a fingerprint")
	}

	mutated := cat(point(1, 3), sentinel())
	c := encodeRecord(recordSpec{next: 0, flags: 0b10010000, id: 1, ts: 100, payload: mutated})
	nc, err := Decode(c)
	if err != nil {
		t.Fatalf("decode c: %v", err)
	}
	if na[0].Fingerprint == nc[0].Fingerprint {
		t.Fatalf("payload change must change the fingerprint")
	}
	if len(na[0].Fingerprint.String()) != 32 {
		t.Fatalf("fingerprint hex should be 32 chars, got %d", len(na[0].Fingerprint.String()))
	}
}
