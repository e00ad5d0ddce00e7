package session

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/inklift/inklift/internal/observability"
	"github.com/inklift/inklift/internal/protocol"
	"github.com/inklift/inklift/internal/protocol/frame"
)

var (
	ErrNoReply      = errors.New("session: no reply before deadline")
	ErrBadEnvelope  = errors.New("session: reply envelope mismatch")
	ErrVersionSplit = errors.New("session: version reply halves disagree")
)

// DefaultReplyTimeout matches the vendor tool's 2-second watchdog.
const DefaultReplyTimeout = 2 * time.Second

// Mode is the operating mode reported in the version reply.
type Mode uint8

const (
	ModeRaw    Mode = 0x00
	ModeXY     Mode = 0x01
	ModeTablet Mode = 0x02
	ModeMobile Mode = 0x03
)

func (m Mode) String() string {
	switch m {
	case ModeRaw:
		return "RAW"
	case ModeXY:
		return "XY"
	case ModeTablet:
		return "Tablet"
	case ModeMobile:
		return "Mobile"
	default:
		return "Unknown"
	}
}

// DeviceID preserves all 12 identity bytes from the device id reply.
// Shipped devices only populate the low 48 bits, which is what the
// export naming uses.
type DeviceID [12]byte

func (id DeviceID) Uint48() uint64 {
	var v uint64
	for _, b := range id[6:] {
		v = v<<8 | uint64(b)
	}
	return v
}

func (id DeviceID) String() string {
	return fmt.Sprintf("%012X", new(big.Int).SetBytes(id[:]))
}

// Identity is the device self-description captured once at session open
// and frozen for the session lifetime.
type Identity struct {
	ProductID  uint8
	Version    uint16
	PadVersion uint16
	Mode       Mode
	DeviceID   DeviceID
}

// Conn is the device handle: writable for command frames, readable with a
// per-call deadline for reply frames. *os.File satisfies it.
type Conn interface {
	io.Writer
	frame.DeadlineReader
}

type Options struct {
	// Timeout bounds each reply read. Zero means DefaultReplyTimeout.
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Session serializes all exchanges on one device handle.
type Session struct {
	mu      sync.Mutex
	conn    Conn
	timeout time.Duration
	log     zerolog.Logger
	id      Identity
}

// Open identifies the device and freezes its Identity. Both the version
// and device-id exchanges must succeed before the session is usable.
func Open(conn Conn, opts Options) (*Session, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultReplyTimeout
	}
	s := &Session{conn: conn, timeout: timeout, log: opts.Logger}
	if err := s.fetchVersion(); err != nil {
		return nil, err
	}
	if err := s.fetchDeviceID(); err != nil {
		return nil, err
	}
	s.log.Debug().
		Str("device_id", s.id.DeviceID.String()).
		Uint8("product_id", s.id.ProductID).
		Stringer("mode", s.id.Mode).
		Msg("session open")
	return s, nil
}

// Identity returns the identity captured at Open.
func (s *Session) Identity() Identity {
	return s.id
}

// NoteCount asks the device how many notes its memory currently holds.
// Unlike Identity this is re-queried on every call.
func (s *Session) NoteCount() (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply, err := s.roundTrip("note_count", protocol.OpNoteCount)
	if err != nil {
		return 0, err
	}
	if err := expectMarkers(reply, "note_count",
		marker{0, protocol.MarkerNoteCount0},
		marker{1, protocol.MarkerNoteCount1},
	); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(reply[2:4]), nil
}

func (s *Session) fetchVersion() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply, err := s.roundTrip("version", protocol.OpVersion)
	if err != nil {
		return err
	}
	if err := expectMarkers(reply, "version",
		marker{0, protocol.MarkerVersion0},
		marker{1, protocol.MarkerVersion1},
		marker{9, protocol.MarkerVersion9},
	); err != nil {
		return err
	}
	v1 := binary.BigEndian.Uint16(reply[3:5])
	v2 := binary.BigEndian.Uint16(reply[5:7])
	if v1 != v2 {
		return fmt.Errorf("%w: 0x%04X vs 0x%04X", ErrVersionSplit, v1, v2)
	}
	s.id.ProductID = reply[2]
	s.id.Version = v1
	s.id.PadVersion = binary.BigEndian.Uint16(reply[7:9])
	s.id.Mode = Mode(reply[10])
	return nil
}

func (s *Session) fetchDeviceID() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply, err := s.roundTrip("device_id", protocol.OpDeviceID)
	if err != nil {
		return err
	}
	if err := expectMarkers(reply, "device_id",
		marker{0, protocol.MarkerDeviceID0},
		marker{1, protocol.MarkerDeviceID1},
	); err != nil {
		return err
	}
	copy(s.id.DeviceID[:], reply[2:2+len(s.id.DeviceID)])
	return nil
}

// roundTrip performs one command/reply exchange. Callers hold s.mu.
func (s *Session) roundTrip(op string, opcode []byte) ([]byte, error) {
	if err := frame.WriteCommand(s.conn, opcode); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	observability.RecordCommand(op)
	reply, err := frame.ReadReply(s.conn, s.timeout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if reply == nil {
		observability.RecordSoftTimeout()
		return nil, fmt.Errorf("%w: %s", ErrNoReply, op)
	}
	return reply, nil
}

type marker struct {
	at   int
	want byte
}

func expectMarkers(reply []byte, op string, markers ...marker) error {
	for _, m := range markers {
		if reply[m.at] != m.want {
			return fmt.Errorf("%w: %s reply[%d]=0x%02X want 0x%02X",
				ErrBadEnvelope, op, m.at, reply[m.at], m.want)
		}
	}
	return nil
}
