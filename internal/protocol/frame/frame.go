package frame

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	// CommandLen is the fixed outbound frame size.
	CommandLen = 8
	// ReplyLen is the fixed inbound frame size.
	ReplyLen = 64
	// MaxOpcodeLen bounds the opcode bytes a command frame can carry.
	MaxOpcodeLen = 6

	commandMagic byte = 0x02
)

var (
	ErrOpcodeTooLong = errors.New("frame: opcode longer than 6 bytes")
	ErrShortWrite    = errors.New("frame: short command write")
	ErrShortReply    = errors.New("frame: short reply frame")
)

// DeadlineReader is the read half of a device handle. *os.File satisfies it
// for character devices on Linux, as does net.Conn.
type DeadlineReader interface {
	io.Reader
	SetReadDeadline(t time.Time) error
}

// EncodeCommand builds the fixed 8-byte command frame: magic byte, opcode
// length, opcode bytes zero-padded to 6.
func EncodeCommand(opcode []byte) ([]byte, error) {
	if len(opcode) > MaxOpcodeLen {
		return nil, fmt.Errorf("%w: %d", ErrOpcodeTooLong, len(opcode))
	}
	buf := make([]byte, CommandLen)
	buf[0] = commandMagic
	buf[1] = byte(len(opcode))
	copy(buf[2:], opcode)
	return buf, nil
}

func WriteCommand(w io.Writer, opcode []byte) error {
	buf, err := EncodeCommand(opcode)
	if err != nil {
		return err
	}
	n, err := w.Write(buf)
	if err != nil {
		return err
	}
	if n != CommandLen {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, CommandLen)
	}
	return nil
}

// ReadReply reads one 64-byte reply frame. A deadline expiring before any
// byte arrives is a soft timeout and returns (nil, nil); expiring mid-frame
// is fatal because the transport has no way to resynchronize. The deadline
// is scoped to this call and disarmed on every exit path.
func ReadReply(r DeadlineReader, timeout time.Duration) ([]byte, error) {
	if err := r.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	defer r.SetReadDeadline(time.Time{})

	buf := make([]byte, ReplyLen)
	n := 0
	for n < ReplyLen {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, io.EOF) {
				if n == 0 {
					return nil, nil
				}
				return nil, fmt.Errorf("%w: got %d of %d bytes", ErrShortReply, n, ReplyLen)
			}
			return nil, err
		}
	}
	return buf, nil
}
