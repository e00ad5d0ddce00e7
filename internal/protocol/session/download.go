package session

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/inklift/inklift/internal/observability"
	"github.com/inklift/inklift/internal/protocol"
	"github.com/inklift/inklift/internal/protocol/frame"
)

var ErrShortTransfer = errors.New("session: bulk transfer ended short")

// payloadLen is the data carried by one bulk packet after its 2-byte id.
const payloadLen = frame.ReplyLen - 2

// DownloadAll drains the device's note memory into one raw buffer.
//
// The handshake reply announces the exact packet count, so a truncated
// transfer is always detectable: packets carry 1-based ids, may arrive in
// any order, and the transfer only succeeds once every id in 1..N has been
// seen. An empty read before that is fatal; there is no mid-transfer
// resume, the whole download must restart.
func (s *Session) DownloadAll() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, err := s.roundTrip("start_download", protocol.OpStartDownload)
	if err != nil {
		return nil, err
	}
	if err := expectMarkers(reply, "start_download",
		marker{0, protocol.MarkerDownloadPad},
		marker{1, protocol.MarkerDownloadPad},
		marker{2, protocol.MarkerDownloadPad},
		marker{3, protocol.MarkerDownloadPad},
		marker{4, protocol.MarkerDownloadPad},
		marker{7, protocol.MarkerDownloadEnd},
		marker{8, protocol.MarkerDownloadEnd},
	); err != nil {
		return nil, err
	}
	count := int(binary.BigEndian.Uint16(reply[5:7]))
	s.log.Debug().Int("packets", count).Msg("bulk download announced")

	if err := frame.WriteCommand(s.conn, protocol.OpAckDownload); err != nil {
		return nil, fmt.Errorf("ack_download: %w", err)
	}
	observability.RecordCommand("ack_download")

	packets := make(map[uint16][]byte, count)
	for len(packets) < count {
		pkt, err := frame.ReadReply(s.conn, s.timeout)
		if err != nil {
			return nil, fmt.Errorf("bulk packet: %w", err)
		}
		if pkt == nil {
			observability.RecordSoftTimeout()
			return nil, fmt.Errorf("%w: got %d of %d packets", ErrShortTransfer, len(packets), count)
		}
		id := binary.BigEndian.Uint16(pkt[0:2])
		packets[id] = pkt[2:]
		observability.RecordPacket()
	}

	if err := frame.WriteCommand(s.conn, protocol.OpAckDownload); err != nil {
		return nil, fmt.Errorf("ack_download: %w", err)
	}
	observability.RecordCommand("ack_download")

	buf := make([]byte, 0, count*payloadLen)
	for i := 1; i <= count; i++ {
		p, ok := packets[uint16(i)]
		if !ok {
			// Distinct-id count matched but an id fell outside 1..N.
			return nil, fmt.Errorf("%w: missing packet %d of %d", ErrShortTransfer, i, count)
		}
		buf = append(buf, p...)
	}
	s.log.Info().Int("packets", count).Int("bytes", len(buf)).Msg("bulk download complete")
	return buf, nil
}
