package protocol

// Command opcodes. The frame layer pads each to the fixed 8-byte command
// frame; the session layer pairs each with the reply markers below.
var (
	OpVersion       = []byte{0x95, 0x95}
	OpDeviceID      = []byte{0x80, 0xD3}
	OpNoteCount     = []byte{0x80, 0xC0}
	OpStartDownload = []byte{0xB5}
	OpAckDownload   = []byte{0xB6}
)

// Reply markers. Fixed bytes the device echoes at known offsets; any
// mismatch means a desynchronized protocol or foreign firmware.
const (
	MarkerVersion0 byte = 0x80
	MarkerVersion1 byte = 0xA9
	MarkerVersion9 byte = 0x0E

	MarkerDeviceID0 byte = 0x81
	MarkerDeviceID1 byte = 0xD3

	MarkerNoteCount0 byte = 0x81
	MarkerNoteCount1 byte = 0xC0

	MarkerDownloadPad byte = 0xAA
	MarkerDownloadEnd byte = 0x55
)
