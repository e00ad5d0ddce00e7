package cli

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inklift/inklift/internal/testutil/testlog"
)

// writeDump creates a dump file holding one single-stroke note.
func writeDump(t *testing.T) string {
	t.Helper()
	rec := make([]byte, 22)
	// Zero next-pointer: this is the final (and only) record.
	rec[3] = 0b10010000
	rec[4] = 3 // note id
	rec[5] = 1 // note count
	binary.LittleEndian.PutUint32(rec[6:10], 1706694600)
	rec[10] = 0x01
	binary.LittleEndian.PutUint16(rec[14:16], uint16(10))  // x
	binary.LittleEndian.PutUint16(rec[16:18], uint16(200)) // y
	rec[21] = 0x80 // pen-lift sentinel

	path := filepath.Join(t.TempDir(), "20240131093000-0A0B0C010203.bin")
	if err := os.WriteFile(path, rec, 0o644); err != nil {
		t.Fatalf("write dump: %v", err)
	}
	return path
}

func TestInfoOnDumpFile(t *testing.T) {
	testlog.Start(t)
	path := writeDump(t)

	root := NewRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"info", "--device", path, "--output", t.TempDir()})
	if err := root.Execute(); err != nil {
		t.Fatalf("info: %v", err)
	}
	if !strings.Contains(out.String(), "Data from device Id: 0A0B0C010203") {
		t.Fatalf("missing device id line:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Notes count: 01") {
		t.Fatalf("missing note count line:\n%s", out.String())
	}
}

func TestConvertExportsDump(t *testing.T) {
	testlog.Start(t)
	path := writeDump(t)
	outDir := t.TempDir()

	root := NewRoot()
	root.SetArgs([]string{"convert", path, "--output", outDir})
	if err := root.Execute(); err != nil {
		t.Fatalf("convert: %v", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".svg") {
		t.Fatalf("expected exactly one svg export, got %v", entries)
	}

	// A second convert run must dedupe on the fingerprint.
	root = NewRoot()
	root.SetArgs([]string{"convert", path, "--output", outDir})
	if err := root.Execute(); err != nil {
		t.Fatalf("second convert: %v", err)
	}
	entries, err = os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("re-converting must not duplicate exports, got %d files", len(entries))
	}
}

func TestConvertRequiresDumpArgument(t *testing.T) {
	testlog.Start(t)
	root := NewRoot()
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"convert"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected an argument error")
	}
}
