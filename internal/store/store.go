// Package store persists raw note buffers as dump files and reloads them
// for offline decoding.
package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Dump names carry the capture time and the device id:
// 20240131093000-0A0B0C010203.bin.
const (
	dumpTimeLayout = "20060102150405"
	dumpExt        = ".bin"
)

var ErrBadDumpName = errors.New("store: dump name missing device id")

// Dump is a raw note buffer reloaded from disk.
type Dump struct {
	DeviceID uint64
	Data     []byte
}

// Load reads a previously saved dump, recovering the device id from the
// file name.
func Load(fs afero.Fs, path string) (Dump, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Dump{}, fmt.Errorf("store: %w", err)
	}
	id, err := DeviceIDFromName(filepath.Base(path))
	if err != nil {
		return Dump{}, err
	}
	return Dump{DeviceID: id, Data: data}, nil
}

// Save writes a freshly downloaded buffer under the timestamped dump name
// and returns the full path.
func Save(fs afero.Fs, dir string, deviceID uint64, data []byte, now time.Time) (string, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("store: %w", err)
	}
	name := fmt.Sprintf("%s-%012X%s", now.Format(dumpTimeLayout), deviceID, dumpExt)
	path := filepath.Join(dir, name)
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("store: %w", err)
	}
	return path, nil
}

// DeviceIDFromName parses the hex device id out of a dump file name.
func DeviceIDFromName(name string) (uint64, error) {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(name, "-")
	if len(parts) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadDumpName, name)
	}
	id, err := strconv.ParseUint(parts[1], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadDumpName, name)
	}
	return id, nil
}
