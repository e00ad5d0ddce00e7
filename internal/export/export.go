// Package export writes decoded notes to the output directory as SVG
// documents, deduplicating by content fingerprint.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/inklift/inklift/internal/notes"
	"github.com/inklift/inklift/internal/observability"
	"github.com/inklift/inklift/internal/svg"
)

// Export names carry the export date, the device-reported note id and the
// content fingerprint: 20240131-03-<fingerprint>.svg. The fingerprint is
// the dedup key; the rest is for humans.
const (
	exportTimeLayout = "20060102"
	exportExt        = ".svg"
)

// ExistingFingerprints scans dir for already exported notes.
func ExistingFingerprints(fs afero.Fs, dir string) (map[string]bool, error) {
	seen := make(map[string]bool)
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	for _, info := range infos {
		name := info.Name()
		if info.IsDir() || !strings.HasSuffix(name, exportExt) {
			continue
		}
		parts := strings.Split(strings.TrimSuffix(name, exportExt), "-")
		if len(parts) < 3 {
			continue
		}
		seen[parts[2]] = true
	}
	return seen, nil
}

// Exporter writes one SVG document per note.
type Exporter struct {
	FS   afero.Fs
	Dir  string
	Opts svg.Options
	Log  zerolog.Logger

	// Now stamps export names; nil means time.Now.
	Now func() time.Time
}

// Export writes every note whose fingerprint is not already present in the
// output directory and returns the file names written.
func (e *Exporter) Export(ns []notes.Note) ([]string, error) {
	if err := e.FS.MkdirAll(e.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	seen, err := ExistingFingerprints(e.FS, e.Dir)
	if err != nil {
		return nil, err
	}
	now := e.Now
	if now == nil {
		now = time.Now
	}

	var written []string
	for _, n := range ns {
		fp := n.Fingerprint.String()
		if seen[fp] {
			observability.RecordNote("skipped")
			e.Log.Debug().Uint8("note_id", n.ID).Str("fingerprint", fp).Msg("already exported")
			continue
		}
		name := fmt.Sprintf("%s-%02d-%s%s", now().Format(exportTimeLayout), n.ID, fp, exportExt)
		doc := svg.Document(n, e.Opts)
		if err := afero.WriteFile(e.FS, filepath.Join(e.Dir, name), []byte(doc), 0o644); err != nil {
			return written, fmt.Errorf("export: %w", err)
		}
		seen[fp] = true
		written = append(written, name)
		observability.RecordNote("written")
		e.Log.Info().Uint8("note_id", n.ID).Str("file", name).Msg("note exported")
	}
	return written, nil
}
