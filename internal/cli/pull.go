package cli

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/inklift/inklift/internal/export"
	"github.com/inklift/inklift/internal/notes"
	"github.com/inklift/inklift/internal/store"
)

func newPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Download notes from the device, dump the raw buffer and export SVGs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPull()
		},
	}
}

func runPull() error {
	f, s, err := openDevice()
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := s.DownloadAll()
	if err != nil {
		return err
	}

	fsys := afero.NewOsFs()
	path, err := store.Save(fsys, cfg.Output, s.Identity().DeviceID.Uint48(), data, time.Now())
	if err != nil {
		return err
	}
	log.Info().Str("path", path).Int("bytes", len(data)).Msg("dump saved")

	return exportBuffer(fsys, data)
}

// exportBuffer decodes a raw buffer and exports every new note. Corrupt
// records are logged and skipped so one bad note cannot lose the rest.
func exportBuffer(fsys afero.Fs, data []byte) error {
	ns, derr := notes.Decode(data)
	if derr != nil {
		log.Warn().Err(derr).Int("decoded", len(ns)).Msg("some records failed to decode")
	}
	exp := &export.Exporter{
		FS:   fsys,
		Dir:  cfg.Output,
		Opts: renderOptions(),
		Log:  log.Logger,
	}
	written, err := exp.Export(ns)
	if err != nil {
		return err
	}
	log.Info().Int("notes", len(ns)).Int("exported", len(written)).Msg("export complete")
	return nil
}
