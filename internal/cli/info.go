package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/inklift/inklift/internal/notes"
	"github.com/inklift/inklift/internal/protocol/session"
	"github.com/inklift/inklift/internal/store"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print device or dump identity and note count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isCharDevice(cfg.Device) {
				return deviceInfo(cmd)
			}
			return dumpInfo(cmd)
		},
	}
}

func deviceInfo(cmd *cobra.Command) error {
	f, s, err := openDevice()
	if err != nil {
		return err
	}
	defer f.Close()

	count, err := s.NoteCount()
	if err != nil {
		return err
	}
	id := s.Identity()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Product ID: %d\n", id.ProductID)
	fmt.Fprintf(out, "Version: %d\n", id.Version)
	fmt.Fprintf(out, "Pad version: %d\n", id.PadVersion)
	fmt.Fprintf(out, "Mode: %d (%s)\n", uint8(id.Mode), id.Mode)
	fmt.Fprintf(out, "Device Id: %s\n", id.DeviceID)
	fmt.Fprintf(out, "Notes count: %02d\n", count)
	return nil
}

func dumpInfo(cmd *cobra.Command) error {
	dump, err := store.Load(afero.NewOsFs(), cfg.Device)
	if err != nil {
		return err
	}
	ns, derr := notes.Decode(dump.Data)
	if derr != nil {
		log.Warn().Err(derr).Int("decoded", len(ns)).Msg("some records failed to decode")
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Data from device Id: %012X\n", dump.DeviceID)
	fmt.Fprintf(out, "Notes count: %02d\n", len(ns))
	return nil
}

// openDevice opens the configured device node and identifies it.
func openDevice() (*os.File, *session.Session, error) {
	f, err := os.OpenFile(cfg.Device, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	s, err := session.Open(f, session.Options{
		Timeout: cfg.ReplyTimeout(),
		Logger:  log.Logger,
	})
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, s, nil
}
