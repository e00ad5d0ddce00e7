package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/inklift/inklift/internal/store"
)

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <dump.bin>",
		Short: "Export SVGs from a previously downloaded dump file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys := afero.NewOsFs()
			dump, err := store.Load(fsys, args[0])
			if err != nil {
				return err
			}
			log.Debug().
				Str("path", args[0]).
				Uint64("device_id", dump.DeviceID).
				Msg("dump loaded")
			return exportBuffer(fsys, dump.Data)
		},
	}
}
