// Package cli wires the inklift commands together.
package cli

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/inklift/inklift/internal/config"
	"github.com/inklift/inklift/internal/logging"
	"github.com/inklift/inklift/internal/svg"
)

var (
	cfg config.Config

	cfgPath    string
	deviceFlag string
	outputFlag string
)

func NewRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "inklift",
		Short:         "Retrieve and export notes from Pegasus digital pens",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.ConfigureRuntime()
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if deviceFlag != "" {
				loaded.Device = deviceFlag
			}
			if outputFlag != "" {
				loaded.Output = outputFlag
			}
			cfg = loaded
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "TOML config file")
	cmd.PersistentFlags().StringVarP(&deviceFlag, "device", "d", "", "device node or dump file")
	cmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "output directory")
	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newPullCmd())
	cmd.AddCommand(newConvertCmd())
	return cmd
}

func renderOptions() svg.Options {
	return svg.Options{
		PageWidth:  cfg.Page.Width,
		PageHeight: cfg.Page.Height,
		Scale:      cfg.Page.Scale,
	}
}

func isCharDevice(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("stat failed, assuming dump file")
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
