package cli

import (
	"os"

	"github.com/apex/log"
	logcli "github.com/apex/log/handlers/cli"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the dermasense command tree.
func NewRootCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "dermasense",
		Short: "Client for the DermaSense skin-analysis service",
		Long: `DermaSense analyzes skin photographs with an AI model hosted by the
DermaSense service, tracks individual lesions over time and compares their
evolution. The serve subcommand exposes the same workflows to a local
browser UI.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env if present (ignore errors)
			_ = godotenv.Load()
			log.SetHandler(logcli.Default)
			if os.Getenv("DERMASENSE_DEBUG") != "" {
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", os.Getenv("CONFIG_PATH"), "path to config.yaml")

	cmd.AddCommand(
		newServeCmd(&cfgPath),
		newLoginCmd(&cfgPath),
		newSignupCmd(&cfgPath),
		newLogoutCmd(&cfgPath),
		newWhoamiCmd(&cfgPath),
		newAnalyzeCmd(&cfgPath),
		newLesionsCmd(&cfgPath),
		newCasesCmd(&cfgPath),
	)

	return cmd
}
