package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/avendal/davgate/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "davgate",
	Short:   "WebDAV gateway with tenant scoping and upload housekeeping",
	Long: `Davgate is a WebDAV gateway in front of a plain file store. It scopes
clients to a home path, gates requests on HTTP Basic credentials, and
prunes stale sibling files after completed uploads.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg.Log)
		cmd.SetContext(withConfig(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file paths, later files override earlier ones (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("scope-path", "", "URL prefix the gateway answers for (default: /files, env: DAVGATE_SCOPE_PATH)")
	rootCmd.PersistentFlags().String("scope-root", "", "on-disk directory to serve (default: ./data, env: DAVGATE_SCOPE_ROOT)")
	rootCmd.PersistentFlags().String("scope-segment", "", "tenant sub-scope under the scope path (env: DAVGATE_SCOPE_SEGMENT)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
