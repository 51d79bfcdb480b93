package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the quadro home directory",
	Long: `Create the quadro home directory with a default config.yaml.

Safe to run repeatedly; an existing configuration is left untouched.
The home directory defaults to ~/.quadro and may be overridden with the
QUADRO_HOME environment variable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ConfigMgr == nil {
			return fmt.Errorf("config manager not initialized")
		}

		existed := false
		if _, err := os.Stat(ConfigMgr.Path()); err == nil {
			existed = true
		}

		path, err := ConfigMgr.WriteDefault()
		if err != nil {
			return fmt.Errorf("initializing quadro home: %w", err)
		}

		if existed {
			fmt.Printf("Config already exists at %s\n", path)
		} else {
			fmt.Printf("Created %s\n", path)
		}
		fmt.Printf("\nQuadro home initialized at %s\n", BasePath)
		fmt.Println(`Set server.base_url and server.token, then run "quadro board".`)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
