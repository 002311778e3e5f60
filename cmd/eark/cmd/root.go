// Package cmd implements the eark command line tool.
package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/muesli/coral"
	"github.com/srerickson/eark"
	"github.com/srerickson/eark/logging"
)

// name of the config file in the user's home directory
const defaultCfg = `.eark.yaml`

// flags shared by all commands
var rootFlags struct {
	cfgFile string
	// repo to read packages from, and overrides for its settings
	repoName     string
	driver       string
	driverPath   string
	driverBucket string
	verbose      int
}

var log = logging.DefaultLogger()

var rootCmd = &coral.Command{
	Use:   "eark",
	Short: "Validate E-ARK information packages",
	Long: `eark validates E-ARK information packages (SIP, AIP and other CSIP
packages) stored as ZIP files, folders, or in cloud storage buckets.`,
	Version:      eark.Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *coral.Command, args []string) error {
		logging.SetVerbosity(rootFlags.verbose)
		if rootFlags.cfgFile != "" {
			return nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			log.Error(err, "can't determine home directory")
			return err
		}
		rootFlags.cfgFile = filepath.Join(home, defaultCfg)
		return nil
	},
}

// Execute runs the root command. It exits with status 1 if the command
// fails or any validated package is invalid.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&rootFlags.cfgFile, "config", "c", "", "config file (default is HOME/.eark.yaml)")
	flags.StringVarP(&rootFlags.repoName, "repo", "r", "", "name of a repo in the config to read packages from")
	flags.StringVarP(&rootFlags.driver, "driver", "d", "", "override the repo's 'driver' setting")
	flags.StringVarP(&rootFlags.driverPath, "path", "p", "", "override the repo's 'path' setting")
	flags.StringVarP(&rootFlags.driverBucket, "bucket", "b", "", "override the repo's 'bucket' setting")
	flags.CountVarP(&rootFlags.verbose, "verbose", "v", "log more details (repeat for more)")
}
