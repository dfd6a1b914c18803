package main

import (
	"errors"
	"io/fs"
	"os"

	"supplychain/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "configs/config.yaml"

type rootOptions struct {
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "supplychain",
		Short:         "Supply chain dashboard server and terminal client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", os.Getenv("SUPPLYCHAIN_CONFIG"),
		"path to the YAML configuration file (default "+defaultConfigFile+" when present)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	cmd.AddCommand(
		newServeCmd(opts),
		newWatchCmd(opts),
		newItemsCmd(opts),
		newLoginCmd(opts),
		newHashPasswordCmd(),
	)
	return cmd
}

// load reads the dotenv file, if any, and then the configuration
func (o *rootOptions) load() (*config.Config, error) {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	path := o.configFile
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	return config.Load(path)
}
