package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docgen/config"
	"docgen/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docgen",
	Short: "Generate doc comments for source methods with an LLM",
	Long: `docgen finds the methods of a source file, asks a language model to document
each one that has no doc comment yet, and writes the comments back above the
methods with matching indentation.

Example usage:
  docgen generate src/Main.java        # Document one file
  docgen generate core --dry-run       # Preview a whole directory
  docgen repair src/Main.java          # Fix broken nested doc comments
  docgen undo src/Main.java            # Restore the file before the last run`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./docgen.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "project directory holding .docgen (default is current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

func GetLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
