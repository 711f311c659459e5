package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mergelist/mergelist/internal/config"
	"github.com/mergelist/mergelist/internal/entries"
	"github.com/mergelist/mergelist/internal/logging"
	"github.com/mergelist/mergelist/internal/script"
	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "mergelist",
		Short: "Replay a shared to-do list operation script into a convergent board",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay()
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("script", defaults.GetString("script.path"), "Path to a JSON-lines operation script (built-in sample when empty)")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().Bool("verbose", defaults.GetBool("output.verbose"), "Dump the full entry structures instead of one line per entry")

	bindFlag(cmd, "script.path", "script")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "output.verbose", "verbose")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runReplay() error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel, true)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	directives, err := loadDirectives(appConfig.ScriptPath, logger)
	if err != nil {
		return err
	}

	board := entries.NewBoard(entries.BoardConfig{
		Logger:     logger,
		IDProvider: entries.NewUUIDProvider(),
	})
	script.Apply(board, directives)

	visible := board.Entries()
	if appConfig.Verbose {
		fmt.Println(litter.Sdump(visible))
	} else {
		for _, entry := range visible {
			marker := " "
			if entry.State == entries.EntryStateDone {
				marker = "x"
			}
			fmt.Printf("[%s] %d %s\n", marker, entry.ID.Int64(), entry.Name)
		}
	}
	fmt.Printf("%d entries visible\n", board.Count())
	return nil
}

func loadDirectives(path string, logger *zap.Logger) ([]script.Directive, error) {
	if path == "" {
		logger.Info("no script provided, replaying built-in sample")
		return sampleScenario(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close() //nolint:errcheck

	directives, err := script.Parse(file)
	if err != nil {
		return nil, err
	}
	logger.Info("script loaded", zap.String("path", path), zap.Int("directives", len(directives)))
	return directives, nil
}

// sampleScenario exercises out-of-order arrival, an equal-timestamp conflict,
// and a dismiss/allow round trip.
func sampleScenario() []script.Directive {
	return []script.Directive{
		{Op: "add", Entry: 1, User: 100, Name: "Buy milk", At: 10},
		{Op: "done", Entry: 1, User: 100, At: 20},
		{Op: "add", Entry: 2, User: 101, Name: "Water plants", At: 15},
		{Op: "add", Entry: 2, User: 100, Name: "Water the plants", At: 15},
		{Op: "add", Entry: 3, User: 102, Name: "Call plumber", At: 5},
		{Op: "remove", Entry: 3, User: 101, At: 5},
		{Op: "dismiss", User: 100},
		{Op: "allow", User: 100},
	}
}
