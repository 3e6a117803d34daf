package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/tutorcore/internal/app"
	"github.com/abhisek/tutorcore/internal/config"
	"github.com/abhisek/tutorcore/internal/logger"
)

var (
	cfgFile string
	v       = config.New()
)

var rootCmd = &cobra.Command{
	Use:          "tutorcore",
	Short:        "Learning progress engine",
	Long:         "tutorcore tracks mastery, unlocks subtopics, adapts difficulty and schedules spaced-repetition reviews.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Path to a config file (yaml, toml or json)")
	pf.String("db", "", "Path to SQLite database file (overrides TUTOR_DB env var)")
	pf.String("mode", "dev", "Run mode: dev or prod (controls log format)")
	bindFlags(v, pf.Lookup("db"), pf.Lookup("mode"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(topicCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(reviewsCmd)
	rootCmd.AddCommand(difficultyCmd)
	rootCmd.AddCommand(versionCmd)
}

// bindFlags binds each flag to the viper key of the same name.
func bindFlags(v *viper.Viper, flags ...*pflag.Flag) {
	for _, f := range flags {
		if err := v.BindPFlag(f.Name, f); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", f.Name, err))
		}
	}
}

// setup loads the configuration and opens the engine. The returned func
// closes the store and flushes logs.
func setup(cmd *cobra.Command) (*app.App, func(), error) {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load config")
	}
	log, err := logger.New(cfg.Mode)
	if err != nil {
		return nil, nil, errors.Wrap(err, "init logger")
	}
	st, err := app.OpenStore(cfg)
	if err != nil {
		log.Sync()
		return nil, nil, errors.Wrap(err, "open store")
	}
	a := app.New(cfg, st, log, app.Options{})
	return a, func() {
		st.Close()
		log.Sync()
	}, nil
}
