package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	cliflag "k8s.io/component-base/cli/flag"
	"k8s.io/component-base/term"

	"github.com/Rus1K7/Airport/pkg/log"
)

// RunFunc is the application entry point, called after options are loaded and validated.
type RunFunc func() error

// NamedFlagSetOptions is implemented by the options struct of every command.
type NamedFlagSetOptions interface {
	// Flags returns the flags grouped by section.
	Flags() cliflag.NamedFlagSets

	// Complete fills in fields derived from other fields.
	Complete() error

	// Validate checks the completed options.
	Validate() error
}

// LogOptionsGetter is implemented by options that carry logger settings.
// The global logger is initialised from them before RunFunc is called.
type LogOptionsGetter interface {
	LogOptions() *log.Options
}

// App is a cobra command bound to a viper configuration.
type App struct {
	name        string
	shortDesc   string
	description string
	options     NamedFlagSetOptions
	runFunc     RunFunc
	noConfig    bool
	watch       bool
	envFile     string
	args        cobra.PositionalArgs

	cmd *cobra.Command
}

// Option configures an App.
type Option func(*App)

func WithOptions(opts NamedFlagSetOptions) Option {
	return func(a *App) { a.options = opts }
}

func WithRunFunc(run RunFunc) Option {
	return func(a *App) { a.runFunc = run }
}

func WithDescription(desc string) Option {
	return func(a *App) { a.description = desc }
}

// WithNoConfig disables the --config flag and config file lookup.
func WithNoConfig() Option {
	return func(a *App) { a.noConfig = true }
}

// WithWatchConfig reloads the config file on change. Only the log level is
// applied live; other changes are logged.
func WithWatchConfig() Option {
	return func(a *App) { a.watch = true }
}

// WithEnvFile names the dotenv file loaded before environment binding.
func WithEnvFile(path string) Option {
	return func(a *App) { a.envFile = path }
}

// WithDefaultValidArgs rejects positional arguments.
func WithDefaultValidArgs() Option {
	return func(a *App) {
		a.args = func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if len(arg) > 0 {
					return fmt.Errorf("%q does not take any arguments, got %q", cmd.CommandPath(), args)
				}
			}
			return nil
		}
	}
}

// NewApp creates an App named name.
func NewApp(name, shortDesc string, opts ...Option) *App {
	a := &App{
		name:      name,
		shortDesc: shortDesc,
		envFile:   ".env",
	}

	for _, o := range opts {
		o(a)
	}

	a.buildCommand()
	return a
}

// Command returns the underlying cobra command.
func (a *App) Command() *cobra.Command {
	return a.cmd
}

// Run executes the command and exits the process on failure.
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *App) buildCommand() {
	cmd := &cobra.Command{
		Use:           a.name,
		Short:         a.shortDesc,
		Long:          a.description,
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          a.args,
		RunE:          a.runCommand,
	}
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)
	cmd.Flags().SortFlags = true

	var namedFlagSets cliflag.NamedFlagSets
	if a.options != nil {
		namedFlagSets = a.options.Flags()
	}
	if !a.noConfig {
		addConfigFlag(a.name, namedFlagSets.FlagSet("global"))
	}
	namedFlagSets.FlagSet("global").BoolP("help", "h", false, fmt.Sprintf("help for %s", a.name))

	fs := cmd.Flags()
	for _, f := range namedFlagSets.FlagSets {
		fs.AddFlagSet(f)
	}

	cols, _, _ := term.TerminalSize(cmd.OutOrStdout())
	cliflag.SetUsageAndHelpFunc(cmd, namedFlagSets, cols)

	a.cmd = cmd
}

func (a *App) runCommand(cmd *cobra.Command, args []string) error {
	if err := a.loadEnvFile(); err != nil {
		return err
	}

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if !a.noConfig {
		if err := readConfig(a.name); err != nil {
			return err
		}
	}

	if a.options != nil {
		if err := viper.Unmarshal(a.options); err != nil {
			return fmt.Errorf("failed to unmarshal configuration: %w", err)
		}
		if err := a.options.Complete(); err != nil {
			return err
		}
		if err := a.options.Validate(); err != nil {
			return err
		}
		if lo, ok := a.options.(LogOptionsGetter); ok {
			log.Init(lo.LogOptions())
		}
	}
	defer log.Sync()

	if a.watch && viper.ConfigFileUsed() != "" {
		viper.OnConfigChange(onConfigChange)
		viper.WatchConfig()
	}

	if a.runFunc == nil {
		return nil
	}
	return a.runFunc()
}

func (a *App) loadEnvFile() error {
	if a.envFile == "" {
		return nil
	}
	if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", a.envFile, err)
	}
	return nil
}

func onConfigChange(e fsnotify.Event) {
	log.Info("Config file changed", "name", e.Name, "op", e.Op.String())

	if lvl := viper.GetString("log.level"); lvl != "" {
		if err := log.SetLevel(lvl); err != nil {
			log.Error(err, "Ignoring invalid log level from config", "level", lvl)
		}
	}
}

// envPrefix turns "ground-vehicle" into "GROUND_VEHICLE".
func envPrefix(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
