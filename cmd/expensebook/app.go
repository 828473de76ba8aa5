package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"expensebook/internal/backend"
	"expensebook/internal/cli"
	"expensebook/internal/config"
	"expensebook/internal/core"
	"expensebook/internal/log"
	"expensebook/internal/services"
)

type openFunc func(ctx context.Context, logger *log.Logger, cfg *config.Config) (*backend.BackendResult, error)

// app carries what every command needs. Storage is opened on first use.
type app struct {
	v       *viper.Viper
	cfgFile string
	envFile string
	out     io.Writer
	errOut  io.Writer
	now     func() time.Time
	open    openFunc

	cfg      *config.Config
	logger   *log.Logger
	cal      core.Calendar
	store    *backend.BackendResult
	profiles *services.ProfileStore
	records  *services.RecordStore
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		v:      viper.New(),
		out:    out,
		errOut: errOut,
		now:    time.Now,
		open:   cli.OpenBackend,
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "expensebook",
		Short: "💰 A local-first personal expense book",
		Long: `expensebook records personal expenses per profile, shows period
statistics and monthly history, and exports or imports backups.

All data stays on this machine.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.init,
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/expensebook/config.yaml)")
	flags.StringVar(&a.envFile, "env-file", "", "dotenv file to load (default: .env)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("storage", "", "storage backend (sqlite, memory)")

	_ = a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))
	_ = a.v.BindPFlag(config.KeyStorageBackend, flags.Lookup("storage"))

	root.AddCommand(a.profileCmd())
	root.AddCommand(a.addCmd())
	root.AddCommand(a.deleteCmd())
	root.AddCommand(a.clearCmd())
	root.AddCommand(a.statsCmd())
	root.AddCommand(a.historyCmd())
	root.AddCommand(a.infoCmd())
	root.AddCommand(a.categoriesCmd())
	root.AddCommand(a.exportCmd())
	root.AddCommand(a.importCmd())

	return root
}

func (a *app) init(_ *cobra.Command, _ []string) error {
	if a.envFile != "" {
		cli.LoadEnvFile(a.envFile)
	} else {
		cli.LoadEnvFile()
	}

	cfg, err := cli.LoadAndValidateConfig(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := cli.SetupLogger(cfg, a.errOut)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.cal = core.NewCalendar(loc)
	logger.WithComponent(log.ComponentConfig).Debug("Configuration loaded",
		log.FieldBackend, cfg.StorageBackend,
		log.FieldPath, cfg.StoragePath,
		"timezone", loc.String())
	return nil
}

// state opens storage if needed and restores the persisted state.
func (a *app) state(ctx context.Context) (core.State, error) {
	if a.store == nil {
		res, err := a.open(ctx, a.logger, a.cfg)
		if err != nil {
			return core.State{}, err
		}
		a.store = res
		a.records = services.NewRecordStore(res.KV, a.logger).WithClock(a.now)
		a.profiles = services.NewProfileStore(res.KV, a.records, a.logger).WithClock(a.now)
	}
	return a.profiles.Restore(ctx)
}

// activeState is state that fails unless a profile is selected.
func (a *app) activeState(ctx context.Context) (core.State, core.Profile, error) {
	st, err := a.state(ctx)
	if err != nil {
		return st, core.Profile{}, err
	}
	p, err := st.ActiveProfile()
	if err != nil {
		return st, core.Profile{}, err
	}
	return st, p, nil
}

func (a *app) close() error {
	if a.store == nil || a.store.Cleanup == nil {
		return nil
	}
	err := a.store.Cleanup()
	a.store = nil
	return err
}

func (a *app) currency() string {
	if a.cfg == nil || a.cfg.Currency == "" {
		return "CNY"
	}
	return a.cfg.Currency
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// describeError turns error kinds into user-facing notices.
func describeError(err error) string {
	switch {
	case errors.Is(err, core.ErrNoActiveProfile):
		return "No profile selected. Create one with 'expensebook profile create <name>' or pick one with 'expensebook profile use <name>'."
	case errors.Is(err, core.ErrEmptyData):
		return "There are no records to export."
	case errors.Is(err, core.ErrStorageUnavailable):
		return "Storage is unavailable: " + err.Error()
	default:
		return err.Error()
	}
}
