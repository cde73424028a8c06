package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"inkflow/internal/auth"
	"inkflow/internal/config"
	"inkflow/internal/content"
	"inkflow/internal/kv"
	"inkflow/internal/latency"
	"inkflow/internal/logging"
	"inkflow/internal/state"
	"inkflow/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

// run executes one CLI invocation and releases everything it opened.
func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	a := &app{out: out}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.ExecuteContext(ctx)
}

// app is the wiring shared by every command. It is opened lazily so that
// help and completion never touch storage.
type app struct {
	configFile string
	verbose    bool
	out        io.Writer

	cfg     *config.Config
	log     *zap.Logger
	storage kv.Storage
	content *content.Service
	session *state.Session
	posts   *state.Content
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "inkflow",
		Short: "Inkflow - a blogging client with a simulated backend",
		Long: `Inkflow reads and writes blog posts against an in-memory backend that is
seeded fresh on every invocation. Only the signed-in session survives
between runs; it is kept in SQLite or Redis depending on storage.driver.

Results are printed as JSON.`,
		SilenceUsage: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ./inkflow.yaml or $HOME/.inkflow/inkflow.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newLoginCmd(a), newSignupCmd(a), newLogoutCmd(a), newWhoamiCmd(a))
	root.AddCommand(newPostsCmd(a), newCommentsCmd(a))
	return root
}

// runE opens the app before handing over to fn.
func (a *app) runE(fn func(ctx context.Context, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.open(cmd.Context()); err != nil {
			return err
		}
		return fn(cmd.Context(), args)
	}
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if a.verbose {
		level = "debug"
	}
	logger, err := logging.New(level)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, logger

	a.storage, err = openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	seed, err := store.LoadSeedFile(cfg.Seed.Path)
	if err != nil {
		return err
	}
	st, err := store.NewMemory(seed)
	if err != nil {
		return fmt.Errorf("seed store: %w", err)
	}

	lat := latency.New(cfg.Latency.Scale)
	mgr := auth.NewManager(st, a.storage, auth.Options{
		Latency:         lat,
		VerifyPasswords: cfg.Auth.VerifyPasswords,
		Logger:          logger,
	})
	a.content = content.NewService(st, lat, logger)

	a.session, err = state.NewSession(ctx, mgr)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	a.posts = state.NewContent(a.content, a.session)

	logger.Debug("inkflow ready",
		zap.String("storage", cfg.Storage.Driver),
		zap.Float64("latency_scale", cfg.Latency.Scale),
		zap.Bool("signed_in", a.session.User() != nil))
	return nil
}

func openStorage(ctx context.Context, cfg config.StorageConfig) (kv.Storage, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		return kv.OpenRedis(ctx, cfg.RedisURL, cfg.RedisPrefix)
	default:
		return kv.OpenSQLite(ctx, cfg.SQLitePath)
	}
}

func (a *app) close() {
	if a.storage != nil {
		if err := a.storage.Close(); err != nil && a.log != nil {
			a.log.Warn("close storage", zap.Error(err))
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}
