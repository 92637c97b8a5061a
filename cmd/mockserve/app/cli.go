// Package app wires cmd/mockserve's cobra subcommands to the
// config/server/cache/tabledb packages.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phillarmonic/mockscript/internal/cache"
	"github.com/phillarmonic/mockscript/internal/config"
	"github.com/phillarmonic/mockscript/internal/lsp"
	"github.com/phillarmonic/mockscript/internal/runtime"
	"github.com/phillarmonic/mockscript/internal/server"
	"github.com/phillarmonic/mockscript/internal/tabledb"
)

// App is the mockserve CLI application.
type App struct {
	version string
	commit  string
	date    string

	rootCmd *cobra.Command

	configFile  string
	addr        string
	dataDir     string
	cacheDir    string
	showVersion bool
}

// NewApp builds the root command and its serve/check/version subcommands.
func NewApp(version, commit, date string) *App {
	a := &App{version: version, commit: commit, date: date}

	a.rootCmd = &cobra.Command{
		Use:   "mockserve",
		Short: "mockserve serves JSON-configured mock HTTP endpoints",
		Long: `mockserve is a mock HTTP server whose routes are configured in YAML and
may run a small embedded scripting language to compute their response from
the incoming request.`,
		SilenceUsage: true,
	}

	a.rootCmd.PersistentFlags().StringVarP(&a.configFile, "file", "f", "", "route file (default: discovered, see docs)")
	a.rootCmd.AddCommand(a.newServeCommand())
	a.rootCmd.AddCommand(a.newCheckCommand())
	a.rootCmd.AddCommand(a.newVersionCommand())

	return a
}

// Execute runs the CLI.
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

func (a *App) newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mock HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe()
		},
	}
	cmd.Flags().StringVar(&a.addr, "addr", ":8080", "address to listen on")
	cmd.Flags().StringVar(&a.dataDir, "data-dir", ".mockscript/data", "SoloDB directory backing the persistent table store")
	cmd.Flags().StringVar(&a.cacheDir, "cache-dir", ".mockscript/cache", "SoloDB directory backing the in-memory cache")
	return cmd
}

func (a *App) newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load and compile the route file without starting the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck()
		},
	}
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ShowVersion(a.version, a.commit, a.date)
		},
	}
}

func (a *App) resolveConfigPath() (string, error) {
	return config.FindConfigFile(a.configFile)
}

func (a *App) runCheck() error {
	path, err := a.resolveConfigPath()
	if err != nil {
		return err
	}
	loaded, err := config.Load(path)
	if err != nil {
		for _, d := range lsp.FromCompileError(err) {
			fmt.Fprintf(os.Stderr, "%s:%d:%d: %s\n", path, d.Range.Start.Line+1, d.Range.Start.Character+1, d.Message)
		}
		return err
	}
	fmt.Printf("%s: %d route(s) compiled successfully\n", path, len(loaded.Snapshot.Routes))
	return nil
}

func (a *App) runServe() error {
	path, err := a.resolveConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(a.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	if err := os.MkdirAll(a.cacheDir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	store, err := tabledb.Open(a.dataDir)
	if err != nil {
		return fmt.Errorf("opening table store: %w", err)
	}
	defer store.Close()

	cacheStore, err := cache.Open(a.cacheDir)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer cacheStore.Close()

	globals := runtime.NewGlobals(cacheStore, store)
	srv := server.New(path, globals, a.dataDir)
	if err := srv.Reload(); err != nil {
		return fmt.Errorf("loading routes: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := server.WatchAndReload(ctx, srv); err != nil {
		fmt.Fprintf(os.Stderr, "warning: route file watch disabled: %v\n", err)
	}

	httpSrv := &http.Server{Addr: a.addr, Handler: srv.Handler()}
	go func() {
		<-ctx.Done()
		_ = httpSrv.Close()
	}()

	fmt.Printf("mockserve listening on %s (routes: %s)\n", a.addr, path)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
