package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"booklib/cmd/booklib/shelf"
	"booklib/cmd/booklib/ui"
	"booklib/internal/api"
	"booklib/internal/config"
	"booklib/internal/library"
	"booklib/internal/logging"
	"booklib/internal/ux"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// Global flags
	verbose    bool
	configPath string
	apiURL     string
	workspace  string

	// Resolved configuration
	cfg     *config.Config
	cfgFile string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "booklib",
	Short: "booklib - manage a book collection from the terminal",
	Long: `booklib browses, searches and edits the books stored by a library service.

Run without arguments to start the interactive library. The list, add, edit
and delete subcommands do the same work non-interactively.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		if err := logging.Initialize(workspace, cfg.Logging); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}

		// The interactive screen owns stdout and stderr; only subcommands may
		// log to the terminal.
		if verbose && cmd.HasParent() {
			lc := cfg.Logging
			lc.Level = "debug"
			logging.InitializeWriter(os.Stderr, lc)
		}

		logger = logging.Get(logging.CategoryCLI)
		logger.Debug("configuration loaded",
			zap.String("api", cfg.API.BaseURL),
			zap.String("workspace", workspace))
		return nil
	},
	RunE: runLibrary,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: .booklib/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Library service URL (or set BOOKLIB_API_URL env)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")

	// Add commands to root
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newDeleteCmd())
}

func main() {
	err := rootCmd.Execute()
	logging.CloseAll()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the workspace and configuration. --api-url wins over
// the file and the environment.
func loadConfig() error {
	if workspace == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to resolve workspace: %w", err)
		}
		workspace = cwd
	}

	path := configPath
	if path == "" {
		path = config.DefaultPath(workspace)
	}

	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	if apiURL != "" {
		loaded.API.BaseURL = apiURL
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	cfg, cfgFile = loaded, path
	return nil
}

// newStore wires the library store to the configured service.
func newStore(opts ...library.StoreOption) (*library.Store, error) {
	client, err := api.NewClient(cfg.API.BaseURL, api.WithLogger(logging.Get(logging.CategoryAPI)))
	if err != nil {
		return nil, err
	}
	logger.Debug("library service", zap.String("url", client.BaseURL()))

	opts = append([]library.StoreOption{library.WithLogger(logging.Get(logging.CategoryStore))}, opts...)
	return library.NewStore(client, opts...), nil
}

// runLibrary launches the interactive library screen.
func runLibrary(cmd *cobra.Command, args []string) error {
	session := logging.AuditWithSession(uuid.NewString(), logging.CategoryUI)
	store, err := newStore(library.WithAudit(session))
	if err != nil {
		return err
	}

	prefs := ux.NewPreferencesManager(workspace)
	if err := prefs.Load(); err != nil {
		// A broken preferences file must not keep the library closed.
		logger.Warn("ignoring preferences", zap.Error(err))
	}
	prefs.RecordSession()

	model := shelf.New(shelf.Options{
		Store:   store,
		Styles:  ui.NewStyles(ui.ThemeFor(cfg.UI.Theme)),
		View:    library.ParseViewMode(prefs.View(cfg.UI.DefaultView)),
		Prefs:   prefs,
		Context: context.Background(),
		Logger:  logging.Get(logging.CategoryUI),
	})

	session.SessionStart()
	start := time.Now()

	p := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		return err
	})

	// Theme edits in the config file re-skin the running screen.
	g.Go(func() error {
		w := config.NewWatcher(cfgFile,
			func(next *config.Config) {
				logger.Debug("config reloaded", zap.String("theme", next.UI.Theme))
				p.Send(shelf.StylesMsg{Styles: ui.NewStyles(ui.ThemeFor(next.UI.Theme))})
			},
			func(err error) {
				logger.Warn("config reload failed", zap.Error(err))
			})
		if err := w.Run(gctx); err != nil {
			logger.Debug("config not watched", zap.Error(err))
		}
		return nil
	})

	err = g.Wait()
	session.SessionEnd(store.Revision(), time.Since(start))
	return err
}
