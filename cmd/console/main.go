// Package main implements the Catalog Console entry point.
// This file handles command-line argument parsing, dependency wiring,
// and mode selection between the interactive console and the one-shot
// generate, import and reset commands.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/catalog-console/console/internal/app"
	"github.com/catalog-console/console/internal/catalog"
	"github.com/catalog-console/console/internal/config"
	"github.com/catalog-console/console/internal/content"
	"github.com/catalog-console/console/internal/generation"
	"github.com/catalog-console/console/internal/importer"
	"github.com/catalog-console/console/internal/interfaces"
	"github.com/catalog-console/console/internal/logging"
	"github.com/catalog-console/console/internal/protocol"
	"github.com/catalog-console/console/internal/state"
	tea "github.com/charmbracelet/bubbletea"
)

// Application metadata
const (
	Version     = "1.0.0"
	ProgramName = "Catalog Console"
)

// Environment variables read at startup
const (
	DebugEnv    = "CATALOG_DEBUG"
	LogFileEnv  = "CATALOG_LOG_FILE"
	LogLevelEnv = "CATALOG_LOG_LEVEL"
)

// CommandLineArgs represents parsed command-line arguments
type CommandLineArgs struct {
	Profile     string
	BaseURL     string
	Theme       string
	Generate    string
	Audience    string
	Apply       bool
	Import      string
	Reset       bool
	ShowHelp    bool
	ShowVersion bool
}

// importPaths splits the comma separated --import value
func (a CommandLineArgs) importPaths() []string {
	var paths []string
	for _, p := range strings.Split(a.Import, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func (a CommandLineArgs) headless() bool {
	return a.Generate != "" || a.Import != "" || a.Reset
}

// Dependencies holds all wired application components
type Dependencies struct {
	Config     interfaces.ConfigManager
	Profile    *interfaces.Profile
	Client     *protocol.Client
	Generation *generation.Service
	Reconciler *generation.Reconciler
	Importer   *importer.Importer
	Store      *state.Store
	Renderer   *content.Renderer
	Logger     *logging.Logger
}

// ConsoleApp represents the main application with all injected dependencies
type ConsoleApp struct {
	deps Dependencies
	args CommandLineArgs
}

func main() {
	args := parseCommandLineArgs()

	if handleEarlyExitConditions(args) {
		return
	}

	logger := initializeLogging(args)

	if err := validateArguments(args); err != nil {
		logger.Error("Invalid arguments", "error", err.Error())
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		flag.Usage()
		os.Exit(1)
	}

	deps, err := initializeDependencies(args, logger)
	if err != nil {
		logger.Error("Failed to initialize application components", "error", err.Error())
		fmt.Fprintf(os.Stderr, "Error initializing application: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consoleApp := &ConsoleApp{
		deps: deps,
		args: args,
	}

	if err := consoleApp.Run(ctx); err != nil {
		logger.Error("Application terminated with error", "error", err.Error())
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Application shutdown completed successfully")
}

// parseCommandLineArgs registers and parses the command-line flags
func parseCommandLineArgs() CommandLineArgs {
	var args CommandLineArgs

	flag.StringVar(&args.Profile, "profile", config.DefaultProfileName, "Profile name from the configuration file")
	flag.StringVar(&args.BaseURL, "base-url", "", "Catalog API base URL, overriding the profile")
	flag.StringVar(&args.Theme, "theme", "", "Syntax highlighting theme for JSON previews")
	flag.StringVar(&args.Generate, "generate", "", "Generate a description for the product with this item id and exit")
	flag.StringVar(&args.Audience, "audience", catalog.Audiences[0].ID, "Target audience used with --generate")
	flag.BoolVar(&args.Apply, "apply", false, "With --generate, write the generated description to the product")
	flag.StringVar(&args.Import, "import", "", "Comma separated .csv or .json files to import and exit")
	flag.BoolVar(&args.Reset, "reset", false, "Mark the catalog as not initialized and exit")
	flag.BoolVar(&args.ShowHelp, "help", false, "Display usage information and exit")
	flag.BoolVar(&args.ShowVersion, "version", false, "Display version information and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", ProgramName, Version)
		fmt.Fprintf(os.Stderr, "A terminal front end for a product catalog with AI generated\n")
		fmt.Fprintf(os.Stderr, "product descriptions.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                   # Open the console with the default profile\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --base-url http://localhost:8080  # Use a local catalog API\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --import a.csv,b.json             # Import products without the UI\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --generate 1001 --audience students --apply\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAudiences: %s\n", strings.Join(audienceIDs(), ", "))
		fmt.Fprintf(os.Stderr, "Environment: %s, %s, %s, %s\n", config.BaseURLEnv, DebugEnv, LogFileEnv, LogLevelEnv)
		fmt.Fprintf(os.Stderr, "Configuration file location: ~/.config/catalog-console/profiles.yaml\n")
	}

	flag.Parse()
	return args
}

func audienceIDs() []string {
	ids := make([]string, 0, len(catalog.Audiences))
	for _, a := range catalog.Audiences {
		ids = append(ids, a.ID)
	}
	return ids
}

// handleEarlyExitConditions processes help and version flags that cause immediate exit
func handleEarlyExitConditions(args CommandLineArgs) bool {
	if args.ShowHelp {
		flag.Usage()
		return true
	}

	if args.ShowVersion {
		fmt.Printf("%s v%s\n", ProgramName, Version)
		fmt.Printf("API client: Catalog-Console/%s\n", protocol.ClientVersion)
		fmt.Printf("Built with Go and Charm libraries\n")
		return true
	}

	return false
}

// initializeLogging sets up the global logger. The interactive console owns
// the terminal, so its logs go to a file.
func initializeLogging(args CommandLineArgs) *logging.Logger {
	logConfig := logging.DefaultConfig()
	logConfig.Level = logging.ParseLevel(os.Getenv(LogLevelEnv))

	if os.Getenv(DebugEnv) == "true" {
		logConfig.Level = logging.DebugLevel
		logConfig.Format = "json"
	}

	if !args.headless() {
		logConfig.Output = defaultLogFile()
	}
	if path := os.Getenv(LogFileEnv); path != "" {
		logConfig.Output = path
	}

	if err := logging.InitGlobalLogger(logConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	logger := logging.GetGlobalLogger()
	logger.Info("Catalog Console starting",
		"version", Version,
		"args", fmt.Sprintf("%+v", args))

	return logger
}

func defaultLogFile() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "catalog-console", "console.log")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "discard"
	}
	return filepath.Join(home, ".local", "state", "catalog-console", "console.log")
}

// validateArguments ensures command-line arguments are valid and compatible
func validateArguments(args CommandLineArgs) error {
	modes := 0
	for _, set := range []bool{args.Generate != "", args.Import != "", args.Reset} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return fmt.Errorf("--generate, --import and --reset cannot be combined")
	}

	if args.Apply && args.Generate == "" {
		return fmt.Errorf("--apply requires --generate")
	}

	if _, ok := catalog.AudienceByID(args.Audience); !ok {
		return fmt.Errorf("unknown audience %q", args.Audience)
	}

	if args.Import != "" {
		paths := args.importPaths()
		if len(paths) == 0 {
			return fmt.Errorf("--import needs at least one file")
		}
		for _, p := range paths {
			if !importer.Supported(p) {
				return fmt.Errorf("%s: %w", p, importer.ErrUnsupportedFormat)
			}
		}
	}

	return nil
}

// initializeDependencies creates all application components
func initializeDependencies(args CommandLineArgs, logger *logging.Logger) (Dependencies, error) {
	logger.Debug("Initializing application components")

	var deps Dependencies
	deps.Logger = logger

	configManager, err := config.NewManager()
	if err != nil {
		return deps, fmt.Errorf("failed to initialize config manager: %w", err)
	}
	deps.Config = configManager

	profile, err := deps.Config.LoadProfile(args.Profile)
	if err != nil {
		return deps, fmt.Errorf("failed to load profile '%s': %w", args.Profile, err)
	}
	if args.BaseURL != "" {
		profile.BaseURL = args.BaseURL
	}
	if args.Theme != "" {
		profile.Theme = args.Theme
	}
	if err := deps.Config.ValidateProfile(profile); err != nil {
		return deps, fmt.Errorf("invalid profile '%s': %w", profile.Name, err)
	}
	deps.Profile = profile

	client, err := protocol.NewClientFromProfile(profile)
	if err != nil {
		return deps, fmt.Errorf("failed to initialize catalog client: %w", err)
	}
	deps.Client = client

	deps.Generation = generation.NewService(client, nil, generation.OptionsFromProfile(profile))
	deps.Reconciler = generation.NewReconciler(client, nil)
	deps.Importer = importer.New(client, importer.Options{})
	deps.Renderer = content.NewRenderer(profile.Theme, false)

	statePath, err := state.DefaultPath()
	if err != nil {
		return deps, fmt.Errorf("failed to resolve state file: %w", err)
	}
	store, err := state.Open(statePath, nil)
	if err != nil {
		return deps, fmt.Errorf("failed to open state file: %w", err)
	}
	deps.Store = store

	logger.Info("Application components initialized successfully",
		"profile", profile.Name,
		"config", deps.Config.GetConfigPath(),
		"base_url", client.BaseURL())
	return deps, nil
}

// Run executes the selected mode
func (ca *ConsoleApp) Run(ctx context.Context) error {
	switch {
	case ca.args.Reset:
		return ca.runReset()
	case ca.args.Import != "":
		return ca.runImport(ctx)
	case ca.args.Generate != "":
		return ca.runGenerate(ctx)
	default:
		return ca.runConsole(ctx)
	}
}

// runConsole starts the interactive console
func (ca *ConsoleApp) runConsole(ctx context.Context) error {
	ca.deps.Logger.Debug("Creating Bubble Tea program")

	controller := app.NewConsoleController(ctx, app.Dependencies{
		Client:     ca.deps.Client,
		Generation: ca.deps.Generation,
		Reconciler: ca.deps.Reconciler,
		Importer:   ca.deps.Importer,
		Store:      ca.deps.Store,
		Renderer:   ca.deps.Renderer,
		Logger:     ca.deps.Logger,
	})
	defer controller.Shutdown()

	program := tea.NewProgram(controller,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	ca.deps.Logger.Info("Starting TUI application")
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// runReset clears the catalog initialized flag
func (ca *ConsoleApp) runReset() error {
	if err := ca.deps.Store.SetInitialized(false); err != nil {
		return err
	}
	fmt.Println("Catalog marked as not initialized. The next start opens the upload view.")
	return nil
}

// runImport imports the given files and marks the catalog initialized
func (ca *ConsoleApp) runImport(ctx context.Context) error {
	paths := ca.args.importPaths()
	result, err := ca.deps.Importer.Import(ctx, paths, func(p importer.Progress) {
		if p.Message != "" {
			fmt.Printf("[%s %d/%d] %s\n", p.Step, p.Done, p.Total, p.Message)
		}
	})
	if err != nil {
		if result != nil {
			return fmt.Errorf("import failed after saving %d products: %w", countSaved(result), err)
		}
		return fmt.Errorf("import failed: %w", err)
	}

	if err := ca.deps.Store.SetInitialized(true); err != nil {
		return fmt.Errorf("products imported but catalog state could not be saved: %w", err)
	}
	fmt.Printf("Imported %d products from %d files.\n", len(result.ItemIDs), result.Files)
	return nil
}

func countSaved(result *importer.Result) int {
	saved := 0
	for _, id := range result.ItemIDs {
		if id != "" {
			saved++
		}
	}
	return saved
}

// runGenerate generates a description for one product, printing it and
// optionally writing it back
func (ca *ConsoleApp) runGenerate(ctx context.Context) error {
	products, err := ca.deps.Client.Products(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch products: %w", err)
	}

	var product *interfaces.Product
	for i := range products {
		if products[i].ItemID == ca.args.Generate {
			product = &products[i]
			break
		}
	}
	if product == nil {
		return fmt.Errorf("product %s not found", ca.args.Generate)
	}

	fmt.Printf("Generating a description for %q (%s)...\n", product.ProductName, ca.args.Audience)

	form := generation.FormFromProduct(*product, ca.args.Audience)
	session, err := ca.deps.Generation.Run(ctx, product.ItemID, form)
	if err != nil {
		return err
	}

	switch session.Status {
	case generation.StatusCompleted:
		fmt.Printf("\n%s\n\n", session.Outcome.Description)
	case generation.StatusTimedOut:
		return fmt.Errorf("%s", session.Outcome.Message)
	default:
		return fmt.Errorf("generation failed: %s", session.Outcome.Message)
	}

	if !ca.args.Apply {
		return nil
	}

	ca.deps.Reconciler.Begin(product.ItemID, session.RequestID)
	ca.deps.Reconciler.Resolve(session)
	updated, err := ca.deps.Reconciler.Confirm(ctx, *product)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	fmt.Printf("Description saved to %s at %s.\n", updated.ItemID, updated.UpdatedAt)
	return nil
}
