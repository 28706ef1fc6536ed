// Package main provides the entry point for the Remote Manager
// application. Remote Manager is a connection profile manager for RDP and
// VPN remote access on Linux.
//
// Features:
//   - Profile management for RDP hosts and VPN tunnels
//   - Reusable credentials stored in the system keyring
//   - Native client dispatch (xfreerdp, openvpn3, forticlient, ...)
//   - Canonical .rdp file export for hosts without a native client
//   - Terminal UI plus a command-line interface for scripting
//
// Usage:
//
//	remote-manager [options]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/yllada/remote-manager/bridge"
	"github.com/yllada/remote-manager/cli"
	"github.com/yllada/remote-manager/common"
	"github.com/yllada/remote-manager/config"
	"github.com/yllada/remote-manager/keyring"
	"github.com/yllada/remote-manager/notify"
	"github.com/yllada/remote-manager/profile"
	"github.com/yllada/remote-manager/session"
	"github.com/yllada/remote-manager/storage"
	"github.com/yllada/remote-manager/tui"
	"github.com/yllada/remote-manager/vault"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
// Default values are used for local development builds
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

var (
	// General flags
	showVersion = flag.Bool("version", false, "Show version and exit")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	showHelp    = flag.Bool("help", false, "Show help message")

	// CLI flags
	listProfiles   = flag.Bool("list", false, "List all connection profiles")
	connectProfile = flag.String("connect", "", "Connect to a profile by name or ID")
	showStatus     = flag.Bool("status", false, "Show active sessions")
	addHost        = flag.String("add-host", "", "Add a connection profile with the given name")
	addCredential  = flag.String("add-credential", "", "Add a reusable credential with the given name")
	removeProfile  = flag.String("remove", "", "Remove a profile by name or ID")
	exportRDP      = flag.String("export-rdp", "", "Write a profile's .rdp file")

	// CLI flag arguments
	hostFlag     = flag.String("host", "", "Target host for --add-host")
	modeFlag     = flag.String("mode", "", "Profile mode for --add-host: rdp or vpn")
	protocolFlag = flag.String("protocol", "", "VPN protocol for --add-host")
	userFlag     = flag.String("user", "", "Username for --add-host or --add-credential")
	domainFlag   = flag.String("domain", "", "Domain for --add-credential")
	outFlag      = flag.String("out", "", "Output directory for --export-rdp")
)

func main() {
	flag.Parse()

	if *showHelp {
		cli.PrintHelp()
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("%s v%s\n", common.AppName, appVersion)
		if buildTime != "unknown" {
			fmt.Printf("  Build:  %s\n", buildTime)
			fmt.Printf("  Commit: %s\n", commitSHA)
		}
		os.Exit(0)
	}

	// Initialize logger with structured logging and file output
	logLevel := common.LevelInfo
	if *verbose {
		logLevel = common.LevelDebug
	}

	if err := common.InitLogger(common.LogConfig{
		Level:       logLevel,
		EnableFile:  true,
		MaxFileSize: 5 * 1024 * 1024, // 5MB
		MaxBackups:  5,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}
	defer common.CloseLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(cancel)

	app, err := buildApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer app.close()

	cliMode := *listProfiles || *connectProfile != "" || *showStatus ||
		*addHost != "" || *addCredential != "" || *removeProfile != "" || *exportRDP != ""
	if cliMode {
		runCLI(ctx, app)
		return
	}

	// Terminal UI mode
	common.LogInfo("Starting %s v%s", common.AppName, appVersion)
	if err := tui.Run(app.store, app.controller); err != nil {
		common.LogError("Terminal UI exited with error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the wired collaborators.
type app struct {
	store      *profile.Store
	vault      *vault.Vault
	controller *session.Controller
	notifier   *notify.Notifier
	mirror     *storage.Mirror
}

func (a *app) close() {
	if a.mirror != nil {
		if err := a.mirror.Close(); err != nil {
			common.LogWarn("Error closing mirror database: %v", err)
		}
	}
}

// buildApp loads persisted state and wires the stores, secret storage,
// native bridge, and session controller together.
func buildApp(ctx context.Context) (*app, error) {
	cfgPath, err := config.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("cannot resolve config path: %w", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		common.LogWarn("Falling back to default configuration: %v", err)
	}

	secrets, err := keyring.New()
	if err != nil {
		return nil, fmt.Errorf("cannot initialize credential storage: %w", err)
	}

	credsPath, err := config.CredentialsPath()
	if err != nil {
		return nil, fmt.Errorf("cannot resolve credentials path: %w", err)
	}
	seedCreds, err := config.LoadCredentials(credsPath)
	if err != nil {
		common.LogWarn("Could not load credential metadata: %v", err)
	}

	a := &app{
		store: profile.NewStore(cfg.Connections),
		vault: vault.New(seedCreds, secrets),
	}

	if cfg.NativeSync {
		dataDir, err := common.GetDataDir()
		if err == nil {
			a.mirror, err = storage.Open(filepath.Join(dataDir, common.MirrorFileName))
		}
		if err != nil {
			common.LogWarn("Native sync unavailable: %v", err)
			a.mirror = nil
		}
	}

	cfgStore := config.NewStore(cfg)
	a.store.SetPersister(func(profiles []profile.Profile) error {
		snapshot := cfgStore.Update(func(c *config.AppConfig) {
			c.Connections = profiles
		})
		if err := config.Save(cfgPath, snapshot); err != nil {
			return err
		}
		if a.mirror != nil {
			if err := a.mirror.SaveConnections(ctx, profiles); err != nil {
				common.LogWarn("Mirror sync failed: %v", err)
			}
		}
		return nil
	})

	a.vault.SetPersister(func(creds []vault.Credential) error {
		if err := config.SaveCredentials(credsPath, creds); err != nil {
			return err
		}
		if a.mirror != nil {
			if err := a.mirror.SaveCredentials(ctx, creds); err != nil {
				common.LogWarn("Mirror sync failed: %v", err)
			}
		}
		return nil
	})

	b := bridge.Detect()
	if !b.Available() {
		common.LogInfo("No native client detected, RDP profiles export .rdp files")
	}

	var sink session.ArtifactSink
	if dataDir, err := common.GetDataDir(); err == nil {
		sink = session.DirSink{Dir: filepath.Join(dataDir, "exports")}
	}

	a.controller = session.NewController(a.store, a.vault, b, sink, session.DefaultConfig())
	a.notifier = notify.New()
	return a, nil
}

// runCLI handles command-line operations.
func runCLI(ctx context.Context, a *app) {
	// Desktop notifications accompany CLI connects; the TUI renders
	// state itself.
	a.controller.SetOnStateChange(a.notifier.OnTransition(
		func(id string) string {
			if p, ok := a.store.Get(id); ok {
				return p.Name
			}
			return ""
		},
		a.controller.LastError,
	))

	select {
	case <-ctx.Done():
		common.LogInfo("Operation cancelled before execution")
		return
	default:
	}

	cliApp := cli.New(a.store, a.vault, a.controller)

	var cliErr error
	switch {
	case *listProfiles:
		cliErr = cliApp.ListProfiles()
	case *connectProfile != "":
		cliErr = cliApp.Connect(*connectProfile)
	case *showStatus:
		cliErr = cliApp.Status()
	case *addHost != "":
		cliErr = cliApp.AddHost(*addHost, *hostFlag, *modeFlag, *protocolFlag, *userFlag)
	case *addCredential != "":
		cliErr = cliApp.AddCredential(*addCredential, *userFlag, *domainFlag)
	case *removeProfile != "":
		cliErr = cliApp.RemoveProfile(*removeProfile)
	case *exportRDP != "":
		cliErr = cliApp.ExportRDP(*exportRDP, *outFlag)
	}

	if cliErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", cliErr)
		os.Exit(1)
	}
}

// setupSignalHandler configures graceful shutdown on SIGINT/SIGTERM.
func setupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		common.LogInfo("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
	}()
}
