package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/abrezinsky/aesops/internal/app"
	"github.com/abrezinsky/aesops/internal/auth"
	"github.com/abrezinsky/aesops/internal/config"
	"github.com/abrezinsky/aesops/internal/logger"
	"github.com/abrezinsky/aesops/pkg/nrdb"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

var (
	version = "dev"
)

func showBanner(baseURL string) {
	logo := []string{
		`    _                      _       _____     _     _          `,
		`   / \   ___  ___  ___  _ | |___  |_   _|_ _| |__ | | ___  ___`,
		`  / _ \ / _ \/ __|/ _ \| '_ \/ __|  | |/ _' | '_ \| |/ _ \/ __|`,
		` / ___ \  __/\__ \ (_) | |_) \__ \  | | (_| | |_) | |  __/\__ \`,
		`/_/   \_\___||___/\___/| .__/|___/  |_|\__,_|_.__/|_|\___||___/`,
		`                       |_|                                     `,
	}
	width := 0
	for _, line := range logo {
		width = max(width, len(line))
	}
	border := strings.Repeat("═", width+2)

	fmt.Printf("\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		fmt.Printf("  %s║ %s%-*s%s ║%s\n", cyan, yellow, width, line, cyan, reset)
	}
	fmt.Printf("  %s╚%s╝%s\n", cyan, border, reset)
	fmt.Printf("  %sSwiss pairings for two-sided card games%s  %s\n\n", bold, reset, baseURL)
}

// cycleLogLevel cycles through debug -> info -> warn -> error
func cycleLogLevel(appLog *logger.SlogLogger) {
	next := "info"
	switch appLog.GetLevel().String() {
	case "DEBUG":
		next = "info"
	case "INFO":
		next = "warn"
	case "WARN":
		next = "error"
	case "ERROR":
		next = "debug"
	}
	appLog.SetLevel(logger.ParseLevel(next))
	fmt.Printf("%sLog level: %s%s%s\n", green, yellow, next, reset)
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp() {
	fmt.Printf("\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Printf("    %sa%s      - Open tournament list in browser\n", cyan, reset)
	fmt.Printf("    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Printf("    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset)
	fmt.Printf("    %sq%s      - Quit server\n", cyan, reset)
	fmt.Printf("    %s?%s      - Show this help\n\n", cyan, reset)
}

func main() {
	configPath := flag.String("config", "aesops.yaml", "YAML config file (optional)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	adminPw := flag.String("adminpw", "", "Admin password (auto-generated if not set)")
	logLevel := flag.String("loglevel", "", "Log level (debug, info, warn, error)")
	noKeyboard := flag.Bool("nokeyboard", false, "Disable keyboard shortcuts")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Aesop's Tables - Swiss tournament server

Usage:
  aesops [options]

Options:
  -config str    YAML config file (default "aesops.yaml", optional)
  -port int      HTTP server port (default 8080)
  -db string     SQLite database path (default "aesops.db")
  -adminpw str   Admin password (auto-generated if not set)
  -loglevel str  Log level: debug, info, warn, error (default "info")
  -nokeyboard    Disable keyboard shortcuts
  -version       Show version and exit
  -help          Show this help message

Environment:
  AESOPS_PORT, AESOPS_DB, AESOPS_BASE_URL, AESOPS_ADMIN_PASSWORD,
  AESOPS_LOG_LEVEL, AESOPS_LOG_FORMAT, AESOPS_SCORE_FACTOR,
  NRDB_URL, NRDB_CACHE_PATH (also read from .env)

Examples:
  aesops                             # Run on port 8080 with aesops.db
  aesops -port 9000 -db store.db     # Custom port and database
  aesops -adminpw secret123          # Use a specific admin password

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("aesops %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *adminPw != "" {
		cfg.Admin.Password = *adminPw
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	appLog := logger.NewWithOptions(os.Stderr, logger.ParseFormat(cfg.Log.Format), logger.ParseLevel(cfg.Log.Level))
	if cfg.Log.HTTP {
		appLog.EnableHTTPLogging()
	}

	password := cfg.Admin.Password
	if password == "" {
		password = auth.GeneratePassword()
	}
	adminAuth := auth.NewWithLimit(password, cfg.Admin.LoginsPerMinute)

	client := nrdb.NewHTTPClient(cfg.NRDB.URL, cfg.NRDB.Timeout, appLog,
		nrdb.WithCachePath(cfg.NRDB.CachePath),
		nrdb.WithRateLimit(cfg.NRDB.RequestsPerSecond),
	)

	a, err := app.New(cfg, appLog, adminAuth, client)
	if err != nil {
		log.Fatal("Failed to initialize application: ", err)
	}
	defer a.Close()

	showBanner(a.BaseURL())
	appLog.Info("Admin password", "password", password)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !*noKeyboard {
		printKeyboardHelp()
		go listenForKeyboard(ctx, a.BaseURL()+"/api/tournaments", appLog, stop)
	}

	if err := a.Run(ctx); err != nil {
		appLog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
