package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/supremetuning/tuningcalc/internal/app"
	"github.com/supremetuning/tuningcalc/internal/auth"
	"github.com/supremetuning/tuningcalc/internal/logger"
)

var version = "dev"

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "catalog.db", "SQLite database path")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `tuningcalc - Chiptuning catalog and stage calculator

Usage:
  tuningcalc [options]

Options:
  -port int      HTTP server port (default 8080)
  -db string     SQLite database path (default "catalog.db")
  -loglevel str  Log level: debug, info, warn, error (default "info")
  -version       Show version and exit
  -help          Show this help message

Environment:
  JWT_SECRET       Token signing secret (generated per run if unset)
  ADMIN_USERNAME   Overrides the stored admin username at startup
  ADMIN_PASSWORD   Overrides the stored admin password at startup

Examples:
  tuningcalc                        # Run on port 8080 with catalog.db
  tuningcalc -port 80 -db prod.db   # Production example

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("tuningcalc %s\n", version)
		os.Exit(0)
	}

	appLog := logger.NewWithLevel(logger.ParseLevel(*logLevel))

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = auth.GenerateSecret()
		appLog.Warn("JWT_SECRET not set, using a per-run secret; admin sessions will not survive restarts")
	}

	a, err := app.New(appLog, *dbPath, jwtSecret)
	if err != nil {
		log.Fatal("Failed to initialize application:", err)
	}

	addr := fmt.Sprintf(":%d", *port)
	if err := a.Run(addr); err != nil {
		log.Fatal(err)
	}
}
