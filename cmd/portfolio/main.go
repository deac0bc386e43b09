package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/eringen/portfolio"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		if err := serve(); err != nil {
			log.Fatal(err)
		}
	case "version":
		fmt.Printf("portfolio %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func serve() error {
	cfg, err := portfolio.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := portfolio.New(cfg)
	return app.Start(ctx)
}

func printUsage() {
	fmt.Println(`portfolio - a personal portfolio site backed by a content API

Usage:
  portfolio [command]

Commands:
  serve      Start the web server (default)
  version    Print the version
  help       Show this help message

Configuration is read from PORTFOLIO_* environment variables and an
optional .env file in the working directory. PORTFOLIO_API_URL and
PORTFOLIO_SESSION_SECRET are required.`)
}
