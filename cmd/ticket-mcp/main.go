package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/gatescan/ticket-vision/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("ticket-vision-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("ticket-vision-mcp - MCP server for ticket localization and rectification")
			fmt.Println()
			fmt.Println("Usage: ticket-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  TICKET_MCP_LOG_LEVEL=debug    Enable debug logging")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Logging goes to stderr, stdout carries the MCP protocol.
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if os.Getenv("TICKET_MCP_LOG_LEVEL") == "debug" {
		log.SetLevel(logrus.DebugLevel)
		log.Debugf("ticket-vision-mcp v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	srv := server.New(log)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
