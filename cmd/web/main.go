package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"debtlens/internal/app"
	"debtlens/pkg/contracts"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML config file (searches config.yaml and configs/config.yaml when empty)")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		printVersion(os.Stdout)
		return
	}

	// Create application instance
	application, err := app.NewApplication(*configFile)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start application
	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// printVersion writes the release lines shown by the -version flag.
func printVersion(w io.Writer) {
	fmt.Fprintln(w, app.AppName)
	fmt.Fprintln(w, contracts.GetFullVersionString())
}
