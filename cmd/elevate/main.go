package main

import (
	"log/slog"
	"os"

	_ "github.com/elevate-events/lounge/docs"
	"github.com/elevate-events/lounge/internal/cli"
)

// @title Elevate Lounge Booking API
// @version 1.0
// @description Server side booking wizard for the Elevate lounges.
// @host localhost:8080
// @BasePath /
func main() {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	cli.Execute(logger)
}
