package main

import (
	"log/slog"
	"os"

	"github.com/coolprogrammerarpit007/bg-remover/cmd/bg-remover/commands"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	commands.Execute()
}
