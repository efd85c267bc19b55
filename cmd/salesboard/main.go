package main

import (
	_ "embed"
	"strings"

	"go.uber.org/zap"

	"github.com/seuros/salesboard/internal/cli"
	"github.com/seuros/salesboard/internal/logging"
)

//go:embed VERSION
var versionFile string

var executeCLI = cli.Execute

func run() error {
	return executeCLI(strings.TrimSpace(versionFile))
}

func main() {
	if err := run(); err != nil {
		logging.Fatal("salesboard execution failed", zap.Error(err))
	}
}
