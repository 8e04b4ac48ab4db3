//go:build windows

package main

import (
	"log/slog"
	"os"

	"github.com/Alia5/macropad/internal/util"
)

func init() {
	if !util.LaunchedFromExplorer() || len(os.Args) > 1 {
		return
	}
	slog.Info("Started without arguments, running the pad on stdin")
	os.Args = append(os.Args, "run")
}
