//go:build windows

// Package util holds platform helpers for the command line entry point.
package util

import (
	"log/slog"
	"os"
	"slices"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procGetConsoleWindow = kernel32.NewProc("GetConsoleWindow")
)

var shells = []string{
	"cmd.exe",
	"powershell.exe",
	"pwsh.exe",
	"wt.exe",
	"conhost.exe",
	"windowsterminal.exe",
}

// LaunchedFromExplorer reports whether the binary was started by
// double-clicking it rather than from a shell.
func LaunchedFromExplorer() bool {
	hwnd, _, _ := procGetConsoleWindow.Call()
	parent := strings.ToLower(parentProcessName())
	slog.Debug("Parent process", "name", parent, "console", hwnd != 0)

	if hwnd == 0 {
		return true
	}
	if slices.Contains(shells, parent) {
		return false
	}
	return parent == "explorer.exe"
}

func parentProcessName() string {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(snapshot)

	find := func(match func(pe *windows.ProcessEntry32) bool) (windows.ProcessEntry32, bool) {
		var pe windows.ProcessEntry32
		pe.Size = uint32(unsafe.Sizeof(pe))
		if err := windows.Process32First(snapshot, &pe); err != nil {
			return pe, false
		}
		for {
			if match(&pe) {
				return pe, true
			}
			if err := windows.Process32Next(snapshot, &pe); err != nil {
				return pe, false
			}
		}
	}

	self := uint32(os.Getpid())
	me, ok := find(func(pe *windows.ProcessEntry32) bool { return pe.ProcessID == self })
	if !ok || me.ParentProcessID == 0 {
		return ""
	}
	parent, ok := find(func(pe *windows.ProcessEntry32) bool { return pe.ProcessID == me.ParentProcessID })
	if !ok {
		return ""
	}
	return windows.UTF16ToString(parent.ExeFile[:])
}
