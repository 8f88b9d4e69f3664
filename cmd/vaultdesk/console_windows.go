//go:build windows

package main

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/windows"

	"github.com/example/vaultdesk/internal/nativemessaging"
)

const swHide = 0

func init() {
	args := os.Args[1:]
	// Browsers launch the proxy with pipes attached; leave those alone.
	if keepConsole(args) || nativemessaging.IsProxyInvocation(args) {
		return
	}
	detachConsole()
}

// keepConsole reports whether the console window should stay visible. It runs
// before flag parsing, so --console and --debug are matched by hand.
func keepConsole(args []string) bool {
	if v, ok := os.LookupEnv("VAULTDESK_SHOW_CONSOLE"); ok && v != "" {
		return true
	}
	for _, arg := range args {
		name, value, hasValue := strings.Cut(strings.ToLower(strings.TrimLeft(strings.TrimSpace(arg), "-/")), "=")
		if name != "console" && name != "debug" {
			continue
		}
		if !hasValue {
			return true
		}
		if on, err := strconv.ParseBool(value); err == nil && on {
			return true
		}
	}
	return false
}

func detachConsole() {
	kernel32 := windows.NewLazySystemDLL("kernel32.dll")
	hwnd, _, _ := kernel32.NewProc("GetConsoleWindow").Call()
	if hwnd == 0 {
		return
	}
	_, _, _ = windows.NewLazySystemDLL("user32.dll").NewProc("ShowWindow").Call(hwnd, swHide)
	_, _, _ = kernel32.NewProc("FreeConsole").Call()
}
