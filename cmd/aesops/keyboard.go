package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/abrezinsky/aesops/internal/browser"
	"github.com/abrezinsky/aesops/internal/logger"
)

// listenForKeyboard reads single keys from a terminal stdin until ctx ends.
// quit cancels the server.
func listenForKeyboard(ctx context.Context, openURL string, appLog *logger.SlogLogger, quit func()) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return
	}
	restore, err := enableCbreak(fd)
	if err != nil {
		return
	}
	defer restore()

	keys := make(chan byte)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				close(keys)
				return
			}
			if n == 1 {
				keys <- buf[0]
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case key, ok := <-keys:
			if !ok {
				return
			}
			if !handleKey(key, openURL, appLog) {
				fmt.Printf("%sShutting down server...%s\n", yellow, reset)
				restore()
				quit()
				return
			}
		}
	}
}

// handleKey performs the shortcut for key. It returns false when the
// server should stop.
func handleKey(key byte, openURL string, appLog *logger.SlogLogger) bool {
	switch strings.ToLower(string(key)) {
	case "a":
		fmt.Printf("%sOpening %s in browser...%s\n", cyan, openURL, reset)
		if err := browser.Open(openURL); err != nil {
			fmt.Printf("%sError opening browser: %v%s\n", red, err, reset)
		}
	case "h":
		if appLog.IsHTTPLoggingEnabled() {
			appLog.DisableHTTPLogging()
			fmt.Printf("%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			appLog.EnableHTTPLogging()
			fmt.Printf("%sHTTP logging enabled%s\n", green, reset)
		}
	case "l":
		cycleLogLevel(appLog)
	case "?":
		printKeyboardHelp()
	case "q", "\x03":
		return false
	}
	return true
}
