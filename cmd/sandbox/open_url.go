package main

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// openURL hands an http(s) or mailto link to the desktop's default handler.
func openURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("open link: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "mailto":
	default:
		return fmt.Errorf("open link %q: unsupported scheme %q", raw, u.Scheme)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", u.String())
	case "darwin":
		cmd = exec.Command("open", u.String())
	default:
		cmd = exec.Command("xdg-open", u.String())
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open link: %w", err)
	}
	go cmd.Wait()
	return nil
}
