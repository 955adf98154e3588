package assistant

import (
	"fmt"
	"os/exec"
	"runtime"
)

// BrowserOpener opens URLs with the platform browser launcher.
type BrowserOpener struct{}

// Open implements Opener.
func (BrowserOpener) Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	// Reap the launcher in the background; its exit status is not
	// interesting to the conversation flow.
	go func() { _ = cmd.Wait() }()
	return nil
}
