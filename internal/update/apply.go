package update

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Sentinel errors distinguishing the phase an update failed in. A
// download or validation failure leaves the running artifact untouched;
// only a swap failure can occur after the destination is opened.
var (
	ErrDownload = errors.New("update download failed")
	ErrSwap     = errors.New("update swap failed")
)

// ApplyConfig describes one update attempt.
type ApplyConfig struct {
	SourceURL  string
	TargetPath string
	Timeout    time.Duration
}

// Fetch downloads the replacement artifact and validates the transfer:
// HTTP 200 and a non-empty body. Any failure wraps ErrDownload.
func Fetch(cfg ApplyConfig) ([]byte, error) {
	if cfg.SourceURL == "" {
		return nil, fmt.Errorf("%w: no source URL configured", ErrDownload)
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = nil

	resp, err := client.Get(cfg.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: source returned status %d", ErrDownload, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrDownload, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: source returned an empty artifact", ErrDownload)
	}
	return body, nil
}

// Apply runs the two-phase protocol: fetch-and-validate, then atomic
// swap. The fully validated artifact is staged next to the target and
// renamed over it, so the running artifact is never left half-written.
func Apply(cfg ApplyConfig) error {
	body, err := Fetch(cfg)
	if err != nil {
		return err
	}
	return swap(cfg.TargetPath, body)
}

func swap(targetPath string, body []byte) error {
	dir := filepath.Dir(targetPath)
	tmp, err := os.CreateTemp(dir, filepath.Base(targetPath)+".new-*")
	if err != nil {
		return fmt.Errorf("%w: stage temp file: %v", ErrSwap, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(body); err != nil {
		cleanup()
		return fmt.Errorf("%w: write staged artifact: %v", ErrSwap, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("%w: sync staged artifact: %v", ErrSwap, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: close staged artifact: %v", ErrSwap, err)
	}
	if err := os.Chmod(tmpPath, 0755); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: mark staged artifact executable: %v", ErrSwap, err)
	}

	if err := os.Rename(tmpPath, targetPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: replace %s: %v", ErrSwap, targetPath, err)
	}
	return nil
}
