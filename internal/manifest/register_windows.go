//go:build windows
// +build windows

package manifest

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"
)

var wevtutil = "wevtutil.exe"

// Register installs the manifest with wevtutil. resourceFile overrides the
// file paths stored in the manifest when not empty.
func Register(ctx context.Context, manifestPath, resourceFile string) error {
	return runWevtutil(ctx, installArgs(manifestPath, resourceFile))
}

// Unregister removes the providers and channels of the manifest.
func Unregister(ctx context.Context, manifestPath string) error {
	return runWevtutil(ctx, uninstallArgs(manifestPath))
}

func runWevtutil(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, wevtutil, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("wevtutil %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	log.Printf("wevtutil %s: done", args[0])
	return nil
}
