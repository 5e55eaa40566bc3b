package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/hipotures/todoit/internal/storage/sqlite"
)

// Version and Build are stamped at build time via -ldflags
var (
	Version = "0.3.0"
	Build   = "dev"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the todoit version",
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]string{"version": Version, "build": Build}
		return emitResult(payload, func() string {
			return fmt.Sprintf("todoit version %s (%s)", Version, Build)
		}, nil)
	},
}

// noteVersionChange persists the running version in store metadata and
// prints a one-time notice on upgrade. Best effort; never blocks a
// command.
func noteVersionChange(ctx context.Context, store *sqlite.Store) {
	stored, err := store.GetMetadata(ctx, "app_version")
	if err != nil || stored == "" {
		_ = store.SetMetadata(ctx, "app_version", Version)
		return
	}
	if stored == Version {
		return
	}
	prev, cur := normalizeSemver(stored), normalizeSemver(Version)
	if semver.IsValid(prev) && semver.IsValid(cur) && semver.Compare(cur, prev) > 0 {
		fmt.Fprintf(os.Stderr, "todoit upgraded from %s to %s\n", stored, Version)
	}
	_ = store.SetMetadata(ctx, "app_version", Version)
}

func normalizeSemver(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
