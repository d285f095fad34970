package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/nuros-linux/apg/internal/store"
)

// ANSI color codes for install status display
const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// RenderPackageTable renders the registered packages.
func RenderPackageTable(packages []*store.Package) string {
	if len(packages) == 0 {
		return "No packages installed.\n"
	}

	// Sort packages by name for consistent output
	sorted := make([]*store.Package, len(packages))
	copy(sorted, packages)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-24s %-12s %-15s %s\n",
		"Package", "Version", "Installed", "Archive"))
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")

	for _, pkg := range sorted {
		sb.WriteString(fmt.Sprintf("%-24s %-12s %-15s %s\n",
			truncate(pkg.Name, 24),
			truncate(pkg.Version, 12),
			formatRelativeTime(pkg.InstalledAt),
			pkg.Archive))
	}

	return sb.String()
}

// RenderInstallTable renders install history entries, newest first.
func RenderInstallTable(installs []*store.Install) string {
	if len(installs) == 0 {
		return "No install history.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-24s %-12s %-15s %-8s %s\n",
		"Package", "Version", "When", "Result", "Detail"))
	sb.WriteString(strings.Repeat("─", 88))
	sb.WriteString("\n")

	for _, rec := range installs {
		result := colorize(colorGreen, "ok")
		detail := rec.BackupPath
		if !rec.Success {
			result = colorize(colorRed, "failed")
			detail = rec.Detail
		}

		sb.WriteString(fmt.Sprintf("%-24s %-12s %-15s %-8s %s\n",
			truncate(rec.Package, 24),
			truncate(rec.Version, 12),
			formatRelativeTime(rec.InstalledAt),
			result,
			truncate(detail, 40)))
	}

	return sb.String()
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / 24 / 7)
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	case diff < 365*24*time.Hour:
		months := int(diff.Hours() / 24 / 30)
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	default:
		years := int(diff.Hours() / 24 / 365)
		if years == 1 {
			return "1 year ago"
		}
		return fmt.Sprintf("%d years ago", years)
	}
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
