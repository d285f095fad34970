package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/nuros-linux/apg/internal/store"
)

func TestProgressBarNonTTY(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgress("demo-1.0.apg")
	bar.SetWriter(&buf)

	// Intermediate updates stay silent on a non-TTY writer.
	bar.SetPercent(10)
	bar.SetPercent(50)
	if buf.Len() != 0 {
		t.Errorf("intermediate output = %q, want none", buf.String())
	}

	bar.SetPercent(100)
	bar.Finish()

	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Errorf("output = %q, want exactly one line", out)
	}
	if !strings.Contains(out, "100%") || !strings.Contains(out, "demo-1.0.apg") {
		t.Errorf("output = %q", out)
	}
}

func TestProgressBarClamps(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgress("x")
	bar.SetWriter(&buf)

	bar.SetPercent(-5)
	bar.SetPercent(150)
	bar.Finish()

	if !strings.Contains(buf.String(), "100%") {
		t.Errorf("output = %q, want clamped 100%%", buf.String())
	}
}

func TestSpinnerNonTTY(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Starting daemon")
	s.SetWriter(&buf)

	s.Start()
	s.StopWithMessage("Daemon started")

	out := buf.String()
	if !strings.Contains(out, "Starting daemon...") {
		t.Errorf("output = %q, want start message", out)
	}
	if !strings.Contains(out, "Daemon started") {
		t.Errorf("output = %q, want final message", out)
	}
}

func TestRenderPackageTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	t.Run("empty", func(t *testing.T) {
		out := RenderPackageTable(nil)
		if !strings.Contains(out, "No packages installed") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("sorted by name", func(t *testing.T) {
		out := RenderPackageTable([]*store.Package{
			{Name: "zsh", Version: "5.9", InstalledAt: time.Now(), Archive: "zsh-5.9.apg"},
			{Name: "bash", Version: "5.2", InstalledAt: time.Now(), Archive: "bash-5.2.apg"},
		})

		if !strings.Contains(out, "bash") || !strings.Contains(out, "zsh") {
			t.Fatalf("output = %q", out)
		}
		if strings.Index(out, "bash") > strings.Index(out, "zsh") {
			t.Errorf("packages not sorted by name:\n%s", out)
		}
	})
}

func TestRenderInstallTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	t.Run("empty", func(t *testing.T) {
		out := RenderInstallTable(nil)
		if !strings.Contains(out, "No install history") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("success and failure", func(t *testing.T) {
		out := RenderInstallTable([]*store.Install{
			{Package: "demo", Version: "1.0", InstalledAt: time.Now(), Success: true, BackupPath: "/backups/demo.tar.xz"},
			{Package: "bad", Version: "0.1", InstalledAt: time.Now(), Success: false, Detail: "checksum mismatch for etc/bad.conf"},
		})

		if !strings.Contains(out, "ok") || !strings.Contains(out, "failed") {
			t.Errorf("output = %q", out)
		}
		if !strings.Contains(out, "checksum mismatch") {
			t.Errorf("failure detail missing:\n%s", out)
		}
	})
}

func TestFormatRelativeTime(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "never"},
		{"just now", time.Now(), "just now"},
		{"minutes", time.Now().Add(-5 * time.Minute), "5 minutes ago"},
		{"singular hour", time.Now().Add(-90 * time.Minute), "1 hour ago"},
		{"days", time.Now().Add(-3 * 24 * time.Hour), "3 days ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRelativeTime(tt.t); got != tt.want {
				t.Errorf("formatRelativeTime = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("a-very-long-package-name", 10); got != "a-very-..." {
		t.Errorf("truncate = %q", got)
	}
}
