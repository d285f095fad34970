package store

import (
	"testing"
	"time"

	"github.com/nuros-linux/apg/internal/apg"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := New(":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if err := st.CreateSchema(); err != nil {
		t.Fatalf("CreateSchema: %v", err)
	}

	return st
}

func TestRegisterPackageRoundtrip(t *testing.T) {
	st := newTestStore(t)

	installedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	pkg := &Package{
		Name:        "demo",
		Version:     "1.0",
		InstalledAt: installedAt,
		Archive:     "demo-1.0.apg",
	}
	files := []string{"etc/demo.conf", "usr/bin/demo"}
	deps := []apg.Dependency{
		{Name: "base", Version: "2.0", Condition: ">="},
	}

	if err := st.RegisterPackage(pkg, files, deps); err != nil {
		t.Fatalf("RegisterPackage: %v", err)
	}

	got, err := st.GetPackage("demo")
	if err != nil {
		t.Fatalf("GetPackage: %v", err)
	}
	if got.Version != "1.0" || got.Archive != "demo-1.0.apg" {
		t.Errorf("package = %+v", got)
	}
	if !got.InstalledAt.Equal(installedAt) {
		t.Errorf("installed_at = %v, want %v", got.InstalledAt, installedAt)
	}

	gotFiles, err := st.GetPackageFiles("demo")
	if err != nil {
		t.Fatalf("GetPackageFiles: %v", err)
	}
	if len(gotFiles) != 2 || gotFiles[0] != "etc/demo.conf" {
		t.Errorf("files = %v", gotFiles)
	}

	gotDeps, err := st.GetDependencies("demo")
	if err != nil {
		t.Fatalf("GetDependencies: %v", err)
	}
	if len(gotDeps) != 1 || gotDeps[0] != deps[0] {
		t.Errorf("deps = %v", gotDeps)
	}
}

func TestRegisterPackageReplacesOnUpgrade(t *testing.T) {
	st := newTestStore(t)

	v1 := &Package{Name: "demo", Version: "1.0", InstalledAt: time.Now(), Archive: "demo-1.0.apg"}
	if err := st.RegisterPackage(v1, []string{"usr/bin/demo", "etc/demo.conf"}, nil); err != nil {
		t.Fatalf("RegisterPackage v1: %v", err)
	}

	// The upgrade deploys a different file set; the old one must not linger.
	v2 := &Package{Name: "demo", Version: "2.0", InstalledAt: time.Now(), Archive: "demo-2.0.apg"}
	if err := st.RegisterPackage(v2, []string{"usr/bin/demo"}, nil); err != nil {
		t.Fatalf("RegisterPackage v2: %v", err)
	}

	got, err := st.GetPackage("demo")
	if err != nil {
		t.Fatalf("GetPackage: %v", err)
	}
	if got.Version != "2.0" {
		t.Errorf("version = %s, want 2.0", got.Version)
	}

	files, err := st.GetPackageFiles("demo")
	if err != nil {
		t.Fatalf("GetPackageFiles: %v", err)
	}
	if len(files) != 1 || files[0] != "usr/bin/demo" {
		t.Errorf("files = %v, want only usr/bin/demo", files)
	}

	packages, err := st.ListPackages()
	if err != nil {
		t.Fatalf("ListPackages: %v", err)
	}
	if len(packages) != 1 {
		t.Errorf("packages = %d, want 1", len(packages))
	}
}

func TestGetPackageNotFound(t *testing.T) {
	st := newTestStore(t)

	if _, err := st.GetPackage("ghost"); err == nil {
		t.Fatal("expected error for unknown package")
	}
}

func TestDeletePackageCascades(t *testing.T) {
	st := newTestStore(t)

	pkg := &Package{Name: "demo", Version: "1.0", InstalledAt: time.Now(), Archive: "demo-1.0.apg"}
	deps := []apg.Dependency{{Name: "base", Version: "1.0", Condition: ">="}}
	if err := st.RegisterPackage(pkg, []string{"etc/demo.conf"}, deps); err != nil {
		t.Fatalf("RegisterPackage: %v", err)
	}

	if err := st.DeletePackage("demo"); err != nil {
		t.Fatalf("DeletePackage: %v", err)
	}

	if _, err := st.GetPackage("demo"); err == nil {
		t.Error("package still present after delete")
	}

	files, err := st.GetPackageFiles("demo")
	if err != nil {
		t.Fatalf("GetPackageFiles: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("files = %v, want none after cascade", files)
	}

	if err := st.DeletePackage("demo"); err == nil {
		t.Error("expected error deleting missing package")
	}
}

func TestInstallHistory(t *testing.T) {
	st := newTestStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	records := []*Install{
		{Package: "a", Version: "1.0", InstalledAt: base, Success: true, BackupPath: "/b/a_1.tar.xz"},
		{Package: "b", Version: "2.0", InstalledAt: base.Add(time.Hour), Success: false, Detail: "checksum mismatch for etc/b.conf"},
		{Package: "c", Version: "0.3", InstalledAt: base.Add(2 * time.Hour), Success: true, BackupPath: "/b/c_1.tar.xz"},
	}
	for _, rec := range records {
		if _, err := st.InsertInstall(rec); err != nil {
			t.Fatalf("InsertInstall: %v", err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		installs, err := st.ListInstalls(0)
		if err != nil {
			t.Fatalf("ListInstalls: %v", err)
		}
		if len(installs) != 3 {
			t.Fatalf("installs = %d, want 3", len(installs))
		}
		if installs[0].Package != "c" || installs[2].Package != "a" {
			t.Errorf("order = %s,%s,%s, want c,b,a",
				installs[0].Package, installs[1].Package, installs[2].Package)
		}
		if installs[1].Success || installs[1].Detail == "" {
			t.Errorf("failure record = %+v", installs[1])
		}
	})

	t.Run("limit", func(t *testing.T) {
		installs, err := st.ListInstalls(2)
		if err != nil {
			t.Fatalf("ListInstalls: %v", err)
		}
		if len(installs) != 2 {
			t.Fatalf("installs = %d, want 2", len(installs))
		}
		if installs[0].Package != "c" || installs[1].Package != "b" {
			t.Errorf("order = %s,%s, want c,b", installs[0].Package, installs[1].Package)
		}
	})
}
