package manifest_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/KaramelBytes/roadstats-cli/internal/manifest"
)

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	m := manifest.New(dir, "data/traffic.csv")
	m.Rows = 8
	m.StartYear, m.EndYear = 2010, 2012
	m.AddChart("fatalities_by_age", filepath.Join(dir, "auto", "charts", "fatalities_by_age.jpg"))
	m.AddPage("state", filepath.Join(dir, "auto", "state.html"))
	m.AddPage("age_gender", filepath.Join(dir, "auto", "age_gender.html"))
	m.AddFailure("fatalities_by_hour", errors.New("no data to chart"))
	if err := m.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := manifest.Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := uuid.Parse(got.RunID); err != nil {
		t.Fatalf("run id is not a uuid: %q", got.RunID)
	}
	if got.RootDir() != dir {
		t.Fatalf("unexpected root dir %q", got.RootDir())
	}
	if got.Charts[0].Path != "auto/charts/fatalities_by_age.jpg" {
		t.Fatalf("chart path not relative: %q", got.Charts[0].Path)
	}
	if got.Pages[0].Name != "age_gender" || got.Pages[0].Path != "auto/age_gender.html" {
		t.Fatalf("pages not sorted: %+v", got.Pages)
	}
	if len(got.Failures) != 1 || got.Failures[0].Report != "fatalities_by_hour" {
		t.Fatalf("unexpected failures: %+v", got.Failures)
	}
	if got.GeneratedAt.IsZero() {
		t.Fatalf("generated_at not set")
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := manifest.Load(t.TempDir()); err == nil {
		t.Fatalf("expected error for missing manifest")
	}
}

func TestSaveWithoutRoot(t *testing.T) {
	var m manifest.Manifest
	if err := m.Save(); err == nil {
		t.Fatalf("expected error without root dir")
	}
}
