package config

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestReportLifecycle(t *testing.T) {
	dir := t.TempDir()

	src := filepath.Join(dir, "result.note")
	if err := os.WriteFile(src, []byte("note-bytes"), 0644); err != nil {
		t.Fatalf("unable to write source: %v", err)
	}

	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}
	rpt, err := conf.Prepare()
	if err != nil {
		t.Fatalf("unable to prepare report: %v", err)
	}

	rpt.Store("result.note", src)
	rpt.StoreData("config/snc.yaml", []byte("version: 1\n"))

	if rpt.Name() == "" {
		t.Fatal("report must know its file name")
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("unable to close report: %v", err)
	}

	r, err := zip.OpenReader(conf.Destination)
	if err != nil {
		t.Fatalf("report is not a readable archive: %v", err)
	}
	defer r.Close()

	want := map[string]bool{"MANIFEST": false, "result.note": false, "config/snc.yaml": false}
	for _, f := range r.File {
		want[f.Name] = true
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("report misses %s", name)
		}
	}
}

func TestNilReportIsSafe(t *testing.T) {
	var rpt *Report
	rpt.Store("a", "b")
	rpt.StoreData("c", []byte("d"))
	if rpt.Name() != "" {
		t.Fatal("nil report must have no name")
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("nil report close failed: %v", err)
	}
}

func TestStoreConflictPanics(t *testing.T) {
	conf := ReporterConfig{Destination: filepath.Join(t.TempDir(), "report.zip")}
	rpt, err := conf.Prepare()
	if err != nil {
		t.Fatalf("unable to prepare report: %v", err)
	}
	defer rpt.Close()

	rpt.Store("same", "one")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on conflicting store")
		}
	}()
	rpt.Store("same", "two")
}
