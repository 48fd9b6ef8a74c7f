package pathutil

import (
	"path/filepath"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	p := New(Config{DataDir: "/srv/ledger"})

	if got := p.GetDatabasePath(); got != filepath.Join("/srv/ledger", "association.db") {
		t.Errorf("GetDatabasePath() = %q", got)
	}
	if got := p.GetExportsDir(); got != filepath.Join("/srv/ledger", "exports") {
		t.Errorf("GetExportsDir() = %q", got)
	}

	custom := New(Config{DataDir: "/srv/ledger", DatabasePath: "/tmp/x.db", ExportsDir: "/tmp/out"})
	if custom.GetDatabasePath() != "/tmp/x.db" || custom.GetExportsDir() != "/tmp/out" {
		t.Errorf("custom paths = %q, %q", custom.GetDatabasePath(), custom.GetExportsDir())
	}
}

func TestGetJournalExportPath(t *testing.T) {
	p := New(Config{DataDir: "/data"})

	tests := []struct {
		period   string
		expected string
		wantErr  bool
	}{
		{"", filepath.Join("/data", "exports", "journal-3.xlsx"), false},
		{"2025", filepath.Join("/data", "exports", "2025", "journal-3-2025.xlsx"), false},
		{"2025-03", filepath.Join("/data", "exports", "2025", "journal-3-2025-03.xlsx"), false},
		{"25-03", "", true},
		{"2025-3", "", true},
		{"2025-03-01", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			got, err := p.GetJournalExportPath(3, tt.period)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetJournalExportPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("GetJournalExportPath() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestEnsureParentDir(t *testing.T) {
	p := New(Config{DataDir: t.TempDir()})
	file := filepath.Join(p.GetExportsDir(), "2025", "journal.xlsx")

	if err := p.EnsureParentDir(file); err != nil {
		t.Fatalf("EnsureParentDir() error = %v", err)
	}
	if !p.FileExists(filepath.Dir(file)) {
		t.Error("parent directory was not created")
	}
	if p.FileExists(file) {
		t.Error("file should not exist")
	}
}
