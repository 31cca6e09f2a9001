package persistence

import (
	"sort"
	"strings"
	"testing"
)

func TestMigrationFilenamesOrderedAndComplete(t *testing.T) {
	filenames, err := migrationFilenames()
	if err != nil {
		t.Fatalf("migrationFilenames returned error: %v", err)
	}
	if len(filenames) == 0 {
		t.Fatal("no embedded migrations found")
	}
	if !sort.StringsAreSorted(filenames) {
		t.Errorf("migrations must apply in filename order, got %v", filenames)
	}
	if filenames[0] != "0001_init.sql" {
		t.Errorf("first migration = %q, want 0001_init.sql", filenames[0])
	}
	for _, name := range filenames {
		if !strings.HasSuffix(name, ".sql") {
			t.Errorf("unexpected embedded file %q", name)
		}
	}
}
