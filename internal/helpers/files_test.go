package helpers

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveTimestampedJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "transcripts")

	path, err := SaveTimestampedJSON(map[string]string{"intent": "StatusReportIntent"}, dir, "session")
	if err != nil {
		t.Fatalf("SaveTimestampedJSON: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("path %s not in %s", path, dir)
	}
	if !strings.HasPrefix(filepath.Base(path), "session-") || filepath.Ext(path) != ".json" {
		t.Errorf("unexpected file name %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]string
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got["intent"] != "StatusReportIntent" {
		t.Errorf("got %v", got)
	}
}
