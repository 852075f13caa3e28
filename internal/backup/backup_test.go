package backup

import (
	"strings"
	"testing"
	"time"
)

func TestFilename(t *testing.T) {
	at := time.Date(2026, 8, 31, 14, 5, 9, 0, time.UTC)
	if got, want := Filename(at), "backup_20260831_140509.dump"; got != want {
		t.Fatalf("Filename() = %q, want %q", got, want)
	}
}

func TestRenderCounts(t *testing.T) {
	summary := Summary{
		Counts: []TableCount{
			{Table: "users", Rows: 2},
			{Table: "auth_tokens", Rows: 2},
			{Table: "tasks", Rows: 5},
		},
		TotalRows: 9,
	}

	out := RenderCounts(summary)
	if !strings.Contains(out, "9 record(s)") {
		t.Fatalf("missing total in %q", out)
	}
	for _, line := range []string{"users: 2", "auth_tokens: 2", "tasks: 5"} {
		if !strings.Contains(out, line) {
			t.Fatalf("missing %q in %q", line, out)
		}
	}
}
