package mcp

import (
	"regexp"
	"testing"
)

func TestSchemaVersionIsSemver(t *testing.T) {
	re := regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	if !re.MatchString(SchemaVersion) {
		t.Fatalf("SchemaVersion %q is not valid semver", SchemaVersion)
	}
}

func TestDeprecatedFieldsPopulated(t *testing.T) {
	for i, d := range deprecatedFields() {
		if d.Tool == "" || d.Field == "" || d.Since == "" || d.RemovedIn == "" || d.Migration == "" {
			t.Errorf("deprecatedFields()[%d] is incomplete: %+v", i, d)
		}
	}
}

func TestToolNames(t *testing.T) {
	s := newTestServer(t)
	got := map[string]bool{}
	for _, n := range s.toolNames() {
		got[n] = true
	}
	for _, want := range []string{"drafty_summary", "drafty_sheets", "drafty_advance_sheet", "drafty_export_csv"} {
		if !got[want] {
			t.Errorf("tool %s not registered", want)
		}
	}
}
