package render

import (
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// requireFrame compares two plain frames and prints a character diff on
// mismatch.
func requireFrame(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(want, got, false)
	t.Fatalf("frame mismatch (-want +got):\n%s\n\nwant:\n%s\n\ngot:\n%s",
		dmp.DiffPrettyText(diffs), want, got)
}

func frame(lines ...string) string {
	return strings.Join(lines, "\n")
}
