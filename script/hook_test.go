package script

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hook.js")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNilHookPassesThrough(t *testing.T) {
	var h *Hook
	doc := []byte(`{"count":1}`)
	if got := h.Apply(doc); string(got) != string(doc) {
		t.Errorf("nil hook changed document: %s", got)
	}
}

func TestLoadEmptyPathReturnsNilHook(t *testing.T) {
	h, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if h != nil {
		t.Error("empty path returned a hook")
	}
}

func TestTransformAmendsDocument(t *testing.T) {
	path := writeScript(t, `
function transform(doc) {
	doc.annotated_by = "hook";
	return doc;
}`)
	h, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	out := h.Apply([]byte(`{"count": 2}`))

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatal(err)
	}
	if got["annotated_by"] != "hook" {
		t.Errorf("transform not applied: %v", got)
	}
	if got["count"] != float64(2) {
		t.Errorf("original field lost: %v", got)
	}
}

func TestBrokenScriptLeavesDocumentUnchanged(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"syntax error", `function transform(doc { return doc; }`},
		{"no transform", `var x = 1;`},
		{"throws", `function transform(doc) { throw new Error("boom"); }`},
		{"returns nothing", `function transform(doc) {}`},
	}

	doc := []byte(`{"count":3}`)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := Load(writeScript(t, tc.src))
			if err != nil {
				t.Fatal(err)
			}
			if got := h.Apply(doc); string(got) != string(doc) {
				t.Errorf("failed hook changed document: %s", got)
			}
		})
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.js")); err == nil {
		t.Error("missing script loaded without error")
	}
}
