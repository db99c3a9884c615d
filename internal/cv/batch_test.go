package cv

import (
	"image"
	"testing"

	"github.com/mirrorworks/limbus-pilot/internal/logging"
)

// testLogger keeps expected failures out of the test output.
func testLogger() *logging.Logger {
	return logging.NewLogger("test").SetMinLevel(logging.LogLevelFatal)
}

func TestMatchAllOneResultPerName(t *testing.T) {
	frame := patternGray(50, 50)
	tmpls := map[string]Template{
		"a": {Name: "a"},
		"b": {Name: "b"},
		"c": {Name: "c"},
		"d": {Name: "d"},
		"e": {Name: "e"},
	}

	b := &Batch{
		match: func(_ *image.Gray, tmpl Template) Result {
			return Result{Score: 0.5, Found: true}
		},
		workers: 3,
	}
	results := b.MatchAll(frame, tmpls)

	if len(results) != len(tmpls) {
		t.Fatalf("got %d results, want %d", len(results), len(tmpls))
	}
	for name := range tmpls {
		res, ok := results[name]
		if !ok {
			t.Errorf("missing result for %q", name)
			continue
		}
		if res == nil || !res.Found {
			t.Errorf("result for %q = %v, want found", name, res)
		}
	}
}

func TestMatchAllPanicIsolation(t *testing.T) {
	frame := patternGray(50, 50)
	tmpls := map[string]Template{
		"good1": {Name: "good1"},
		"bad":   {Name: "bad"},
		"good2": {Name: "good2"},
	}

	b := &Batch{
		match: func(_ *image.Gray, tmpl Template) Result {
			if tmpl.Name == "bad" {
				panic("index out of range")
			}
			return Result{Score: 0.9, Found: true}
		},
		workers: 2,
		log:     testLogger(),
	}

	results := b.MatchAll(frame, tmpls)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results["bad"] != nil {
		t.Errorf("panicking template should map to nil, got %v", results["bad"])
	}
	for _, name := range []string{"good1", "good2"} {
		if res := results[name]; res == nil || !res.Found {
			t.Errorf("result for %q = %v, want found", name, res)
		}
	}
}

func TestMatchAllEmptySet(t *testing.T) {
	b := &Batch{
		match:   func(_ *image.Gray, _ Template) Result { return Result{} },
		workers: 4,
	}
	results := b.MatchAll(patternGray(10, 10), nil)
	if len(results) != 0 {
		t.Errorf("got %d results for empty set, want 0", len(results))
	}
}

func TestMatchAllRealMatcher(t *testing.T) {
	frame := patternGray(60, 60)
	m := NewMatcher(NewScoreboard(), nil)
	b := NewBatch(m, nil)

	results := b.MatchAll(frame, map[string]Template{
		"present": {Name: "present", Variants: []Variant{{Image: patternGray(60, 60)}}, Threshold: 0.9},
		"empty":   {Name: "empty", Threshold: 0.9},
	})

	if res := results["present"]; res == nil || !res.Found {
		t.Errorf("present = %v, want found", res)
	}
	if res := results["empty"]; res == nil || res.Found || res.Score != SentinelScore {
		t.Errorf("empty = %v, want sentinel miss", res)
	}
}
