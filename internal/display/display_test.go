package display

import (
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestTemplate_Expand(t *testing.T) {
	tests := map[string]struct {
		tmpl   string
		data   any
		exp    string
		expErr bool
	}{
		"field": {
			tmpl: "hello {{ .Name }}",
			data: struct{ Name string }{Name: "Lolz"},
			exp:  "hello Lolz",
		},
		"sprig functions": {
			tmpl: `{{ join ", " .Names | upper }}`,
			data: struct{ Names []string }{Names: []string{"a", "b"}},
			exp:  "A, B",
		},
		"missing field": {
			tmpl:   "{{ .Nope }}",
			data:   struct{}{},
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := MustParse(name, tt.tmpl).Expand(tt.data)
			if tt.expErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "output", got, tt.exp)
		})
	}
}

func TestWrapTo(t *testing.T) {
	got := WrapTo("the quick brown fox jumps", 10)
	for _, line := range strings.Split(got, "\n") {
		if len(line) > 10 {
			t.Errorf("line %q longer than 10", line)
		}
	}
	testutil.AssertEqual(t, "words kept", strings.Join(strings.Fields(got), " "), "the quick brown fox jumps")
}
