package ai

import "testing"

func TestParseInsights(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantLen   int
		wantTitle string
		wantBody  string
	}{
		{
			name:      "strict json array",
			raw:       `[{"title":"Cut dining","body":"You spent a lot on dining."}]`,
			wantLen:   1,
			wantTitle: "Cut dining",
			wantBody:  "You spent a lot on dining.",
		},
		{
			name:      "array wrapped in prose",
			raw:       "Here are your insights:\n[{\"title\":\"Save more\",\"body\":\"Raise your rate.\"}]\nHope this helps!",
			wantLen:   1,
			wantTitle: "Save more",
			wantBody:  "Raise your rate.",
		},
		{
			name:    "multiple entries",
			raw:     `[{"title":"A","body":"a"},{"title":"B","body":"b"}]`,
			wantLen: 2,
		},
		{
			name:      "free text fallback",
			raw:       "Consider lowering your grocery budget.",
			wantLen:   1,
			wantTitle: "Financial insight",
			wantBody:  "Consider lowering your grocery budget.",
		},
		{
			name:      "malformed json falls back to text",
			raw:       `[{"title":"broken"`,
			wantLen:   1,
			wantTitle: "Financial insight",
		},
		{
			name:      "entry without title gets default",
			raw:       `[{"body":"untitled body"}]`,
			wantLen:   1,
			wantTitle: "Financial insight",
			wantBody:  "untitled body",
		},
		{
			name:    "entries without bodies are dropped",
			raw:     `[{"title":"empty","body":""},{"title":"ok","body":"kept"}]`,
			wantLen: 1,
		},
		{
			name:    "empty input",
			raw:     "   ",
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseInsights(tt.raw)
			if len(got) != tt.wantLen {
				t.Fatalf("len: want %d, got %d (%+v)", tt.wantLen, len(got), got)
			}
			if tt.wantLen == 0 {
				return
			}
			if tt.wantTitle != "" && got[0].Title != tt.wantTitle {
				t.Errorf("title: want %q, got %q", tt.wantTitle, got[0].Title)
			}
			if tt.wantBody != "" && got[0].Body != tt.wantBody {
				t.Errorf("body: want %q, got %q", tt.wantBody, got[0].Body)
			}
		})
	}
}

func TestParseInsightsArrayOfEmptyBodiesFallsBack(t *testing.T) {
	got := ParseInsights(`[{"title":"t","body":"  "}]`)
	if len(got) != 1 || got[0].Title != "Financial insight" {
		t.Errorf("all-empty array should fall back to free text: %+v", got)
	}
}
