package generator

import (
	"errors"
	"testing"

	"github.com/brightpost/draftforge/internal/genconfig"
)

const fullResponse = `{
	"headline_options": ["One", "Two", "Three"],
	"post_text": "Cashflow kills more businesses than competition.",
	"hashtags": ["#SME", "#cashflow"],
	"visual_prompt": "A founder staring at a spreadsheet.",
	"best_time_uk": "08:30"
}`

func TestParseDraftFull(t *testing.T) {
	d, err := parseDraft(fullResponse, genconfig.Defaults())
	if err != nil {
		t.Fatalf("parseDraft: %v", err)
	}
	if len(d.HeadlineOptions) != 3 {
		t.Errorf("headline options: %v", d.HeadlineOptions)
	}
	if d.BestTimeLocal != "08:30" {
		t.Errorf("best time = %q", d.BestTimeLocal)
	}
}

func TestParseDraftStripsFences(t *testing.T) {
	fenced := "```json\n" + fullResponse + "\n```"
	if _, err := parseDraft(fenced, genconfig.Defaults()); err != nil {
		t.Fatalf("fenced response should parse: %v", err)
	}
	bare := "```\n" + fullResponse + "\n```"
	if _, err := parseDraft(bare, genconfig.Defaults()); err != nil {
		t.Fatalf("bare fence should parse: %v", err)
	}
}

func TestParseDraftMissingFields(t *testing.T) {
	cases := map[string]string{
		"not json":              `hello there`,
		"missing post_text":     `{"headline_options":["a"],"hashtags":["#x"],"visual_prompt":"v"}`,
		"missing headlines":     `{"post_text":"t","hashtags":["#x"],"visual_prompt":"v"}`,
		"missing hashtags":      `{"post_text":"t","headline_options":["a"],"visual_prompt":"v"}`,
		"missing visual_prompt": `{"post_text":"t","headline_options":["a"],"hashtags":["#x"]}`,
	}
	for name, raw := range cases {
		_, err := parseDraft(raw, genconfig.Defaults())
		var malformed *MalformedResponseError
		if !errors.As(err, &malformed) {
			t.Errorf("%s: expected MalformedResponseError, got %v", name, err)
			continue
		}
		if malformed.Raw != raw {
			t.Errorf("%s: raw text not preserved", name)
		}
	}
}

func TestParseDraftSuppressesDisabledFields(t *testing.T) {
	cfg := genconfig.Defaults()
	cfg.IncludeHashtags = false
	cfg.IncludeVisualPrompt = false
	cfg.PostingTimeHint = false

	d, err := parseDraft(fullResponse, cfg)
	if err != nil {
		t.Fatalf("parseDraft: %v", err)
	}
	if d.Hashtags != nil {
		t.Errorf("hashtags should be suppressed, got %v", d.Hashtags)
	}
	if d.VisualPrompt != "" {
		t.Errorf("visual prompt should be suppressed, got %q", d.VisualPrompt)
	}
	if d.BestTimeLocal != defaultBestTime {
		t.Errorf("disabled posting hint should default to %s, got %q", defaultBestTime, d.BestTimeLocal)
	}
}

func TestParseDraftDefaultsBestTime(t *testing.T) {
	raw := `{"post_text":"t","headline_options":["a"],"hashtags":["#x"],"visual_prompt":"v"}`
	d, err := parseDraft(raw, genconfig.Defaults())
	if err != nil {
		t.Fatal(err)
	}
	if d.BestTimeLocal != defaultBestTime {
		t.Errorf("best time = %q, want %s", d.BestTimeLocal, defaultBestTime)
	}
}

func TestParseDraftSuppressedFieldsNotRequired(t *testing.T) {
	cfg := genconfig.Defaults()
	cfg.IncludeHeadlineOptions = false
	raw := `{"post_text":"t","hashtags":["#x"],"visual_prompt":"v"}`
	if _, err := parseDraft(raw, cfg); err != nil {
		t.Fatalf("disabled field must not be required: %v", err)
	}
}
