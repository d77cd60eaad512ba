package generator

import (
	"encoding/json"
	"strings"

	"github.com/brightpost/draftforge/internal/genconfig"
)

// defaultBestTime is used when the model omits a posting time or the hint is
// disabled.
const defaultBestTime = "10:00"

type wireDraft struct {
	HeadlineOptions []string `json:"headline_options"`
	PostText        string   `json:"post_text"`
	Hashtags        []string `json:"hashtags"`
	VisualPrompt    string   `json:"visual_prompt"`
	BestTimeUK      string   `json:"best_time_uk"`
}

// stripFences removes a wrapping markdown code fence, with or without a
// language tag, that models sometimes add despite instructions.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseDraft validates a raw model response against the response contract.
// Fields whose config toggle is off are cleared even when present, so a
// model that ignores the contract cannot reintroduce them.
func parseDraft(raw string, cfg genconfig.GlobalConfig) (Draft, error) {
	cleaned := stripFences(raw)

	var wire wireDraft
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return Draft{}, &MalformedResponseError{Raw: raw, Reason: "response is not valid JSON", Err: err}
	}

	if strings.TrimSpace(wire.PostText) == "" {
		return Draft{}, &MalformedResponseError{Raw: raw, Reason: "missing post_text"}
	}
	if cfg.IncludeHeadlineOptions && len(wire.HeadlineOptions) == 0 {
		return Draft{}, &MalformedResponseError{Raw: raw, Reason: "missing headline_options"}
	}
	if cfg.IncludeHashtags && len(wire.Hashtags) == 0 {
		return Draft{}, &MalformedResponseError{Raw: raw, Reason: "missing hashtags"}
	}
	if cfg.IncludeVisualPrompt && strings.TrimSpace(wire.VisualPrompt) == "" {
		return Draft{}, &MalformedResponseError{Raw: raw, Reason: "missing visual_prompt"}
	}

	d := Draft{
		PostText:      strings.TrimSpace(wire.PostText),
		BestTimeLocal: strings.TrimSpace(wire.BestTimeUK),
	}
	if cfg.IncludeHeadlineOptions {
		d.HeadlineOptions = wire.HeadlineOptions
	}
	if cfg.IncludeHashtags {
		d.Hashtags = wire.Hashtags
	}
	if cfg.IncludeVisualPrompt {
		d.VisualPrompt = strings.TrimSpace(wire.VisualPrompt)
	}
	if !cfg.PostingTimeHint || d.BestTimeLocal == "" {
		d.BestTimeLocal = defaultBestTime
	}
	return d, nil
}
