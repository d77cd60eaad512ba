package prompt

import (
	"strings"
	"testing"

	"github.com/brightpost/draftforge/internal/genconfig"
)

func testInputs() GenInputs {
	return GenInputs{
		BusinessName:     "Brightside Bookkeeping",
		Sector:           "Accounting",
		Audience:         "small business owners",
		Country:          "United Kingdom",
		BrandTone:        "friendly",
		Keywords:         []string{"cashflow", "VAT", "payroll", "forecasting"},
		USP:              "Fixed monthly pricing. Same-day replies. Dedicated account manager",
		ProductsServices: "Monthly bookkeeping packages, VAT return preparation, payroll processing services",
	}
}

func TestParseProductsServices(t *testing.T) {
	got := parseProductsServices("Monthly bookkeeping packages, VAT return preparation and payroll processing services")
	want := []string{"Monthly bookkeeping packages", "VAT return preparation", "payroll processing services"}
	if len(got) != len(want) {
		t.Fatalf("got %d items %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseProductsServicesDropsWePrefix(t *testing.T) {
	got := parseProductsServices("we handle your quarterly VAT filings, outsourced payroll management")
	for _, item := range got {
		if strings.HasPrefix(strings.ToLower(item), "we ") {
			t.Errorf("sentence fragment %q should have been filtered", item)
		}
	}
	if len(got) != 1 || got[0] != "outsourced payroll management" {
		t.Errorf("got %v", got)
	}
}

func TestParseProductsServicesFallback(t *testing.T) {
	// Short fragments all filtered out, whole text kept as one entry.
	got := parseProductsServices("tax, VAT")
	if len(got) != 1 || got[0] != "tax, VAT" {
		t.Errorf("got %v, want whole text fallback", got)
	}
	if got := parseProductsServices(""); got != nil {
		t.Errorf("empty input should yield nil, got %v", got)
	}
}

func TestSeededSelectDeterministic(t *testing.T) {
	items := []string{"a1-longer", "b2-longer", "c3-longer", "d4-longer", "e5-longer"}
	first := seededSelect(items, 2, 42)
	second := seededSelect(items, 2, 42)
	if first[0] != second[0] || first[1] != second[1] {
		t.Errorf("same seed gave %v then %v", first, second)
	}
	other := seededSelect(items, 2, 43)
	if first[0] == other[0] && first[1] == other[1] {
		t.Logf("seeds 42 and 43 happened to agree; acceptable but unusual")
	}
}

func TestSeededSelectCountClamp(t *testing.T) {
	items := []string{"one", "two"}
	got := seededSelect(items, 5, 7)
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	if got[0] != "one" || got[1] != "two" {
		t.Errorf("full selection should preserve order, got %v", got)
	}
}

func TestCountryGuidance(t *testing.T) {
	uk := CountryGuidance("United Kingdom")
	if !strings.Contains(uk, "£") && !strings.Contains(uk, "UK") {
		t.Errorf("UK guidance missing localization detail: %q", uk)
	}
	neutral := CountryGuidance("")
	if neutral == "" {
		t.Fatal("empty country must still yield guidance")
	}
	unknown := CountryGuidance("Atlantis")
	if !strings.Contains(unknown, "Atlantis") {
		t.Errorf("unknown country should be named in guidance: %q", unknown)
	}
}

func TestBuildSellingPromptFocus(t *testing.T) {
	p := BuildSellingPrompt(testInputs(), 7)

	if !strings.Contains(p, "PAS (Problem → Agitate → Solution)") {
		t.Error("missing PAS structure requirement")
	}
	if !strings.Contains(p, "Primary Product/Service") {
		t.Error("missing focus product section")
	}
	if !strings.Contains(p, "OTHER PRODUCTS/SERVICES AVAILABLE") {
		t.Error("multiple products should list non-focus products")
	}
	if !strings.Contains(p, "best_time_uk") {
		t.Error("missing best_time_uk field in JSON contract")
	}

	// Same seed, same focus.
	if p != BuildSellingPrompt(testInputs(), 7) {
		t.Error("selling prompt is not deterministic for a fixed seed")
	}
}

func TestBuildSellingPromptNotesPriority(t *testing.T) {
	in := testInputs()
	in.Notes = "Announce the new client portal"
	p := BuildSellingPrompt(in, 1)
	if !strings.Contains(p, "USER'S CUSTOM BRIEF (HIGHEST PRIORITY)") {
		t.Error("notes should be surfaced as highest-priority brief")
	}
	if !strings.Contains(p, "Announce the new client portal") {
		t.Error("notes text missing from prompt")
	}
}

func TestBuildPromptBackgroundMaterial(t *testing.T) {
	in := testInputs()
	in.Background = "[about-us.md]\nFounded in 2019 by two former auditors."

	for name, p := range map[string]string{
		"selling": BuildSellingPrompt(in, 1),
		"info":    BuildInfoAdvicePrompt(in, 1),
		"random":  BuildRandomPrompt(in, RandomSource{Title: "t", Blurb: "b"}),
		"news":    BuildNewsPrompt(in, nil),
	} {
		if !strings.Contains(p, "Background Material") || !strings.Contains(p, "Founded in 2019") {
			t.Errorf("%s prompt missing document background", name)
		}
	}

	in.Background = ""
	if strings.Contains(BuildSellingPrompt(in, 1), "Background Material") {
		t.Error("empty background should add no section")
	}
}

func TestBuildInfoAdvicePromptForbidsSelling(t *testing.T) {
	p := BuildInfoAdvicePrompt(testInputs(), 3)
	if !strings.Contains(p, "EDUCATIONAL content, NOT selling") {
		t.Error("missing educational framing")
	}
	if !strings.Contains(p, "ABSOLUTELY FORBIDDEN") {
		t.Error("missing forbidden-selling block")
	}
	if !strings.Contains(p, "FOCUS TOPIC FOR THIS POST") {
		t.Error("missing seeded focus topic")
	}
}

func TestBuildRandomPromptUsesSource(t *testing.T) {
	src := RandomSource{
		Title: "International Coffee Day",
		Blurb: "Celebrated worldwide on October 1st",
		Tags:  []string{"fun", "observance"},
	}
	p := BuildRandomPrompt(testInputs(), src)
	if !strings.Contains(p, "International Coffee Day") {
		t.Error("source title missing")
	}
	if !strings.Contains(p, "Celebrated worldwide on October 1st") {
		t.Error("source blurb missing")
	}
	if !strings.Contains(p, "Bridge to business") {
		t.Error("missing business bridge requirement")
	}
}

func TestBuildNewsPromptRealVsFallback(t *testing.T) {
	withNews := BuildNewsPrompt(testInputs(), []string{"HMRC delays Making Tax Digital rollout (BBC)"})
	if !strings.Contains(withNews, "REAL SECTOR NEWS") {
		t.Error("real headlines should use the real-news block")
	}
	if !strings.Contains(withNews, "HMRC delays Making Tax Digital rollout") {
		t.Error("headline text missing")
	}

	fallback := BuildNewsPrompt(testInputs(), nil)
	if !strings.Contains(fallback, "Industry Watch") {
		t.Error("no headlines should use the creative fallback block")
	}
	if !strings.Contains(fallback, "DO NOT fabricate specific news events") {
		t.Error("fallback must forbid fabricated events")
	}
	if !strings.Contains(fallback, "Prefer news relevant to United Kingdom") {
		t.Error("country preference line missing")
	}
}

func TestBuildRefinementPrompt(t *testing.T) {
	in := testInputs()
	in.OriginalPost = "Cashflow kills more businesses than competition does."
	in.Notes = "Make it punchier"

	p, err := BuildRefinementPrompt(in, "selling")
	if err != nil {
		t.Fatalf("BuildRefinementPrompt: %v", err)
	}
	if !strings.Contains(p, "Cashflow kills more businesses") {
		t.Error("original post missing")
	}
	if !strings.Contains(p, "Make it punchier") {
		t.Error("refinement instructions missing")
	}
	if !strings.Contains(p, "REFINEMENT, not a new post generation") {
		t.Error("missing refinement framing")
	}
}

func TestBuildRefinementPromptRequiresOriginal(t *testing.T) {
	if _, err := BuildRefinementPrompt(testInputs(), "selling"); err == nil {
		t.Fatal("expected error without original post")
	}
}

func TestBuildRefinementPromptDefaultInstructions(t *testing.T) {
	in := testInputs()
	in.OriginalPost = "Some post"
	p, err := BuildRefinementPrompt(in, "news")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(p, "Make the post better") {
		t.Error("missing default instruction")
	}
}

func TestSystemPromptToggles(t *testing.T) {
	cfg := genconfig.Defaults()
	full := SystemPrompt(cfg)
	for _, field := range []string{"headline_options", "post_text", "hashtags", "visual_prompt", "best_time_uk"} {
		if !strings.Contains(full, field) {
			t.Errorf("default system prompt missing %q", field)
		}
	}

	cfg.IncludeHashtags = false
	cfg.IncludeVisualPrompt = false
	cfg.PostingTimeHint = false
	trimmed := SystemPrompt(cfg)
	for _, field := range []string{"hashtags", "visual_prompt", "best_time_uk"} {
		if strings.Contains(trimmed, "\""+field+"\"") {
			t.Errorf("disabled field %q still requested", field)
		}
	}
	if !strings.Contains(trimmed, "post_text") {
		t.Error("post_text must always be requested")
	}
}

func TestWithMasterTemplate(t *testing.T) {
	base := "base prompt"
	if got := WithMasterTemplate(base, "  "); got != base {
		t.Errorf("blank template should leave prompt untouched, got %q", got)
	}
	got := WithMasterTemplate(base, "Always open with a question.")
	if !strings.Contains(got, "MASTER TEMPLATE GUIDANCE") || !strings.Contains(got, "Always open with a question.") {
		t.Errorf("template not appended: %q", got)
	}
}
