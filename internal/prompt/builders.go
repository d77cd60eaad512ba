package prompt

import (
	"fmt"
	"strings"

	"github.com/brightpost/draftforge/internal/genconfig"
)

// writeBackground appends the uploaded-document extract after the business
// context so the model can draw on real details instead of inventing them.
func writeBackground(b *strings.Builder, background string) {
	if background == "" {
		return
	}
	fmt.Fprintf(b, "\nBackground Material (from the business's own documents, use for accurate details, never quote verbatim at length):\n%s\n", background)
}

// BuildSellingPrompt builds a PAS (Problem → Agitate → Solution) selling
// prompt focused on a seeded pick of one product and up to two selling
// points.
func BuildSellingPrompt(inputs GenInputs, seed int64) string {
	guidance := CountryGuidance(inputs.Country)

	allProducts := parseProductsServices(inputs.ProductsServices)
	focusProduct := inputs.Sector
	if len(allProducts) > 0 {
		focusProduct = seededSelect(allProducts, 1, seed)[0]
	}

	allUSPs := parseUSPs(inputs.USP)
	var focusUSPs []string
	if len(allUSPs) > 0 {
		focusUSPs = seededSelect(allUSPs, min(2, len(allUSPs)), seed+1)
	} else if inputs.USP != "" {
		focusUSPs = []string{inputs.USP}
	} else {
		focusUSPs = []string{"Not specified"}
	}

	focusKeywords := seededSelect(inputs.Keywords, min(3, len(inputs.Keywords)), seed+2)

	var b strings.Builder
	b.WriteString("Generate a SELLING LinkedIn post using the PAS (Problem → Agitate → Solution) structure.\n\n")
	b.WriteString("Business Context:\n")
	fmt.Fprintf(&b, "- Business: %s\n", inputs.BusinessName)
	fmt.Fprintf(&b, "- Sector: %s\n", inputs.Sector)
	fmt.Fprintf(&b, "- Target Audience: %s\n", inputs.Audience)
	fmt.Fprintf(&b, "- Tone: %s\n", toneOrDefault(inputs.BrandTone))
	if inputs.Website != "" {
		fmt.Fprintf(&b, "- Website: %s (use for additional context if needed)\n", inputs.Website)
	}
	writeBackground(&b, inputs.Background)

	b.WriteString("\n⚠️ CRITICAL RANDOMIZATION REQUIREMENTS:\n")
	b.WriteString("This post MUST focus on a DIFFERENT product/service than previous posts to avoid repetition.\n\n")
	b.WriteString("🎯 FOCUS FOR THIS POST:\n")
	fmt.Fprintf(&b, "- **Primary Product/Service**: %s\n", focusProduct)
	fmt.Fprintf(&b, "- **Key Selling Points**: %s\n", strings.Join(focusUSPs, "; "))
	if len(focusKeywords) > 0 {
		fmt.Fprintf(&b, "- **Keywords to weave in**: %s\n", strings.Join(focusKeywords, ", "))
	}

	if len(allProducts) > 1 {
		b.WriteString("\n📦 OTHER PRODUCTS/SERVICES AVAILABLE (for context, but DO NOT focus on these in this post):\n")
		for _, p := range allProducts {
			if p != focusProduct {
				fmt.Fprintf(&b, "- %s\n", p)
			}
		}
	}

	fmt.Fprintf(&b, "\nCountry/Localization:\n%s\n", guidance)

	b.WriteString("\nSELLING POST REQUIREMENTS:\n")
	fmt.Fprintf(&b, "1. **Problem**: Start with a specific pain point related to %s that %s faces\n", focusProduct, inputs.Audience)
	b.WriteString("2. **Agitate**: Use a brief anonymized mini-story or stat to make it real\n")
	fmt.Fprintf(&b, "3. **Solution**: Present how %s solves it, emphasizing: %s\n", focusProduct, strings.Join(focusUSPs, " and "))
	b.WriteString("4. **CTA**: Soft call-to-action (e.g., \"Comment 'GUIDE' for the checklist\" or \"DM for a demo\")\n")

	b.WriteString(`
Style Guidelines:
- Lead with tension or a surprising stat
- Short sentences (4-12 words)
- One vivid detail beats three vague claims
- Persuasive but not pushy
- Maximum 160 words (aim for 140-160 for depth)
- Use blank lines generously
- VARY your angle: Don't repeat the same problem/story as recent posts
`)

	if inputs.Notes != "" {
		fmt.Fprintf(&b, "\n🎯 USER'S CUSTOM BRIEF (HIGHEST PRIORITY):\n%s\n\nIf the user has provided specific instructions above, prioritize those over the randomized focus.\n", inputs.Notes)
	}

	b.WriteString("\nReturn STRICT JSON with fields:\n")
	b.WriteString("- \"headline_options\": array of 3 hooks (1 contrarian, 1 data-led, 1 story-first)\n")
	fmt.Fprintf(&b, "- \"post_text\": full post following PAS structure, focused on %s\n", focusProduct)
	b.WriteString("- \"hashtags\": array of 5-8 relevant hashtags\n")
	fmt.Fprintf(&b, "- \"visual_prompt\": detailed prompt for accompanying image showing %s\n", focusProduct)
	b.WriteString("- \"best_time_uk\": optimal posting time in UK timezone (HH:MM, 24-hour)\n")
	b.WriteString("\nRespond ONLY with valid JSON (no markdown, no commentary).")

	return b.String()
}

// BuildInfoAdvicePrompt builds an educational prompt anchored on one seeded
// focus topic, with hard guardrails against selling language.
func BuildInfoAdvicePrompt(inputs GenInputs, seed int64) string {
	guidance := CountryGuidance(inputs.Country)

	allProducts := parseProductsServices(inputs.ProductsServices)
	focusTopic := inputs.Sector
	if len(allProducts) > 0 {
		focusTopic = seededSelect(allProducts, 1, seed)[0]
	}

	focusKeywords := seededSelect(inputs.Keywords, 3, seed+1)

	var b strings.Builder
	b.WriteString("Generate an INFORMATION & ADVICE LinkedIn post that combines insight with actionable guidance.\n\n")
	b.WriteString("Business Context:\n")
	fmt.Fprintf(&b, "- Business: %s\n", inputs.BusinessName)
	fmt.Fprintf(&b, "- Sector: %s\n", inputs.Sector)
	fmt.Fprintf(&b, "- Target Audience: %s\n", inputs.Audience)
	fmt.Fprintf(&b, "- Tone: %s\n", toneOrDefault(inputs.BrandTone))
	writeBackground(&b, inputs.Background)

	fmt.Fprintf(&b, "\n🎯 FOCUS TOPIC FOR THIS POST: %s\n", focusTopic)
	b.WriteString("\n⚠️ CRITICAL RANDOMIZATION REQUIREMENT:\n")
	fmt.Fprintf(&b, "This post MUST focus on %q specifically.\n", focusTopic)
	b.WriteString("DO NOT repeat topics from previous posts.\n")
	b.WriteString("Provide educational content about THIS topic only.\n")

	fmt.Fprintf(&b, "\nAll Products/Services (for context only, DO NOT cover all):\n%s\n", strings.Join(allProducts, ", "))

	if len(focusKeywords) > 0 {
		fmt.Fprintf(&b, "\nKeywords to naturally weave in: %s\n", strings.Join(focusKeywords, ", "))
	}
	if len(inputs.Keywords) > 0 {
		fmt.Fprintf(&b, "All available keywords (for context): %s\n", strings.Join(inputs.Keywords, ", "))
	}

	fmt.Fprintf(&b, "\nCountry/Localization:\n%s\n", guidance)

	b.WriteString("\nINFORMATION & ADVICE POST REQUIREMENTS:\n")
	b.WriteString("\n⚠️ CRITICAL: This is EDUCATIONAL content, NOT selling. Provide value the reader can implement themselves.\n")
	b.WriteString("\n✅ MUST INCLUDE:\n")
	fmt.Fprintf(&b, "1. **Pick 1 concrete problem** that %s faces in %s\n", inputs.Audience, inputs.Sector)
	b.WriteString("2. **Provide 1 actionable tip, hack, or step-by-step guidance** that readers can DO THEMSELVES\n")
	b.WriteString("3. **Specific tools, techniques, or methods** (free tools, keyboard shortcuts, process improvements)\n")
	b.WriteString("4. **Real-life example or case study** showing the tip in action\n")
	b.WriteString("5. **\"So what\" impact** - measurable benefit (time saved, errors reduced, efficiency gained)\n")
	b.WriteString("6. **Optional**: Template, checklist, or specific metric to track\n")

	b.WriteString(`
❌ ABSOLUTELY FORBIDDEN (This is NOT a selling post):
- DO NOT suggest "talk to your IT provider" or "contact a specialist"
- DO NOT include CTAs to buy services ("Book a consultation", "Get a quote")
- DO NOT use fear-based selling ("your systems could crash!")
- DO NOT emphasize money saved by buying services ("save £5,000 with our support")
- DO NOT pitch products or services
- DO NOT use benefit-focused language that implies buying ("our solution provides...")

✅ GOOD EXAMPLES:
- "Use Windows Task Scheduler to automate backups: Settings > System > Backup > Schedule"
- "Pro tip: Keep 2 offline backups in different physical locations (3-2-1 rule)"
- "Free tool alert: Use Ninite.com to batch-install software updates in one click"
- "Here's how to check your firewall status in 30 seconds: [specific steps]"

❌ BAD EXAMPLES (These are selling, not advice):
- "Regular IT audits could save you £5,000/year" (selling benefit)
- "Talk to your IT provider about quarterly check-ups" (CTA to buy)
- "Prevent disasters with proactive support" (selling fear)
`)

	b.WriteString("\nStyle Guidelines:\n")
	b.WriteString("- Lead with a myth-bust, surprise, or \"most people get this wrong\"\n")
	b.WriteString("- Sentences 4-12 words\n")
	b.WriteString("- Use blank lines generously\n")
	b.WriteString("- One vivid detail or specific example\n")
	fmt.Fprintf(&b, "- No generic fluff - be specific to %s\n", inputs.Sector)
	b.WriteString("- Maximum 160 words (aim for 140-160 for depth)\n")
	b.WriteString("- Focus on TEACHING, not SELLING\n")

	if inputs.Notes != "" {
		fmt.Fprintf(&b, "\nAdditional Instructions:\n%s\n", inputs.Notes)
	}

	b.WriteString("\nReturn STRICT JSON with fields:\n")
	b.WriteString("- \"headline_options\": array of 3 hooks (1 contrarian, 1 data-led, 1 story-first)\n")
	b.WriteString("- \"post_text\": full post with actionable advice\n")
	b.WriteString("- \"hashtags\": array of 5-8 relevant hashtags\n")
	b.WriteString("- \"visual_prompt\": detailed prompt for accompanying image\n")
	b.WriteString("- \"best_time_uk\": optimal posting time in UK timezone (HH:MM, 24-hour)\n")
	b.WriteString("\nRespond ONLY with valid JSON (no markdown, no commentary).")

	return b.String()
}

// BuildRandomPrompt builds a fun-facts prompt that bridges a random source
// (observance, science, pop culture) to a business takeaway.
func BuildRandomPrompt(inputs GenInputs, source RandomSource) string {
	guidance := CountryGuidance(inputs.Country)

	var b strings.Builder
	b.WriteString("Generate a RANDOM / FUN FACTS LinkedIn post that bridges an interesting fact to business value.\n\n")
	b.WriteString("Business Context:\n")
	fmt.Fprintf(&b, "- Business: %s\n", inputs.BusinessName)
	fmt.Fprintf(&b, "- Sector: %s\n", inputs.Sector)
	fmt.Fprintf(&b, "- Target Audience: %s\n", inputs.Audience)
	fmt.Fprintf(&b, "- Tone: %s\n", toneOrDefault(inputs.BrandTone))
	if len(inputs.Keywords) > 0 {
		fmt.Fprintf(&b, "- Keywords: %s\n", strings.Join(inputs.Keywords, ", "))
	}

	writeBackground(&b, inputs.Background)

	fmt.Fprintf(&b, "\nCountry/Localization:\n%s\n", guidance)

	b.WriteString("\nRANDOM SOURCE (use this as your hook):\n")
	fmt.Fprintf(&b, "Title: %s\n", source.Title)
	fmt.Fprintf(&b, "Context: %s\n", source.Blurb)
	fmt.Fprintf(&b, "Tags: %s\n", strings.Join(source.Tags, ", "))

	b.WriteString("\nRANDOM / FUN FACTS POST REQUIREMENTS:\n")
	b.WriteString("1. **Start with the random fact/observance** - make it engaging and surprising\n")
	fmt.Fprintf(&b, "2. **Bridge to business**: Connect it to %s or %s with a playful but useful takeaway\n", inputs.Sector, inputs.Audience)
	b.WriteString("3. **Keep it light but valuable**: Fun tone, but still provides insight or perspective\n")
	b.WriteString("4. **Country-appropriate**: If the source is country-specific, lean into it; otherwise keep it universal\n")
	b.WriteString("5. **Maximum 160 words** (aim for 140-160 for depth and context)\n")

	b.WriteString(`
Style Guidelines:
- Playful, witty, or thought-provoking opening
- Short sentences with good rhythm
- Use blank lines for readability
- End with a question or reflection that invites engagement
- Balance fun with professional value
`)

	if inputs.Notes != "" {
		fmt.Fprintf(&b, "\nAdditional Instructions:\n%s\n", inputs.Notes)
	}

	b.WriteString("\nReturn STRICT JSON with fields:\n")
	b.WriteString("- \"headline_options\": array of 3 hooks (1 playful, 1 curious, 1 thought-provoking)\n")
	b.WriteString("- \"post_text\": full post bridging random fact to business insight\n")
	b.WriteString("- \"hashtags\": array of 5-8 relevant hashtags (mix fun + professional)\n")
	b.WriteString("- \"visual_prompt\": detailed prompt for accompanying image (can be playful/creative)\n")
	b.WriteString("- \"best_time_uk\": optimal posting time in UK timezone (HH:MM, 24-hour)\n")
	b.WriteString("\nRespond ONLY with valid JSON (no markdown, no commentary).")

	return b.String()
}

// BuildNewsPrompt builds a news-commentary prompt. With real headlines the
// model picks one and reacts; without, it writes a trend piece and is told
// not to fabricate events.
func BuildNewsPrompt(inputs GenInputs, headlines []string) string {
	guidance := CountryGuidance(inputs.Country)

	var headlinesText string
	if len(headlines) > 0 {
		headlinesText = fmt.Sprintf(
			"REAL SECTOR NEWS (pick 1 and craft a professional take):\n%s\n\nRules for real news posts:\n- Open with a spiky hook that grabs attention\n- 1–2 lines summarizing the story accurately (NO hallucinations)\n- 1 specific implication for %s\n- 1 actionable takeaway or question\n- Cite the source inline\n- Keep it professional and credible",
			strings.Join(headlines, "\n"), inputs.Audience,
		)
	} else {
		headlinesText = fmt.Sprintf(
			"CREATIVE NEWS-STYLE POST (no specific headlines available):\nGenerate a forward-looking news-style post inspired by:\n- Current trends in %s\n- Innovations relevant to %s\n- Industry insights\n\nFrame as \"Industry Watch\" or \"Sector Spotlight\" style.\nFocus on emerging trends or common challenges.\nDO NOT fabricate specific news events or cite fake sources.",
			inputs.Sector, inputs.Audience,
		)
	}

	var b strings.Builder
	b.WriteString("Generate a NEWS LinkedIn post that provides timely, sector-relevant commentary.\n\n")
	b.WriteString("Business Context:\n")
	fmt.Fprintf(&b, "- Business: %s\n", inputs.BusinessName)
	fmt.Fprintf(&b, "- Sector: %s\n", inputs.Sector)
	fmt.Fprintf(&b, "- Target Audience: %s\n", inputs.Audience)
	fmt.Fprintf(&b, "- Tone: %s\n", toneOrDefault(inputs.BrandTone))
	if len(inputs.Keywords) > 0 {
		fmt.Fprintf(&b, "- Keywords: %s\n", strings.Join(inputs.Keywords, ", "))
	}

	writeBackground(&b, inputs.Background)

	fmt.Fprintf(&b, "\nCountry/Localization:\n%s\n", guidance)
	if inputs.Country != "" {
		fmt.Fprintf(&b, "Prefer news relevant to %s when available. Fall back to worldwide only if country-specific news is unavailable.\n", inputs.Country)
	}

	b.WriteString("\n")
	b.WriteString(headlinesText)
	b.WriteString("\n")

	b.WriteString("\nNEWS POST REQUIREMENTS:\n")
	b.WriteString("1. **Hook**: Start with attention-grabbing angle on the news\n")
	b.WriteString("2. **Summary**: 1-2 lines on what happened (accurate, no fabrication)\n")
	fmt.Fprintf(&b, "3. **\"What this means\"**: Practical implication for %s\n", inputs.Audience)
	b.WriteString("4. **Next step**: Actionable takeaway or thought-provoking question\n")
	b.WriteString("5. **Maximum 160 words** (aim for 140-160 for depth and analysis)\n")
	b.WriteString("6. **Neutral, practical tone** - informative, not sensational\n")

	b.WriteString(`
Style Guidelines:
- Lead with the news angle, not generic intro
- Short, punchy sentences
- Use blank lines for readability
- Professional and credible tone
- If using real news, cite source inline
`)

	if inputs.Notes != "" {
		fmt.Fprintf(&b, "\nAdditional Instructions:\n%s\n", inputs.Notes)
	}

	b.WriteString("\nReturn STRICT JSON with fields:\n")
	b.WriteString("- \"headline_options\": array of 3 hooks (1 urgent, 1 analytical, 1 questioning)\n")
	b.WriteString("- \"post_text\": full post with news commentary\n")
	b.WriteString("- \"hashtags\": array of 5-8 relevant hashtags\n")
	b.WriteString("- \"visual_prompt\": detailed prompt for accompanying image\n")
	b.WriteString("- \"best_time_uk\": optimal posting time in UK timezone (HH:MM, 24-hour)\n")
	b.WriteString("\nRespond ONLY with valid JSON (no markdown, no commentary).")

	return b.String()
}

// BuildRefinementPrompt builds a prompt that modifies an existing post
// according to the user's instructions instead of generating a new one.
func BuildRefinementPrompt(inputs GenInputs, postType string) (string, error) {
	if inputs.OriginalPost == "" {
		return "", fmt.Errorf("refinement requires the original post text")
	}

	instructions := inputs.Notes
	if instructions == "" {
		instructions = "Make the post better"
	}

	var b strings.Builder
	b.WriteString("You are refining an EXISTING LinkedIn post. Your task is to MODIFY the post based on the user's instructions while keeping the core structure and message intact.\n\n")
	b.WriteString("⚠️ CRITICAL: This is a REFINEMENT, not a new post generation.\n")
	b.WriteString("- Keep the original post's main topic and structure\n")
	b.WriteString("- Apply the user's requested changes\n")
	b.WriteString("- Make targeted improvements, not wholesale rewrites\n")
	b.WriteString("- Preserve what's working well in the original\n")

	fmt.Fprintf(&b, "\nORIGINAL POST:\n\"\"\"\n%s\n\"\"\"\n", inputs.OriginalPost)
	fmt.Fprintf(&b, "\nUSER'S REFINEMENT INSTRUCTIONS:\n\"\"\"\n%s\n\"\"\"\n", instructions)

	b.WriteString("\nBusiness Context (for reference):\n")
	fmt.Fprintf(&b, "- Business: %s\n", inputs.BusinessName)
	fmt.Fprintf(&b, "- Sector: %s\n", inputs.Sector)
	fmt.Fprintf(&b, "- Target Audience: %s\n", inputs.Audience)
	fmt.Fprintf(&b, "- Tone: %s\n", toneOrDefault(inputs.BrandTone))
	fmt.Fprintf(&b, "- Post Type: %s\n", postType)

	b.WriteString("\nREFINEMENT GUIDELINES:\n")
	b.WriteString("1. **Read the original post carefully** - understand its structure, message, and tone\n")
	b.WriteString("2. **Apply the user's instructions** - make the specific changes they requested\n")
	b.WriteString("3. **Keep the core intact** - don't change the fundamental topic or message unless explicitly asked\n")
	b.WriteString("4. **Preserve good elements** - if something works well, keep it\n")
	b.WriteString("5. **Make surgical edits** - targeted improvements, not complete rewrites\n")
	b.WriteString("6. **Maintain length** - aim for similar word count (140-160 words)\n")
	fmt.Fprintf(&b, "7. **Keep the same post type** - maintain %s characteristics\n", postType)

	b.WriteString(`
WHAT TO PRESERVE:
- The main topic and angle
- The overall structure (unless user asks to change it)
- Key facts, statistics, or examples (unless user asks to change them)
- The professional tone and style

WHAT TO MODIFY:
- Apply the specific changes the user requested
- Improve clarity or flow if needed
- Fix any issues the user mentioned
- Add elements the user specifically asked for
`)

	b.WriteString("\nReturn STRICT JSON with fields:\n")
	b.WriteString("- \"headline_options\": array of 3 refined headline variations\n")
	b.WriteString("- \"post_text\": the refined post text\n")
	b.WriteString("- \"hashtags\": array of 5-8 relevant hashtags (can be same or improved)\n")
	b.WriteString("- \"visual_prompt\": updated visual prompt if needed\n")
	b.WriteString("- \"best_time_uk\": optimal posting time in UK timezone (HH:MM, 24-hour)\n")
	b.WriteString("\nRespond ONLY with valid JSON (no markdown, no commentary).")

	return b.String(), nil
}

// SystemPrompt renders the system message. The response-field contract is
// driven by the config toggles so disabled features never get asked for.
func SystemPrompt(cfg genconfig.GlobalConfig) string {
	var b strings.Builder
	b.WriteString("You are a high-signal LinkedIn ghostwriter. Write spiky, contrarian, story-first posts with short lines and a clear point of view. Keep it LinkedIn-safe.")

	b.WriteString("\n\nReturn STRICT JSON with fields:")
	if cfg.IncludeHeadlineOptions {
		b.WriteString("\n- \"headline_options\": array of 3 hooks (1 contrarian, 1 data-led, 1 story-first)")
	}
	b.WriteString("\n- \"post_text\": full post. Short lines. Bold POV. 1 vivid example/mini-anecdote. End with a provocative question.")
	if cfg.IncludeHashtags {
		b.WriteString("\n- \"hashtags\": array of relevant hashtags")
	}
	if cfg.IncludeVisualPrompt {
		b.WriteString("\n- \"visual_prompt\": a detailed prompt for generating an accompanying image")
	}
	if cfg.PostingTimeHint {
		b.WriteString("\n- \"best_time_uk\": optimal posting time in UK timezone (HH:MM, 24-hour)")
	}

	b.WriteString("\n\nGuardrails: no slurs/personal attacks; no fabricated facts. Opinions are fine.")
	b.WriteString("\nRespond ONLY with valid JSON (no markdown, no commentary).")

	return b.String()
}

// WithMasterTemplate appends the admin's long-form master template to a
// prompt when one is configured.
func WithMasterTemplate(base, template string) string {
	if strings.TrimSpace(template) == "" {
		return base
	}
	return base + "\n\nMASTER TEMPLATE GUIDANCE:\n" + template
}
