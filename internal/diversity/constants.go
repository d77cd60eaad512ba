package diversity

// StyleVariations are the tones rotated across generations.
var StyleVariations = []string{
	"friendly",
	"witty",
	"professional",
	"bold",
}

// HookTemplates are opening-line patterns suggested to the model.
var HookTemplates = []string{
	"Did you know...",
	"Pro tip:",
	"Here's what most people miss:",
	"The truth about",
	"Stop doing this:",
	"Quick win:",
	"Unpopular opinion:",
	"Real talk:",
	"Here's the thing:",
	"Let me be blunt:",
	"Myth:",
	"Confession:",
	"Hot take:",
	"Plot twist:",
	"Fun fact:",
}

// PhraseBanList holds overused phrases that drafts are penalized for.
var PhraseBanList = []string{
	"game changer",
	"paradigm shift",
	"synergy",
	"leverage",
	"circle back",
	"touch base",
	"low-hanging fruit",
	"think outside the box",
	"move the needle",
	"at the end of the day",
	"it is what it is",
	"take it to the next level",
	"win-win",
	"best practices",
	"thought leader",
	"deep dive",
	"reach out",
	"ping me",
	"let's unpack",
	"double-click on",
}

// PostStructures are high-level post skeletons rotated for variety.
var PostStructures = []string{
	"hook + insight + CTA",
	"myth + truth + action",
	"story + lesson + invitation",
	"question + answer + reflection",
	"problem + solution + next step",
	"stat + context + takeaway",
}
