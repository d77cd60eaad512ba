// Package sources supplies the content inputs for news and random post
// types: curated snippets, live RSS headlines, and a pool of observances,
// facts, and historical anniversaries.
package sources

import "github.com/brightpost/draftforge/internal/prompt"

var worldObservances = []prompt.RandomSource{
	{
		Title: "World Productivity Day",
		Blurb: "Celebrated globally to promote efficiency and time management in the workplace.",
		Tags:  []string{"productivity", "workplace", "efficiency"},
	},
	{
		Title: "International Coffee Day",
		Blurb: "A day to celebrate coffee culture and the people who grow, roast, and serve it.",
		Tags:  []string{"coffee", "culture", "business"},
	},
	{
		Title: "World Creativity and Innovation Day",
		Blurb: "Encourages creative thinking and innovative problem-solving in all areas of life.",
		Tags:  []string{"creativity", "innovation", "business"},
	},
	{
		Title: "International Day of Happiness",
		Blurb: "Recognizes the importance of happiness and well-being as universal goals.",
		Tags:  []string{"happiness", "wellbeing", "culture"},
	},
	{
		Title: "World Entrepreneurs Day",
		Blurb: "Celebrates the spirit of entrepreneurship and small business innovation.",
		Tags:  []string{"entrepreneurship", "business", "innovation"},
	},
	{
		Title: "International Day of Friendship",
		Blurb: "Promotes the role of friendships in fostering peace and building bridges between communities.",
		Tags:  []string{"friendship", "networking", "community"},
	},
	{
		Title: "World Standards Day",
		Blurb: "Celebrates the importance of international standards in facilitating global trade.",
		Tags:  []string{"standards", "quality", "business"},
	},
	{
		Title: "Global Entrepreneurship Week",
		Blurb: "A worldwide celebration of innovators and job creators who launch startups.",
		Tags:  []string{"entrepreneurship", "startups", "innovation"},
	},
}

var ukObservances = []prompt.RandomSource{
	{
		Title: "National Tea Day (UK)",
		Blurb: "Celebrates Britain's favourite beverage and the culture surrounding it.",
		Tags:  []string{"tea", "culture", "UK"},
	},
	{
		Title: "Small Business Saturday (UK)",
		Blurb: "Encourages consumers to shop locally and support small businesses across the UK.",
		Tags:  []string{"small business", "retail", "UK"},
	},
	{
		Title: "National Customer Service Week (UK)",
		Blurb: "Recognizes the importance of customer service and the people who deliver it.",
		Tags:  []string{"customer service", "business", "UK"},
	},
	{
		Title: "UK Cyber Security Week",
		Blurb: "Raises awareness about online safety and cybersecurity best practices.",
		Tags:  []string{"cybersecurity", "technology", "UK"},
	},
}

var usObservances = []prompt.RandomSource{
	{
		Title: "Small Business Saturday (US)",
		Blurb: "The Saturday after Thanksgiving, dedicated to supporting local small businesses.",
		Tags:  []string{"small business", "retail", "US"},
	},
	{
		Title: "National Entrepreneurs Day (US)",
		Blurb: "Celebrates the innovators and risk-takers who drive the American economy.",
		Tags:  []string{"entrepreneurship", "business", "US"},
	},
	{
		Title: "National Customer Service Week (US)",
		Blurb: "Honors customer service professionals and their contributions to business success.",
		Tags:  []string{"customer service", "business", "US"},
	},
	{
		Title: "National Work from Home Day (US)",
		Blurb: "Recognizes the growing trend of remote work and its impact on productivity.",
		Tags:  []string{"remote work", "productivity", "US"},
	},
}

var scienceFacts = []prompt.RandomSource{
	{
		Title: "The Zeigarnik Effect",
		Blurb: "People remember uncompleted or interrupted tasks better than completed ones - explaining why cliffhangers work.",
		Tags:  []string{"psychology", "productivity", "science"},
	},
	{
		Title: "Parkinson's Law",
		Blurb: "Work expands to fill the time available for its completion - a key insight for time management.",
		Tags:  []string{"productivity", "time management", "science"},
	},
	{
		Title: "The Two-Pizza Rule",
		Blurb: "Amazon's Jeff Bezos popularized the idea that teams should be small enough to feed with two pizzas for maximum efficiency.",
		Tags:  []string{"teamwork", "productivity", "business"},
	},
	{
		Title: "The 10,000-Hour Rule",
		Blurb: "Malcolm Gladwell's theory that it takes roughly 10,000 hours of practice to achieve mastery in a field.",
		Tags:  []string{"mastery", "learning", "science"},
	},
	{
		Title: "The Dunning-Kruger Effect",
		Blurb: "People with low ability at a task overestimate their ability, while experts underestimate theirs.",
		Tags:  []string{"psychology", "learning", "science"},
	},
	{
		Title: "The Compound Effect",
		Blurb: "Small, consistent actions compound over time to produce significant results - the power of incremental improvement.",
		Tags:  []string{"productivity", "growth", "science"},
	},
	{
		Title: "The Mere Exposure Effect",
		Blurb: "People develop a preference for things merely because they are familiar with them - key to branding.",
		Tags:  []string{"psychology", "marketing", "science"},
	},
	{
		Title: "The Paradox of Choice",
		Blurb: "Too many options can lead to decision paralysis and decreased satisfaction - less is often more.",
		Tags:  []string{"psychology", "decision making", "science"},
	},
}

var popCulture = []prompt.RandomSource{
	{
		Title: "The Godfather's Business Lessons",
		Blurb: `"It's not personal, it's strictly business" - a reminder to separate emotions from business decisions.`,
		Tags:  []string{"film", "business", "culture"},
	},
	{
		Title: "Star Wars and Leadership",
		Blurb: `"Do or do not, there is no try" - Yoda's wisdom on commitment and decisive action.`,
		Tags:  []string{"film", "leadership", "culture"},
	},
	{
		Title: "The Social Network's Startup Culture",
		Blurb: "The film that captured the intensity and innovation of Silicon Valley's startup scene.",
		Tags:  []string{"film", "startups", "culture"},
	},
	{
		Title: "Breaking Bad's Transformation",
		Blurb: "A story about reinvention and the power (and danger) of ambition.",
		Tags:  []string{"TV", "transformation", "culture"},
	},
	{
		Title: "The Office's Workplace Humor",
		Blurb: "A satirical look at office culture that resonates with millions of workers worldwide.",
		Tags:  []string{"TV", "workplace", "culture"},
	},
}

var thisDayHistory = []prompt.RandomSource{
	{
		Title: "Apple Founded (April 1, 1976)",
		Blurb: "Steve Jobs and Steve Wozniak founded Apple Computer in a garage, starting a tech revolution.",
		Tags:  []string{"history", "technology", "startups"},
	},
	{
		Title: "Amazon Launched (July 16, 1995)",
		Blurb: "Jeff Bezos launched Amazon.com as an online bookstore, which would become an e-commerce giant.",
		Tags:  []string{"history", "e-commerce", "startups"},
	},
	{
		Title: "Microsoft Founded (April 4, 1975)",
		Blurb: "Bill Gates and Paul Allen founded Microsoft, shaping the personal computer revolution.",
		Tags:  []string{"history", "technology", "startups"},
	},
	{
		Title: "Google Incorporated (September 4, 1998)",
		Blurb: "Larry Page and Sergey Brin incorporated Google, transforming how we access information.",
		Tags:  []string{"history", "technology", "startups"},
	},
	{
		Title: "Facebook Launched (February 4, 2004)",
		Blurb: "Mark Zuckerberg launched Facebook from his Harvard dorm room, changing social connection forever.",
		Tags:  []string{"history", "social media", "startups"},
	},
	{
		Title: "Tesla Motors Founded (July 1, 2003)",
		Blurb: "Martin Eberhard and Marc Tarpenning founded Tesla, pioneering electric vehicle innovation.",
		Tags:  []string{"history", "technology", "innovation"},
	},
}

var holidaysByCountry = map[string][]prompt.RandomSource{
	"United Kingdom": {
		{
			Title: "Boxing Day",
			Blurb: "The day after Christmas, traditionally for giving gifts to service workers and the less fortunate.",
			Tags:  []string{"holiday", "UK", "culture"},
		},
		{
			Title: "Guy Fawkes Night",
			Blurb: "November 5th celebration commemorating the foiling of the Gunpowder Plot in 1605.",
			Tags:  []string{"holiday", "UK", "culture"},
		},
	},
	"United States": {
		{
			Title: "Thanksgiving",
			Blurb: "A national holiday for giving thanks, typically celebrated with family gatherings and feasts.",
			Tags:  []string{"holiday", "US", "culture"},
		},
		{
			Title: "Independence Day",
			Blurb: "July 4th celebration of American independence and national pride.",
			Tags:  []string{"holiday", "US", "culture"},
		},
	},
	"Canada": {
		{
			Title: "Canada Day",
			Blurb: "July 1st celebration of Canadian confederation and national identity.",
			Tags:  []string{"holiday", "Canada", "culture"},
		},
	},
	"Australia": {
		{
			Title: "Australia Day",
			Blurb: "January 26th national day celebrating Australian culture and achievements.",
			Tags:  []string{"holiday", "Australia", "culture"},
		},
	},
	"Ireland": {
		{
			Title: "St. Patrick's Day",
			Blurb: "March 17th celebration of Irish culture and heritage, recognized worldwide.",
			Tags:  []string{"holiday", "Ireland", "culture"},
		},
	},
}

// ObservancesByCountry returns world observances plus any country-specific
// ones.
func ObservancesByCountry(country string) []prompt.RandomSource {
	switch country {
	case "United Kingdom":
		return append(append([]prompt.RandomSource{}, worldObservances...), ukObservances...)
	case "United States":
		return append(append([]prompt.RandomSource{}, worldObservances...), usObservances...)
	default:
		return worldObservances
	}
}

// HolidaysByCountry returns the major holidays for a country, or nil when
// none are curated.
func HolidaysByCountry(country string) []prompt.RandomSource {
	return holidaysByCountry[country]
}

// AllRandomSources returns the full pool for a country: observances, science
// facts, pop culture, history, and holidays, in that order. Order is stable
// so a seed always lands on the same entry.
func AllRandomSources(country string) []prompt.RandomSource {
	var all []prompt.RandomSource
	all = append(all, ObservancesByCountry(country)...)
	all = append(all, scienceFacts...)
	all = append(all, popCulture...)
	all = append(all, thisDayHistory...)
	all = append(all, HolidaysByCountry(country)...)
	return all
}

// PickRandomSource selects one entry from the pool by seed.
func PickRandomSource(seed int64, country string) prompt.RandomSource {
	pool := AllRandomSources(country)
	idx := seed % int64(len(pool))
	if idx < 0 {
		idx += int64(len(pool))
	}
	return pool[idx]
}
