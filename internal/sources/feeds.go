package sources

import (
	"sort"
	"strings"
)

// IndustryFeed is a named RSS feed curated for an industry.
type IndustryFeed struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

var industryFeeds = map[string][]IndustryFeed{
	"financial services": {
		{URL: "https://www.fca.org.uk/news/rss.xml", Name: "FCA Publications"},
		{URL: "https://www.banking.co.uk/news/feed", Name: "Banking News UK"},
		{URL: "https://www.leasinglife.com/feed", Name: "Leasing Life"},
		{URL: "https://assetfinanceconnect.com/feed", Name: "Asset Finance Connect"},
	},
	"leasing": {
		{URL: "https://www.leasinglife.com/feed", Name: "Leasing Life"},
		{URL: "https://assetfinanceconnect.com/feed", Name: "Asset Finance Connect"},
		{URL: "https://www.fca.org.uk/news/rss.xml", Name: "FCA Publications"},
	},
	"asset finance": {
		{URL: "https://assetfinanceconnect.com/feed", Name: "Asset Finance Connect"},
		{URL: "https://www.leasinglife.com/feed", Name: "Leasing Life"},
		{URL: "https://www.fca.org.uk/news/rss.xml", Name: "FCA Publications"},
	},
	"legal services": {
		{URL: "https://www.lawgazette.co.uk/rss", Name: "Law Gazette"},
		{URL: "https://www.thelawyer.com/feed/", Name: "The Lawyer"},
		{URL: "https://www.legalfutures.co.uk/feed", Name: "Legal Futures"},
	},
	"law": {
		{URL: "https://www.lawgazette.co.uk/rss", Name: "Law Gazette"},
		{URL: "https://www.thelawyer.com/feed/", Name: "The Lawyer"},
		{URL: "https://www.legalfutures.co.uk/feed", Name: "Legal Futures"},
	},
	"healthcare": {
		{URL: "https://www.hsj.co.uk/rss.xml", Name: "Health Service Journal"},
		{URL: "https://www.pulsetoday.co.uk/feed/", Name: "Pulse Today"},
		{URL: "https://www.digitalhealth.net/feed/", Name: "Digital Health"},
	},
	"technology": {
		{URL: "https://techcrunch.com/feed/", Name: "TechCrunch"},
		{URL: "https://www.wired.co.uk/rss", Name: "Wired UK"},
		{URL: "https://www.theregister.com/headlines.atom", Name: "The Register"},
	},
	"it services": {
		{URL: "https://www.computerweekly.com/rss/All-Computer-Weekly-content.xml", Name: "Computer Weekly"},
		{URL: "https://www.theregister.com/headlines.atom", Name: "The Register"},
		{URL: "https://www.itpro.co.uk/rss", Name: "IT Pro"},
	},
	"marketing": {
		{URL: "https://www.marketingweek.com/feed/", Name: "Marketing Week"},
		{URL: "https://www.thedrum.com/rss/news", Name: "The Drum"},
		{URL: "https://searchengineland.com/feed", Name: "Search Engine Land"},
	},
	"digital marketing": {
		{URL: "https://searchengineland.com/feed", Name: "Search Engine Land"},
		{URL: "https://www.marketingweek.com/feed/", Name: "Marketing Week"},
		{URL: "https://www.thedrum.com/rss/news", Name: "The Drum"},
	},
	"real estate": {
		{URL: "https://www.propertyweek.com/rss", Name: "Property Week"},
		{URL: "https://www.estateagenttoday.co.uk/feed/", Name: "Estate Agent Today"},
		{URL: "https://www.propertyindustryeye.com/feed/", Name: "Property Industry Eye"},
	},
	"property": {
		{URL: "https://www.propertyweek.com/rss", Name: "Property Week"},
		{URL: "https://www.estateagenttoday.co.uk/feed/", Name: "Estate Agent Today"},
		{URL: "https://www.propertyindustryeye.com/feed/", Name: "Property Industry Eye"},
	},
	"hospitality": {
		{URL: "https://www.caterersearch.com/rss", Name: "Caterer & Hotelkeeper"},
		{URL: "https://www.bighospitality.co.uk/RSS/RSS-Feed/News", Name: "BigHospitality"},
		{URL: "https://www.morningadvertiser.co.uk/rss", Name: "Morning Advertiser"},
	},
	"restaurant": {
		{URL: "https://www.bighospitality.co.uk/RSS/RSS-Feed/News", Name: "BigHospitality"},
		{URL: "https://www.caterersearch.com/rss", Name: "Caterer & Hotelkeeper"},
	},
	"retail": {
		{URL: "https://www.retailgazette.co.uk/feed/", Name: "Retail Gazette"},
		{URL: "https://www.retailtimes.co.uk/feed/", Name: "Retail Times"},
		{URL: "https://www.insideretail.co.uk/feed/", Name: "Inside Retail"},
	},
	"construction": {
		{URL: "https://www.constructionnews.co.uk/rss", Name: "Construction News"},
		{URL: "https://www.building.co.uk/rss", Name: "Building Magazine"},
		{URL: "https://www.constructionenquirer.com/feed/", Name: "Construction Enquirer"},
	},
	"automotive": {
		{URL: "https://www.am-online.com/rss", Name: "AM Online"},
		{URL: "https://www.autoexpress.co.uk/feed", Name: "Auto Express"},
		{URL: "https://independentgarageassociation.co.uk/news/feed", Name: "Independent Garage Association"},
	},
	"accounting": {
		{URL: "https://www.accountancyage.com/feed/", Name: "Accountancy Age"},
		{URL: "https://www.accountingweb.co.uk/rss", Name: "AccountingWEB"},
		{URL: "https://www.icaew.com/rss", Name: "ICAEW"},
	},
	"hr": {
		{URL: "https://www.hrmagazine.co.uk/rss", Name: "HR Magazine"},
		{URL: "https://www.personneltoday.com/feed/", Name: "Personnel Today"},
		{URL: "https://www.cipd.co.uk/news/rss", Name: "CIPD"},
	},
	"recruitment": {
		{URL: "https://www.recruiter.co.uk/feed", Name: "Recruiter"},
		{URL: "https://www.personneltoday.com/feed/", Name: "Personnel Today"},
	},
	"insurance": {
		{URL: "https://www.insurancetimes.co.uk/rss", Name: "Insurance Times"},
		{URL: "https://www.insuranceage.co.uk/rss", Name: "Insurance Age"},
		{URL: "https://www.postonline.co.uk/rss", Name: "Post Magazine"},
	},
	"manufacturing": {
		{URL: "https://www.themanufacturer.com/feed/", Name: "The Manufacturer"},
		{URL: "https://www.machinery.co.uk/feed/", Name: "Machinery"},
		{URL: "https://www.engineeringnews.co.uk/feed/", Name: "Engineering News"},
	},
	"education": {
		{URL: "https://www.tes.com/rss", Name: "TES"},
		{URL: "https://www.schoolsweek.co.uk/feed/", Name: "Schools Week"},
		{URL: "https://www.bera.ac.uk/feed", Name: "BERA"},
	},
}

// FeedsForIndustry returns the curated feeds for an industry. Lookups are
// case-insensitive with substring fallback in both directions, so "Legal"
// matches "legal services" and "commercial property" matches "property".
func FeedsForIndustry(industry string) []IndustryFeed {
	normalized := strings.TrimSpace(strings.ToLower(industry))
	if normalized == "" {
		return nil
	}
	if feeds, ok := industryFeeds[normalized]; ok {
		return feeds
	}
	keys := make([]string, 0, len(industryFeeds))
	for key := range industryFeeds {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if strings.Contains(normalized, key) || strings.Contains(key, normalized) {
			return industryFeeds[key]
		}
	}
	return nil
}
