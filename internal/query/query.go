// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query builds the templated web search queries for each competitor
// detection method. It makes no network calls.
package query

import (
	"strings"

	"github.com/pdiddy/visibility-engine/pkg/types"
)

// Method identifies a competitor detection method.
type Method string

const (
	IndustryNews     Method = "industry-news"
	PublicDatabase   Method = "public-database"
	DirectCompetitor Method = "direct-competitor"
	MarketAnalysis   Method = "market-analysis"
	Wikipedia        Method = "wikipedia"
	Alternatives     Method = "alternatives"
	ReviewSite       Method = "review-site"
)

// templates holds the fixed query set per method. {company} and {industry}
// are substituted; an empty industry collapses to nothing.
var templates = map[Method][]string{
	IndustryNews: {
		"{company} competitors {industry} news",
		"{company} rivals {industry} industry news",
		"{company} vs competitors press release {industry}",
		"companies competing with {company} {industry} announcement",
		"top {industry} companies like {company} news",
	},
	PublicDatabase: {
		"{company} competitors crunchbase",
		"{company} similar companies owler",
		"{company} competitors zoominfo",
		"{company} top competitors craft.co",
		"{company} competitors cbinsights {industry}",
	},
	DirectCompetitor: {
		"{company} competitors",
		"{company} alternatives",
		"{company} vs",
		"companies similar to {company}",
		"{company} main rivals {industry}",
		"best {company} competitor {industry}",
	},
	MarketAnalysis: {
		"{industry} market leaders {company}",
		"{company} market share competitors",
		"{industry} competitive landscape {company}",
		"{company} industry analysis key players",
		"{industry} market report {company} competitors",
	},
	Wikipedia: {
		"{company} wikipedia",
		"site:wikipedia.org {company}",
		"{company} company history competitors wikipedia",
		"list of {industry} companies wikipedia",
		"{company} {industry} wikipedia",
	},
	Alternatives: {
		"best {company} alternatives",
		"{company} alternatives {industry}",
		"tools like {company}",
		"cheaper alternative to {company}",
		"{company} replacement {industry}",
	},
	ReviewSite: {
		"{company} competitors g2",
		"{company} alternatives capterra",
		"{company} vs trustradius",
		"{company} reviews compared {industry}",
		"{company} competitors gartner peer insights",
		"{industry} software reviews {company}",
	},
}

// coreMethods are run by every variant, in this order.
var coreMethods = []Method{IndustryNews, PublicDatabase, DirectCompetitor, MarketAnalysis, Wikipedia}

// Methods returns the ordered detection methods for a pipeline variant.
// The enhanced variant adds the alternatives and review-site methods.
func Methods(v types.Variant) []Method {
	out := append([]Method(nil), coreMethods...)
	if v == types.VariantEnhanced {
		out = append(out, Alternatives, ReviewSite)
	}
	return out
}

// TemplateCount returns the number of queries Generate produces for m.
func TemplateCount(m Method) int {
	return len(templates[m])
}

// Generate returns the method's queries for company and industry, in
// template order. The result has TemplateCount(m) entries for any non-empty
// company; unknown methods yield nil.
func Generate(m Method, company, industry string) []string {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil
	}
	r := strings.NewReplacer("{company}", company, "{industry}", strings.TrimSpace(industry))

	tmpls := templates[m]
	out := make([]string, 0, len(tmpls))
	for _, t := range tmpls {
		out = append(out, strings.Join(strings.Fields(r.Replace(t)), " "))
	}
	return out
}
