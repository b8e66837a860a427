package citation

import "strings"

// FastQueryCount is the number of battery questions asked in fast mode.
const FastQueryCount = 3

const defaultIndustry = "software"

var battery = []string{
	"What are the best {industry} tools available today?",
	"Which {industry} platforms do experts recommend?",
	"What are the leading companies in {industry}?",
	"Which {industry} solution offers the best value for money?",
	"What {industry} tools do small businesses use most?",
	"Compare the top {industry} platforms for enterprise teams.",
	"What are the most popular alternatives in the {industry} market?",
	"Which {industry} vendors are growing the fastest?",
	"What {industry} software would you recommend to a beginner?",
	"Who are the most trusted brands in {industry}?",
}

// QueryBattery returns the fixed question battery for industry. An empty
// industry is phrased as general software.
func QueryBattery(industry string) []string {
	industry = strings.TrimSpace(industry)
	if industry == "" {
		industry = defaultIndustry
	}
	out := make([]string, len(battery))
	for i, q := range battery {
		out[i] = strings.ReplaceAll(q, "{industry}", industry)
	}
	return out
}
