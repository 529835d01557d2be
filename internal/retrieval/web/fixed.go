package web

import (
	"context"
	"fmt"
	"strings"

	"ask/internal/domain"
)

// FixedSource serves results from an in-memory topic table. It stands
// in for live web search in demo mode and in tests; queries that match
// no topic get generic placeholder results so the pipeline always has
// something to synthesize from.
type FixedSource struct {
	maxResults int
	topics     []demoTopic
}

// demoTopic pairs a match keyword with its canned results. Topics are
// kept in a slice so matching order is fixed; a question mentioning
// several topics always resolves to the first declared one.
type demoTopic struct {
	keyword  string
	snippets []domain.Snippet
}

// NewFixedSource creates a demo source with the built-in topic table.
func NewFixedSource(maxResults int) *FixedSource {
	if maxResults <= 0 {
		maxResults = 8
	}
	return &FixedSource{maxResults: maxResults, topics: demoTopics()}
}

// Name identifies this source in logs and merge ordering.
func (s *FixedSource) Name() string { return "web-demo" }

// Search matches the first topic keyword contained in the question.
func (s *FixedSource) Search(ctx context.Context, question string) ([]domain.Snippet, error) {
	q := strings.ToLower(question)
	var results []domain.Snippet
	for _, topic := range s.topics {
		if strings.Contains(q, topic.keyword) {
			results = append(results, topic.snippets...)
			break
		}
	}
	if results == nil {
		results = genericResults(question)
	}
	if len(results) > s.maxResults {
		results = results[:s.maxResults]
	}
	return results, nil
}

func demoTopics() []demoTopic {
	return []demoTopic{
		{keyword: "climate change", snippets: []domain.Snippet{
			{
				Title:          "Climate Change Evidence and Impacts | NASA",
				SourceLocation: "https://climate.nasa.gov/effects/",
				Text:           "Climate change is causing measurable changes to Earth's systems. Scientists have been tracking these changes for decades, documenting rising temperatures, melting ice sheets, and changing precipitation patterns that affect every corner of our planet.",
				OriginDomain:   "climate.nasa.gov",
			},
			{
				Title:          "What is Climate Change? | United Nations",
				SourceLocation: "https://www.un.org/en/climatechange/what-is-climate-change",
				Text:           "Climate change refers to long-term shifts in temperatures and weather patterns. While climate changes may be natural, since the 1800s, human activities have been the main driver of climate change, primarily due to burning fossil fuels.",
				OriginDomain:   "un.org",
			},
			{
				Title:          "Climate Change Impacts on Human Health | EPA",
				SourceLocation: "https://www.epa.gov/climate-impacts",
				Text:           "Climate change impacts human health and wellbeing through more extreme weather events and wildfires, decreased air quality, and diseases transmitted by insects, food, and water. Understanding these connections helps us prepare and adapt.",
				OriginDomain:   "epa.gov",
			},
		}},
		{keyword: "artificial intelligence", snippets: []domain.Snippet{
			{
				Title:          "What is Artificial Intelligence (AI)? | IBM",
				SourceLocation: "https://www.ibm.com/topics/artificial-intelligence",
				Text:           "Artificial intelligence leverages computers and machines to mimic the problem-solving and decision-making capabilities of the human mind. Modern AI systems can learn, reason, and even understand natural language in ways that seemed impossible just decades ago.",
				OriginDomain:   "ibm.com",
			},
			{
				Title:          "Artificial Intelligence | Stanford HAI",
				SourceLocation: "https://hai.stanford.edu/what-ai",
				Text:           "AI is a broad field of computer science concerned with building smart machines capable of performing tasks that typically require human intelligence. From healthcare to transportation, AI is revolutionizing how we solve complex problems.",
				OriginDomain:   "stanford.edu",
			},
			{
				Title:          "The Future of AI: Trends and Predictions for 2025",
				SourceLocation: "https://www.weforum.org/agenda/2025/ai-trends",
				Text:           "As we move through 2025, artificial intelligence continues to evolve rapidly. From generative AI to autonomous systems, we're seeing unprecedented advances that are reshaping industries and creating new possibilities for human-AI collaboration.",
				OriginDomain:   "weforum.org",
			},
		}},
		{keyword: "software engineering job market", snippets: []domain.Snippet{
			{
				Title:          "State of the Software Engineering Job Market in 2025",
				SourceLocation: "https://newsletter.pragmaticengineer.com/p/software-engineering-job-market-2025",
				Text:           "The 2025 job market for software engineering is stabilizing after recent turbulence, but it remains highly competitive and focuses more on experienced and specialized talent, especially in AI, cloud, and infrastructure roles.",
				OriginDomain:   "newsletter.pragmaticengineer.com",
			},
			{
				Title:          "Software Engineer Job Market 2025: Recovery in Sight?",
				SourceLocation: "https://distantjob.com/blog/software-engineer-job-market-2025/",
				Text:           "Job openings remain below pre-pandemic highs, but the market is seeing a gradual rebound, with current openings about 37% higher than their lowest point in recent years. Remote work opportunities continue to expand.",
				OriginDomain:   "distantjob.com",
			},
			{
				Title:          "Software Developer Salary and Demand Trends (2025)",
				SourceLocation: "https://stackoverflow.blog/2025/developer-trends",
				Text:           "Software development roles continue to be in demand, but companies are more selective and prioritizing senior developers with specialized skills. The rise of AI tools is changing how developers work, creating new opportunities rather than replacing jobs.",
				OriginDomain:   "stackoverflow.blog",
			},
		}},
	}
}

func genericResults(question string) []domain.Snippet {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(question)), " ", "-")
	return []domain.Snippet{
		{
			Title:          fmt.Sprintf("Comprehensive Research on %q", question),
			SourceLocation: "https://research.example.com/topics/" + slug,
			Text:           fmt.Sprintf("This is a simulated search result for your query about %s. In a live configuration this would be replaced with real, up-to-date information from authoritative sources across the web.", question),
			OriginDomain:   "research.example.com",
		},
		{
			Title:          fmt.Sprintf("%s - Latest Updates and Analysis", question),
			SourceLocation: "https://news.example.com/articles/" + slug,
			Text:           fmt.Sprintf("Stay informed about the latest developments in %s. This placeholder demonstrates how the search system finds current news, expert analysis, and authoritative sources.", question),
			OriginDomain:   "news.example.com",
		},
	}
}
