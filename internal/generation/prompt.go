// Package generation defines the synthesis prompt shared by all
// generation backends and the clients that execute it.
package generation

import "fmt"

// systemPrompt instructs the backend to produce a grounded, cited
// answer over the numbered sources.
const systemPrompt = `You are an expert research assistant that synthesizes information from multiple sources into clear, comprehensive answers.

When synthesizing information:
1. Lead with the most important insights that directly answer the question
2. Organize information logically with clear headings when helpful
3. Note any conflicting information between sources and explain the different viewpoints
4. Use citations [1], [2], etc. that correspond to the numbered sources
5. Keep the answer proportionate to the available evidence; do not pad
6. Write in a conversational but authoritative tone

Your goal is to save the reader time while giving them confidence in the information and the ability to verify it.`

// systemPromptNoSources is used when retrieval produced nothing.
const systemPromptNoSources = `You are an expert research assistant. No sources were retrieved for this question, so answer from your general knowledge. Begin by clearly stating that no sources were available and that the answer is not grounded in retrieved evidence. Keep the answer brief and do not fabricate citations.`

// Messages builds the system and user prompts for one synthesis call.
// The context block, when non-empty, is the frozen numbered source
// listing whose order defines the citation indices.
func Messages(question, contextBlock string) (system, user string) {
	if contextBlock == "" {
		return systemPromptNoSources, fmt.Sprintf("Research Question: %s", question)
	}
	user = fmt.Sprintf(`Research Question: %s

Sources Found:
%s

Please provide a comprehensive, well-researched answer based on these sources, with citations using the [1], [2], etc. format. If sources present different perspectives, acknowledge them. Focus on accuracy and clarity.`, question, contextBlock)
	return systemPrompt, user
}
