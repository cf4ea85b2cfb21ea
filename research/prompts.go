package research

import (
	"fmt"
	"strings"
)

var summaryLengthGuidance = map[string]string{
	"short":  "1-2 paragraphs",
	"medium": "3-5 paragraphs",
	"long":   "comprehensive, 6+ paragraphs",
}

var summaryTypeGuidance = map[string]string{
	"general":    "overall summary focusing on the main contributions and findings",
	"methods":    "summary focusing on the methodology, experimental setup, and technical approaches",
	"results":    "summary focusing on the results, evaluations, and outcomes of the research",
	"background": "summary focusing on the background, related work, and context of the research",
}

const (
	methodologyQuery = "methodology experimental setup methods algorithm approach"
	claimsQuery      = "key findings results conclusions claims contributions"
	citationQuery    = "title authors publication"

	noAnswerReply = "I couldn't find relevant information to answer this question."
)

func ingestPrompt(queryText string) []Message {
	return []Message{
		SystemMessage(`Identify any document references in the query.
These could be filenames, arXiv IDs, DOIs, or other document identifiers.
Format your response as a comma-separated list of identifiers.
If there are none, respond with NONE.`),
		HumanMessage(queryText),
	}
}

func summaryPrompt(summaryType, length, context string) []Message {
	lengthText, ok := summaryLengthGuidance[length]
	if !ok {
		lengthText = summaryLengthGuidance["medium"]
	}
	typeText, ok := summaryTypeGuidance[summaryType]
	if !ok {
		typeText = summaryTypeGuidance["general"]
	}
	return []Message{
		SystemMessage(fmt.Sprintf(`You are a specialized academic summarization agent.
Create a %s %s of the academic content provided.
Focus on accuracy and capturing the essential information.`, lengthText, typeText)),
		HumanMessage("Here is the content to summarize:\n\n" + context),
	}
}

func methodologyPrompt(context string) []Message {
	return []Message{
		SystemMessage(`You are a specialized methodology extraction agent for academic papers.
Extract the following information from the provided text:
1. The overall research approach or methodology
2. Datasets used in the research
3. Algorithms or models implemented
4. Evaluation metrics used
5. Limitations mentioned about the methodology

Format your response as a structured list. If certain information is not present, indicate this.`),
		HumanMessage("Here is the content to analyze:\n\n" + context),
	}
}

const methodologySchema = `Parse the following methodology extraction into a structured format.
Extract exactly these fields:
- approach: The overall research approach
- datasets: List of datasets used
- algorithms: List of algorithms or models used
- evaluation_metrics: List of evaluation metrics
- limitations: List of methodology limitations

Format as JSON.`

func claimsPrompt(context string) []Message {
	return []Message{
		SystemMessage(`You are a specialized claim extraction agent for academic papers.
Extract the top 3-5 key claims or findings from the provided text.
For each claim, identify:
1. The claim statement
2. Supporting evidence from the text
3. A confidence score (0.0-1.0) based on the strength of evidence

Format your response as a list of claims with these components.`),
		HumanMessage("Here is the content to analyze:\n\n" + context),
	}
}

const claimsSchema = `Parse the following claim extraction into a structured format.
Format each claim as an object with these fields:
- claim: The claim statement
- evidence: Supporting evidence text
- confidence: A number from 0.0 to 1.0

Format as a JSON array of claim objects.`

func comparisonPrompt(context string) []Message {
	return []Message{
		SystemMessage(`You are a specialized comparison agent for academic papers.
Compare the provided documents and identify:
1. Key similarities in approach, methods, or findings
2. Key differences in approach, methods, or findings
3. A comparison of methodologies used
4. A comparison of results and conclusions

Be specific and reference the document identifiers in your comparison.`),
		HumanMessage(context),
	}
}

const comparisonSchema = `Parse the following comparison into a structured format.
Extract these components:
- similarities: List of key similarities
- differences: List of key differences
- methodology_comparison: Comparison of methodologies
- result_comparison: Comparison of results

Format as JSON.`

func citationPrompt(style string, doc Document, context string) []Message {
	var known strings.Builder
	if doc.Title != "" {
		fmt.Fprintf(&known, "Title: %s\n", doc.Title)
	}
	if len(doc.Authors) > 0 {
		fmt.Fprintf(&known, "Authors: %s\n", strings.Join(doc.Authors, ", "))
	}
	if doc.Source != "" {
		fmt.Fprintf(&known, "Source: %s\n", doc.Source)
	}

	human := "Here is text from the document:\n\n" + context
	if known.Len() > 0 {
		human = "Known metadata:\n" + known.String() + "\n" + human
	}
	return []Message{
		SystemMessage(fmt.Sprintf(`You are a citation generation agent.
Based on the provided text from an academic document, generate a %s style citation.
If information is missing, make reasonable assumptions but indicate uncertainty.`, style)),
		HumanMessage(human),
	}
}

func answerPrompt(question, context string, refs []string) []Message {
	return []Message{
		SystemMessage(`You are a specialized research question answering agent.
Answer the question based solely on the provided context.
Be specific and cite the relevant documents using [Document ID] notation.
If the context doesn't contain enough information to answer, say so clearly.`),
		HumanMessage(fmt.Sprintf("Question: %s\n\nContext information:\n%s\n\nDocument references:\n%s",
			question, context, strings.Join(refs, ", "))),
	}
}

func literatureReviewPrompt(focus, context string) []Message {
	focusText := ""
	if focus != "" {
		focusText = " with a focus on " + focus
	}
	return []Message{
		SystemMessage(fmt.Sprintf(`You are a specialized literature review agent.
Generate a comprehensive literature review of the provided documents%s.
Include:
1. An overview of the field and research questions
2. Analysis of methodologies used across papers
3. Synthesis of key findings and claims
4. Identification of research gaps or contradictions
5. Suggestions for future research directions

Reference specific documents using [Document ID] notation.`, focusText)),
		HumanMessage(context),
	}
}

func routerPrompt(queryText, currentState string, trace []Message) []Message {
	var sb strings.Builder
	sb.WriteString("You are the controller for a research assistant agent system.\n")
	sb.WriteString("Your job is to determine which action should be taken next based on the current query and state.\n")
	sb.WriteString("Choose from the following actions:\n")
	for _, a := range Actions {
		fmt.Fprintf(&sb, "- %s: %s\n", a, a.Description())
	}
	sb.WriteString("\nIf all relevant actions have been completed, select 'finalize' to finish the workflow.\n")
	sb.WriteString("You must not repeat actions that have already been completed unless necessary.")

	messages := make([]Message, 0, len(trace)+2)
	messages = append(messages, SystemMessage(sb.String()))
	messages = append(messages, trace...)
	messages = append(messages, HumanMessage(fmt.Sprintf(`Based on the above conversation and current state, what should be the next action?
Current query: %s
Current state: %s

Respond with just the action name from the list above.`, queryText, currentState)))
	return messages
}

func finalizePrompt(queryText, digest string) []Message {
	return []Message{
		SystemMessage(`You are an academic research assistant providing final answers to user queries.
Synthesize all the information gathered to provide a comprehensive, well-structured response.
Be specific and cite documents when appropriate.
Ensure your answer directly addresses the user's original query.`),
		HumanMessage(fmt.Sprintf(`Original Query: %s

Information gathered:
%s

Based on all this information, provide a complete and coherent response to the original query.`, queryText, digest)),
	}
}

func joinChunks(chunks []Chunk) string {
	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}
	return strings.Join(texts, "\n\n")
}
