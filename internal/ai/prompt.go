package ai

import (
	"fmt"
	"strings"
)

// Output caps keep the generated map navigable.
const (
	maxCoreNodes  = 3
	maxMajorNodes = 10
	maxMinorNodes = 30
)

const mindMapSystemPrompt = `You are an assistant that converts a team's chat discussion into a structured mind map.
Your ONLY output is a single JSON object conforming to the requested schema. Do not wrap it in markdown code fences and do not add any explanatory text before or after the JSON.`

const recommendSystemPrompt = `You are an assistant that reviews a collaborative project's mind map against its recent chat discussion and recommends concrete improvements.
Consider: missing core/major/minor topics, nodes that are too many or too vague, discussion points from the chat that the map does not reflect yet.
Answer in plain Markdown text of at most 500 characters. Do not return JSON.`

func buildMindMapPrompt(existing []NodeSnapshot, msgs []ChatEntry) string {
	var b strings.Builder

	b.WriteString("Analyze the chat messages below and produce a mind map as JSON.\n\n")

	b.WriteString("Hierarchy levels:\n")
	b.WriteString("- \"core\": the central goal or topic of the discussion\n")
	b.WriteString("- \"major\": the main components or stages of the core topic\n")
	b.WriteString("- \"minor\": concrete details or ideas under a major topic\n\n")

	fmt.Fprintf(&b, `Constraints:
- Return ONLY valid JSON of the form {"nodes": [...], "links": [...]}; each node has "id", "node_type", "title", "description" and "connections" (a list of {"target_id": "..."}).
- node_type must be exactly one of "core", "major", "minor".
- Node ids must be unique, short and meaningful (e.g. "core-1", "major-2").
- Produce at most %d core, %d major and %d minor nodes.
- Every connections.target_id must be the id of a node that appears in this same response. Never reference an id you did not output.
- "links" may be left as an empty list; node connections are authoritative.
`, maxCoreNodes, maxMajorNodes, maxMinorNodes)

	b.WriteString("\nExisting mind map (update and restructure it freely; your response replaces it completely):\n")
	if len(existing) == 0 {
		b.WriteString("(no existing mind map)\n")
	}
	for _, n := range existing {
		fmt.Fprintf(&b, "- id: %s, title: %s, description: %s\n", n.ID, n.Title, n.Description)
	}

	b.WriteString("\nChat messages (the basis of the mind map):\n")
	for _, m := range msgs {
		fmt.Fprintf(&b, "[%s] %s\n", m.Author, m.Content)
	}

	b.WriteString("\nGenerate the mind map JSON now.")
	return b.String()
}

func buildRecommendPrompt(mapJSON string, recent []ChatEntry) string {
	var b strings.Builder

	b.WriteString("Current mind map structure:\n")
	b.WriteString(mapJSON)
	b.WriteString("\n\nRecent chat messages:\n")
	for _, m := range recent {
		fmt.Fprintf(&b, "[%s - %s] %s\n", m.Author, m.Timestamp.Format("15:04"), m.Content)
	}
	b.WriteString("\nBased on both, give concrete recommendations for improving the mind map, in at most 500 characters.")
	return b.String()
}
