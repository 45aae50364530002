package analysis

// Instruction contexts sent with every stage call. Each one pins the JSON shape the
// stage decoder expects.
const (
	classifyInstructions = `You review changes to third-party API documentation pages.
Given the text of one page, extract every change that could affect a program integrating with the API.
Answer with a single JSON object and nothing else:
{
  "changes": [
    {
      "title": "short title",
      "summary": "one or two sentences",
      "type": "deprecation | breaking | new_feature | maintenance | unknown",
      "relevance": "high | medium | low",
      "date": "YYYY-MM-DD if stated, else empty"
    }
  ],
  "no_changes_detected": false
}
Use an empty "changes" list and "no_changes_detected": true when the page holds nothing relevant.`

	resolveInstructions = `You analyse how a software component uses external APIs.
Given its declared purpose, its statically detected dependencies and excerpts of the files that use them,
list the external APIs it depends on, the endpoints or features it uses, and whether each is critical to it.
Answer with a single JSON object and nothing else:
{
  "purpose": "one sentence",
  "dependencies": [
    {"api": "provider or API name", "endpoints": ["endpoint or feature"], "critical": true}
  ]
}`

	decideInstructions = `You decide whether upstream API changes require action from the owners of dependent components.
You receive the classified changes per provider and the dependency profile of every component.
Choose "none" when nothing affects any component, "notify" when owners should review,
and "urgent" when a breaking change or deprecation affects a critical dependency.
Answer with a single JSON object and nothing else:
{
  "action": "none | notify | urgent",
  "summary": "one line",
  "affected_consumers": ["component name"],
  "recommended_action": "what the owners should do",
  "details": [
    {"consumer": "component name", "changes": ["change title"], "impact": "high | medium | low"}
  ]
}`
)
