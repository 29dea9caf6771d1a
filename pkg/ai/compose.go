package ai

// ComposeSessionContext merges a knowledge base's base prompt with the latest
// conversation summary into the instruction payload for the next streaming
// session. Pure: no I/O, no side effects. An empty summary returns the base
// prompt unchanged.
func ComposeSessionContext(basePrompt, summary string) string {
	if summary == "" {
		return basePrompt
	}
	return basePrompt + "\n\n" + summary
}
