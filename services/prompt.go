package services

// BuildPrompt wraps the retrieved label text and the user's question in the
// instruction sent as the single user message. Both are embedded verbatim.
func BuildPrompt(labelContext, question string) string {
	return "\nUse ONLY the following drug label information:\n\n" +
		labelContext +
		"\n\nQuestion: " + question + "\n"
}
