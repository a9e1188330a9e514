package chat

import (
	"fmt"
	"strings"
)

// systemPrompt frames the assistant as a guide to the platform itself.
const systemPrompt = `You are the assistant for the DAEMON-ONE media platform.
You answer questions about the project: its features, its modules and how to use them.
Answer based on the provided context. If the context does not cover the question,
say so briefly instead of inventing an answer. Keep answers short and concrete.`

// buildAnswerPrompt assembles the full prompt for one question: system
// framing, retrieved context blocks, then the question.
func buildAnswerPrompt(question string, contextDocs []Document) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n")

	if len(contextDocs) > 0 {
		b.WriteString("Context:\n")
		for _, doc := range contextDocs {
			fmt.Fprintf(&b, "[%s]\n%s\n\n", doc.Title, doc.Body)
		}
	}

	fmt.Fprintf(&b, "Question: %s\nAnswer:", question)
	return b.String()
}
