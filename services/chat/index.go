package chat

import (
	"sort"
	"strings"
)

// Document is one entry of the project knowledge base used as chat context.
type Document struct {
	Title string
	Body  string
}

// Index is a small in-memory keyword index over the knowledge base. Documents
// are scored by how many distinct query terms they contain.
type Index struct {
	docs []Document
}

// NewIndex builds an index over the given documents
func NewIndex(docs []Document) *Index {
	return &Index{docs: docs}
}

// Search returns up to limit documents matching the query, best first.
// Documents with no matching terms are excluded.
func (idx *Index) Search(query string, limit int) []Document {
	terms := tokenize(query)
	if len(terms) == 0 || limit <= 0 {
		return nil
	}

	type scored struct {
		doc   Document
		score int
	}

	var matches []scored
	for _, doc := range idx.docs {
		haystack := strings.ToLower(doc.Title + " " + doc.Body)
		score := 0
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, scored{doc: doc, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	result := make([]Document, len(matches))
	for i, m := range matches {
		result[i] = m.doc
	}
	return result
}

// tokenize lowercases and splits a query, dropping short stopword-like terms
func tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?\"'()")
		if len(f) < 3 {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// DefaultKnowledgeBase describes the platform's own modules, used as the chat
// context corpus.
func DefaultKnowledgeBase() []Document {
	return []Document{
		{
			Title: "AI providers",
			Body: "The platform integrates one AI provider per deployment, selected with the " +
				"AI_PROVIDER environment variable: huggingface, deepseek or openrouter. " +
				"Completions and embeddings are served through a single facade; there is no " +
				"runtime fallback between providers.",
		},
		{
			Title: "Chatbot",
			Body: "The chatbot answers questions about the project. It retrieves matching " +
				"knowledge base entries by keyword, assembles them into the prompt and asks " +
				"the active AI provider with a low temperature. Conversations are stored per session.",
		},
		{
			Title: "Smart paper",
			Body: "Research papers are submitted as markdown. Processing extracts LaTeX formula " +
				"blocks, stores them as snippets and produces a structured summary with abstract, " +
				"key findings and keywords. Papers can also be translated; formulas are protected " +
				"with placeholders during translation.",
		},
		{
			Title: "Vision",
			Body: "Images and videos can be registered by URL and analyzed. An analysis produces " +
				"a scene description, labels and a confidence score through the AI provider.",
		},
		{
			Title: "Audit",
			Body: "Every AI operation writes an audit log entry with the provider, model, token " +
				"usage and latency. Administrators can list the audit trail.",
		},
	}
}
