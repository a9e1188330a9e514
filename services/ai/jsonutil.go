package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Models fence JSON in ```json blocks or pad it with prose; extraction has to
// survive both.
var jsonFencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// buildSchemaPrompt appends the structured-output instruction to a prompt.
// The contract is strict: the model must answer with nothing but JSON that
// matches the supplied schema.
func buildSchemaPrompt(prompt string, schema *Schema) string {
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nRespond ONLY with valid JSON matching this schema")
	if schema.Name != "" {
		fmt.Fprintf(&b, " (%s)", schema.Name)
	}
	b.WriteString(":\n")
	b.Write(schema.Definition)
	if schema.Description != "" {
		b.WriteString("\n")
		b.WriteString(schema.Description)
	}
	b.WriteString("\nDo not include any text outside the JSON.")
	return b.String()
}

// extractJSON pulls a JSON object or array out of a model reply. It strips
// markdown fences first, then falls back to the outermost brace/bracket pair.
// The extracted payload must parse; otherwise the reply does not satisfy the
// schema contract.
func extractJSON(text string) (json.RawMessage, error) {
	candidate := strings.TrimSpace(text)

	if m := jsonFencePattern.FindStringSubmatch(candidate); m != nil {
		candidate = strings.TrimSpace(m[1])
	} else if !startsWithJSON(candidate) {
		candidate = outermostJSON(candidate)
	}

	if candidate == "" {
		return nil, fmt.Errorf("no JSON payload in response")
	}

	var payload json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	return payload, nil
}

func startsWithJSON(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

// outermostJSON returns the substring between the first opening brace or
// bracket and its matching closing counterpart at the end of the text.
func outermostJSON(s string) string {
	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return ""
	}
	var closer byte
	if s[start] == '{' {
		closer = '}'
	} else {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}
