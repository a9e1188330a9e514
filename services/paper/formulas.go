package paper

import (
	"fmt"
	"regexp"
	"strings"
)

// formulaPattern matches display-math blocks: $$ ... $$.
var formulaPattern = regexp.MustCompile(`(?s)\$\$(.+?)\$\$`)

// extractFormulas returns the LaTeX bodies of all display-math blocks in
// document order.
func extractFormulas(markdown string) []string {
	matches := formulaPattern.FindAllStringSubmatch(markdown, -1)
	formulas := make([]string, 0, len(matches))
	for _, m := range matches {
		formulas = append(formulas, strings.TrimSpace(m[1]))
	}
	return formulas
}

// maskFormulas replaces every display-math block with a [FORMULA_n]
// placeholder so translation cannot mangle the LaTeX. Returns the masked
// text and the blocks in placeholder order.
func maskFormulas(markdown string) (string, []string) {
	var blocks []string
	masked := formulaPattern.ReplaceAllStringFunc(markdown, func(block string) string {
		placeholder := fmt.Sprintf("[FORMULA_%d]", len(blocks))
		blocks = append(blocks, block)
		return placeholder
	})
	return masked, blocks
}

// restoreFormulas puts the original blocks back in place of their
// placeholders.
func restoreFormulas(text string, blocks []string) string {
	for i, block := range blocks {
		placeholder := fmt.Sprintf("[FORMULA_%d]", i)
		text = strings.Replace(text, placeholder, block, 1)
	}
	return text
}
