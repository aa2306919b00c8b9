// Package skills extracts known skill tokens from free text. The vocabulary
// is a fixed heuristic list; an optional LLM extractor can enrich it when an
// Ollama endpoint is configured.
package skills

import (
	"regexp"
	"strings"
)

// Vocabulary is the canonical list of recognized skill tokens. Extraction
// results use this casing and this order.
var Vocabulary = []string{
	"javascript", "typescript", "react", "node", "express", "mongodb", "sql",
	"python", "django", "flask", "aws", "docker", "kubernetes", "solidity",
	"ethers.js", "web3.js", "ui/ux", "figma", "next.js",
}

var patterns = compilePatterns()

func compilePatterns() []*regexp.Regexp {
	ps := make([]*regexp.Regexp, len(Vocabulary))
	for i, token := range Vocabulary {
		// a token counts only as a whole word: bounded by a non-letter or the
		// string edge, so "java" never fires inside "javascript"
		ps[i] = regexp.MustCompile(`(?i)(^|[^a-z])` + regexp.QuoteMeta(token) + `([^a-z]|$)`)
	}
	return ps
}

// Extract returns the vocabulary tokens present in text as whole words,
// case-insensitively, in vocabulary order. Pure and deterministic.
func Extract(text string) []string {
	normalized := strings.ToLower(text)
	var found []string
	for i, p := range patterns {
		if p.MatchString(normalized) {
			found = append(found, Vocabulary[i])
		}
	}
	return found
}
