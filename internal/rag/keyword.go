package rag

import "strings"

// ExtractPrimaryKeyword picks a single representative term from a query.
// Queries of two tokens or fewer are returned as-is. Longer queries are
// scored by term frequency over unigrams and bigrams of the query itself;
// ties go to the earliest occurrence. The keyword is only a relevance
// signal for reranking, it never has to be linguistically exact.
func ExtractPrimaryKeyword(text string) string {
	tokens := strings.Fields(text)
	if len(tokens) <= 2 {
		return text
	}

	terms := buildTerms(tokens)
	if len(terms) == 0 {
		return longestToken(tokens, text)
	}

	counts := make(map[string]int, len(terms))
	firstSeen := make(map[string]int, len(terms))
	for i, term := range terms {
		counts[term]++
		if _, ok := firstSeen[term]; !ok {
			firstSeen[term] = i
		}
	}

	best := ""
	bestCount := 0
	for _, term := range terms {
		count := counts[term]
		if count > bestCount {
			best = term
			bestCount = count
			continue
		}
		if count == bestCount && firstSeen[term] < firstSeen[best] {
			best = term
		}
	}
	if best == "" {
		return longestToken(tokens, text)
	}
	return best
}

// KeywordMatchScore is the lexical relevance of a chunk: occurrence count
// of the keyword divided by the chunk's word count. The epsilon keeps the
// division defined for empty chunks.
func KeywordMatchScore(content, keyword string) float64 {
	if keyword == "" || content == "" {
		return 0
	}
	count := strings.Count(strings.ToLower(content), strings.ToLower(keyword))
	words := len(strings.Fields(content))
	return float64(count) / (float64(words) + 1e-5)
}

func buildTerms(tokens []string) []string {
	normalized := make([]string, 0, len(tokens))
	for _, token := range tokens {
		clean := normalizeToken(token)
		if clean == "" {
			continue
		}
		normalized = append(normalized, clean)
	}
	terms := make([]string, 0, len(normalized)*2)
	terms = append(terms, normalized...)
	for i := 0; i+1 < len(normalized); i++ {
		terms = append(terms, normalized[i]+" "+normalized[i+1])
	}
	return terms
}

func normalizeToken(token string) string {
	lower := strings.ToLower(token)
	var b strings.Builder
	for _, r := range lower {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func longestToken(tokens []string, fallback string) string {
	best := ""
	for _, token := range tokens {
		if len(token) > len(best) {
			best = token
		}
	}
	if best == "" {
		return fallback
	}
	return best
}
