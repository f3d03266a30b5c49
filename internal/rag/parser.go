package rag

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/soalgen/soalgen/internal/model"
)

const rawTailLimit = 500

var fencedJSONRe = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n```")

// ParseResponse recovers a GenerationResult from raw LLM text. The text may
// be clean JSON, JSON fenced in a markdown block, JSON surrounded by prose,
// or JSON truncated mid-structure. Strategies run in order of increasing
// aggressiveness; the first one producing a parseable, non-empty object
// wins. When every strategy fails the caller gets the standard error shape
// with the tail of the raw text attached for diagnosis.
func ParseResponse(text string) model.GenerationResult {
	strategies := []func(string) (model.GenerationResult, bool){
		tryDirectParse,
		tryFencedParse,
		tryBraceExtraction,
		tryRepairParse,
	}
	for _, strategy := range strategies {
		if result, ok := strategy(text); ok {
			return result
		}
	}
	result := model.ErrorResult("failed to parse JSON from LLM response")
	result.Metadata.RawResponseTail = tail(text, rawTailLimit)
	return result
}

func tryDirectParse(text string) (model.GenerationResult, bool) {
	return decodeResult([]byte(strings.TrimSpace(text)))
}

func tryFencedParse(text string) (model.GenerationResult, bool) {
	match := fencedJSONRe.FindStringSubmatch(text)
	if match == nil {
		return model.GenerationResult{}, false
	}
	return decodeResult([]byte(strings.TrimSpace(match[1])))
}

// tryBraceExtraction scans forward from the first '{' tracking nesting
// depth and parses the substring ending where the depth returns to zero.
func tryBraceExtraction(text string) (model.GenerationResult, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return model.GenerationResult{}, false
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return decodeResult([]byte(text[start : i+1]))
			}
		}
	}
	return model.GenerationResult{}, false
}

// tryRepairParse closes whatever the model left open. The text is scanned
// tracking string state and a stack of open delimiters; a tail cut
// mid-string gets its closing quote, then the remaining delimiters are
// closed innermost first.
func tryRepairParse(text string) (model.GenerationResult, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return model.GenerationResult{}, false
	}
	part := text[start:]

	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(part); i++ {
		ch := part[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{', '[':
			if !inString {
				stack = append(stack, ch)
			}
		case '}':
			if !inString && len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if !inString && len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var repaired strings.Builder
	if inString {
		repaired.WriteString(part)
		repaired.WriteByte('"')
	} else {
		// A cut right after an element leaves a dangling comma that
		// would invalidate the closed structure.
		repaired.WriteString(strings.TrimRight(strings.TrimSpace(part), ","))
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			repaired.WriteByte('}')
		} else {
			repaired.WriteByte(']')
		}
	}
	return decodeResult([]byte(repaired.String()))
}

func decodeResult(data []byte) (model.GenerationResult, bool) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil || len(probe) == 0 {
		return model.GenerationResult{}, false
	}
	var result model.GenerationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return model.GenerationResult{}, false
	}
	if result.Questions == nil {
		result.Questions = []model.QA{}
	}
	return result, true
}

func tail(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[len(runes)-limit:])
}
