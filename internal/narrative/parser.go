package narrative

import "encoding/json"

// extractRecommendations pulls the first well-formed JSON array out of
// free-form model output and decodes it. Model responses routinely
// wrap the array in prose or markdown fences, so correctness here is
// tied to output formatting; keeping the extraction in one place makes
// format drift a localized risk. Returns false when no usable array is
// present.
func extractRecommendations(text string) ([]Recommendation, bool) {
	raw, ok := firstJSONArray(text)
	if !ok {
		return nil, false
	}

	var recs []Recommendation
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, false
	}

	// Drop entries with no title; a well-formed but empty array is as
	// useless as no array.
	kept := recs[:0]
	for _, r := range recs {
		if r.Title != "" {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return nil, false
	}
	return kept, true
}

// firstJSONArray scans for the first balanced top-level array,
// tracking string literals and escapes so brackets inside values do
// not end the match early.
func firstJSONArray(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if start == -1 {
			if c == '[' {
				start = i
				depth = 1
			}
			continue
		}
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '[':
			if !inString {
				depth++
			}
		case ']':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
	}
	return "", false
}
