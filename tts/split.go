package tts

import "strings"

// SplitText splits text into synthesis-sized parts, preferring sentence
// boundaries, then word boundaries, then hard cuts. maxLen <= 0 uses
// MaxPartLength. The concatenation of the parts always round-trips the
// trimmed input.
func SplitText(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = MaxPartLength
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	var current strings.Builder
	for _, sentence := range splitSentences(text) {
		for len(sentence) > maxLen {
			// A single oversized sentence: flush what we have, then cut it.
			if current.Len() > 0 {
				parts = append(parts, strings.TrimSpace(current.String()))
				current.Reset()
			}
			cut := lastSpaceBefore(sentence, maxLen)
			parts = append(parts, strings.TrimSpace(sentence[:cut]))
			sentence = strings.TrimSpace(sentence[cut:])
		}
		if current.Len() > 0 && current.Len()+1+len(sentence) > maxLen {
			parts = append(parts, strings.TrimSpace(current.String()))
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		parts = append(parts, strings.TrimSpace(current.String()))
	}
	return parts
}

// splitSentences cuts text after sentence-ending punctuation followed by
// whitespace. Newlines also end a sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		atEnd := (c == '.' || c == '!' || c == '?') && i+1 < len(text) && isSpace(text[i+1])
		if c == '\n' || atEnd {
			s := strings.TrimSpace(text[start : i+1])
			if s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// lastSpaceBefore returns a cut position at or before limit, preferring the
// last space so words stay intact.
func lastSpaceBefore(s string, limit int) int {
	if limit >= len(s) {
		return len(s)
	}
	for i := limit; i > 0; i-- {
		if isSpace(s[i]) {
			return i
		}
	}
	return limit
}
