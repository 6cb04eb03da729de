package scanner

// DefaultExtract is the extractor used when none is configured. It takes
// the over-extraction approach: every maximal run of class-name bytes in
// the content becomes a candidate, deduplicated in first-seen order, and
// the consumer filters the candidates against its known utility set.
// Tokens without a single letter are dropped, which discards bare
// numbers and punctuation runs.
func DefaultExtract(_ string, content []byte) []string {
	var classes []string
	seen := make(map[string]struct{})

	start := -1
	hasLetter := false
	for i := 0; i <= len(content); i++ {
		if i < len(content) && isClassByte(content[i]) {
			if start < 0 {
				start = i
			}
			b := content[i]
			if (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') {
				hasLetter = true
			}
			continue
		}
		if start >= 0 {
			if hasLetter {
				tok := string(content[start:i])
				if _, dup := seen[tok]; !dup {
					seen[tok] = struct{}{}
					classes = append(classes, tok)
				}
			}
			start = -1
			hasLetter = false
		}
	}
	return classes
}

// isClassByte reports whether b can appear inside a class candidate.
// The set covers variant prefixes (hover:), fractions (w-1/2), arbitrary
// values (bg-[#fff]) and the important marker (!font-bold).
func isClassByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	}
	switch b {
	case '-', '_', ':', '/', '.', '[', ']', '%', '#', '!':
		return true
	}
	return false
}
