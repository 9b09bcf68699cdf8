package extract

import "strings"

// DetectSector scores each sector's keyword set against the text and returns
// the best match. Ties keep the earlier sector in vocabulary order; empty
// text or no hits falls back to General Business.
func DetectSector(text string, vocab *Vocabulary) string {
	if text == "" {
		return GeneralSector
	}
	t := strings.ToLower(text)

	best := GeneralSector
	bestScore := 0
	for _, s := range vocab.Sectors {
		if len(s.Keywords) == 0 {
			continue
		}
		score := 0
		for _, kw := range s.Keywords {
			if strings.Contains(t, kw) {
				score++
			}
		}
		if score > bestScore {
			best = s.Name
			bestScore = score
		}
	}
	return best
}
