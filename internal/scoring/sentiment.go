package scoring

import (
	"math"
	"strings"
)

// Analyzer computes a lexicon-based compound sentiment score, independent of
// the detractor classifier. Scores are normalized to roughly [-1, 1].
type Analyzer struct {
	lexicon map[string]float64
}

// NewAnalyzer creates an analyzer with the bundled general-purpose lexicon.
func NewAnalyzer() *Analyzer {
	return &Analyzer{lexicon: valenceLexicon}
}

const (
	negationFlip       = -0.74
	boosterStep        = 0.293
	exclamationBoost   = 0.292
	maxExclamations    = 4
	normalizationAlpha = 15.0
)

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "none": {}, "cannot": {},
	"dont": {}, "don't": {}, "cant": {}, "can't": {}, "wont": {}, "won't": {},
	"isnt": {}, "isn't": {}, "wasnt": {}, "wasn't": {}, "arent": {}, "aren't": {},
	"doesnt": {}, "doesn't": {}, "didnt": {}, "didn't": {}, "couldnt": {}, "couldn't": {},
	"wouldnt": {}, "wouldn't": {}, "neither": {}, "nor": {}, "hardly": {}, "barely": {},
}

var boosters = map[string]float64{
	"very": boosterStep, "extremely": boosterStep, "absolutely": boosterStep,
	"really": 0.267, "so": boosterStep, "totally": 0.267, "completely": 0.267,
	"incredibly": boosterStep, "super": boosterStep,
	"slightly": -boosterStep, "somewhat": -boosterStep, "marginally": -boosterStep,
}

// Compound returns the normalized compound polarity of text. Empty or fully
// neutral text scores 0.
func (a *Analyzer) Compound(text string) float64 {
	words := sentimentTokens(text)
	var sum float64
	for i, w := range words {
		valence, ok := a.lexicon[w]
		if !ok {
			continue
		}
		// Scan up to three preceding tokens for negators and boosters.
		for back := 1; back <= 3 && i-back >= 0; back++ {
			prev := words[i-back]
			if _, neg := negators[prev]; neg {
				valence *= negationFlip
				continue
			}
			if b, boost := boosters[prev]; boost {
				if valence < 0 {
					valence -= b
				} else {
					valence += b
				}
			}
		}
		sum += valence
	}
	if sum == 0 {
		return 0
	}

	if n := strings.Count(text, "!"); n > 0 {
		if n > maxExclamations {
			n = maxExclamations
		}
		emphasis := float64(n) * exclamationBoost
		if sum < 0 {
			sum -= emphasis
		} else {
			sum += emphasis
		}
	}
	return sum / math.Sqrt(sum*sum+normalizationAlpha)
}

func sentimentTokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || r == '\'')
	})
}
