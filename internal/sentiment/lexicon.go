package sentiment

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// LexiconScorer scores text from a fixed word valence table, AFINN style:
// each known word carries a valence in [-5, 5] and the post score is the
// valence sum normalized by the number of matched words. Fully offline and
// deterministic.
type LexiconScorer struct {
	valences map[string]float64
}

// defaultValences is a compact valence table tuned for protest-discourse
// vocabulary on top of a general AFINN-style core.
var defaultValences = map[string]float64{
	// general positive
	"good": 3, "great": 3, "love": 3, "hope": 2, "win": 4, "won": 4,
	"peaceful": 2, "support": 2, "proud": 2, "brave": 3, "strong": 2,
	"free": 2, "freedom": 3, "justice": 3, "victory": 4, "unite": 2,
	"united": 2, "solidarity": 2, "celebrate": 3, "happy": 3, "best": 3,
	"amazing": 4, "beautiful": 3, "inspire": 2, "inspiring": 2, "thank": 2,
	"thanks": 2, "together": 1, "courage": 3, "courageous": 3, "heroes": 3,
	"hero": 3, "change": 1, "progress": 2,
	// general negative
	"bad": -3, "hate": -3, "worst": -3, "angry": -3, "anger": -3,
	"fear": -2, "afraid": -2, "corrupt": -4, "corruption": -4, "greed": -3,
	"violence": -3, "violent": -3, "killed": -5, "kill": -4, "death": -4,
	"dead": -4, "die": -4, "shot": -4, "teargas": -3, "tear": -1,
	"brutality": -4, "brutal": -4, "abduct": -4, "abducted": -4,
	"arrest": -3, "arrested": -3, "injustice": -4, "oppression": -4,
	"oppress": -4, "suffer": -3, "suffering": -3, "pain": -3, "cry": -2,
	"crying": -2, "shame": -3, "shameful": -3, "reject": -2, "rejected": -2,
	"lies": -3, "lie": -2, "betrayed": -4, "betrayal": -4, "tax": -1,
	"taxes": -1, "expensive": -2, "broke": -2, "poverty": -3, "poor": -2,
	"failed": -3, "failure": -3, "crisis": -3, "chaos": -3, "looting": -3,
	"wrong": -2, "sad": -2, "tragedy": -4, "tragic": -4, "murder": -5,
	"murdered": -5, "blood": -3, "bleeding": -3,
}

// negators flip the valence of the word that follows them.
var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "cannot": {}, "cant": {},
	"dont": {}, "wont": {}, "isnt": {}, "wasnt": {}, "without": {},
}

var wordRe = regexp.MustCompile(`[a-z']+`)

// NewLexiconScorer returns a scorer over the built-in valence table.
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{valences: defaultValences}
}

// NewLexiconScorerFromFile loads a YAML valence table (word -> valence in
// [-5, 5]) replacing the built-in one.
func NewLexiconScorerFromFile(path string) (*LexiconScorer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	var table map[string]float64
	if err := yaml.Unmarshal(b, &table); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("lexicon %s: empty valence table", path)
	}
	return &LexiconScorer{valences: table}, nil
}

func (s *LexiconScorer) Name() string { return "lexicon" }

// Score sums valences of matched words, flipping after a negator, and
// normalizes by matched-word count so the result stays in [-1, 1]. Text with
// no lexicon words scores 0.
func (s *LexiconScorer) Score(_ context.Context, text string) (float64, error) {
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	var sum float64
	var matched int
	negate := false
	for _, w := range words {
		w = strings.Trim(w, "'")
		if _, ok := negators[w]; ok {
			negate = true
			continue
		}
		v, ok := s.valences[w]
		if ok {
			if negate {
				v = -v
			}
			sum += v
			matched++
		}
		negate = false
	}
	if matched == 0 {
		return 0, nil
	}
	return Clamp(sum / (float64(matched) * 5)), nil
}
