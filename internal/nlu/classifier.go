// Package nlu provides the intent-classification collaborator consumed
// by the conversation engine: a naive-Bayes text classifier trained at
// construction on a small fixed corpus, plus rule-based entity
// extraction for location mentions.
package nlu

import (
	"strings"
	"unicode"

	"github.com/jbrukh/bayesian"

	"github.com/Lucifer12122001/PAL/internal/domain"
)

// EntityType selects which entity kinds ExtractEntities should look for.
type EntityType string

// EntityLocation matches geopolitical/location mentions (cities, regions).
const EntityLocation EntityType = "location"

// Classifier maps raw command text to a symbolic intent and extracts
// typed entities. Implementations must be safe for concurrent use.
type Classifier interface {
	Classify(text string) domain.Intent
	ExtractEntities(text string, types []EntityType) []string
}

// trainingCorpus is the labeled utterance set the classifier learns from.
var trainingCorpus = []struct {
	text   string
	intent domain.Intent
}{
	{"hello there", domain.IntentGreet},
	{"hi", domain.IntentGreet},
	{"greetings", domain.IntentGreet},
	{"what is the time now", domain.IntentGetTime},
	{"tell me the current time", domain.IntentGetTime},
	{"what is the weather in London", domain.IntentGetWeather},
	{"how is the climate in Paris", domain.IntentGetWeather},
	{"how about tomorrow", domain.IntentContextualFollowup},
	{"how about there", domain.IntentContextualFollowup},
	{"open google", domain.IntentOpenApp},
	{"launch google", domain.IntentOpenApp},
	{"P.A.L Update yourself", domain.IntentUpdateSelf},
	{"run update", domain.IntentUpdateSelf},
	{"install new code", domain.IntentUpdateSelf},
	{"my favorite city is tokyo", domain.IntentSetPreference},
	{"remember my name is dave", domain.IntentSetPreference},
	{"i like pizza", domain.IntentSetPreference},
	{"bye", domain.IntentExit},
	{"exit the program", domain.IntentExit},
	{"quit assistant", domain.IntentExit},
}

// locationGazetteer lists known city names, lowercased. Multi-word names
// are matched as phrases against the lowercased input.
var locationGazetteer = []string{
	"london", "paris", "tokyo", "berlin", "madrid", "rome", "moscow",
	"chennai", "mumbai", "delhi", "bangalore", "kolkata", "hyderabad",
	"new york", "los angeles", "san francisco", "chicago", "toronto",
	"sydney", "melbourne", "singapore", "dubai", "cairo", "beijing",
	"shanghai", "seoul", "amsterdam", "lisbon", "oslo", "stockholm",
}

// locationPrepositions precede a location mention in free text
// ("weather in Tokyo", "climate at Oslo").
var locationPrepositions = map[string]struct{}{
	"in": {}, "at": {}, "for": {}, "near": {},
}

// BayesClassifier is the in-process Classifier implementation.
// Construction trains the model; afterwards all methods are read-only
// and safe for concurrent use.
type BayesClassifier struct {
	model   *bayesian.Classifier
	classes []bayesian.Class
	vocab   map[string]struct{}
}

// NewBayesClassifier trains a classifier on the fixed corpus.
func NewBayesClassifier() *BayesClassifier {
	var classes []bayesian.Class
	seen := make(map[domain.Intent]struct{})
	for _, sample := range trainingCorpus {
		if _, ok := seen[sample.intent]; ok {
			continue
		}
		seen[sample.intent] = struct{}{}
		classes = append(classes, bayesian.Class(sample.intent))
	}

	model := bayesian.NewClassifier(classes...)
	vocab := make(map[string]struct{})
	for _, sample := range trainingCorpus {
		tokens := tokenize(sample.text)
		model.Learn(tokens, bayesian.Class(sample.intent))
		for _, tok := range tokens {
			vocab[tok] = struct{}{}
		}
	}

	return &BayesClassifier{model: model, classes: classes, vocab: vocab}
}

// Classify maps text onto the closed intent set. Input sharing no
// vocabulary with the corpus, or scoring without a unique winner,
// degrades to IntentUnknown.
func (c *BayesClassifier) Classify(text string) domain.Intent {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return domain.IntentUnknown
	}

	known := false
	for _, tok := range tokens {
		if _, ok := c.vocab[tok]; ok {
			known = true
			break
		}
	}
	if !known {
		return domain.IntentUnknown
	}

	_, idx, strict := c.model.LogScores(tokens)
	if !strict || idx < 0 || idx >= len(c.classes) {
		return domain.IntentUnknown
	}
	return domain.ParseIntent(string(c.classes[idx]))
}

// ExtractEntities returns entity mentions of the requested types found
// in the text, title-cased, in order of appearance without duplicates.
func (c *BayesClassifier) ExtractEntities(text string, types []EntityType) []string {
	var entities []string
	for _, typ := range types {
		if typ == EntityLocation {
			entities = append(entities, extractLocations(text)...)
		}
	}
	return dedupe(entities)
}

func extractLocations(text string) []string {
	lower := strings.ToLower(text)
	var found []string

	// Gazetteer phrases first: highest-confidence matches.
	for _, place := range locationGazetteer {
		if containsPhrase(lower, place) {
			found = append(found, titleCase(place))
		}
	}

	// Heuristic fallback: a capitalized word after a location
	// preposition, or capitalized mid-sentence.
	words := strings.Fields(text)
	for i, word := range words {
		cleaned := strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		if cleaned == "" || !unicode.IsUpper([]rune(cleaned)[0]) {
			continue
		}
		if i == 0 {
			continue // sentence-initial capitalization carries no signal
		}
		prev := strings.ToLower(strings.TrimFunc(words[i-1], func(r rune) bool {
			return !unicode.IsLetter(r)
		}))
		if _, ok := locationPrepositions[prev]; ok {
			found = append(found, titleCase(cleaned))
		}
	}

	return found
}

// containsPhrase reports whether phrase occurs in lower on word
// boundaries.
func containsPhrase(lower, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		startOK := start == 0 || !unicode.IsLetter(rune(lower[start-1]))
		endOK := end == len(lower) || !unicode.IsLetter(rune(lower[end]))
		if startOK && endOK {
			return true
		}
		idx = start + 1
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func dedupe(values []string) []string {
	if len(values) < 2 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
