// Package retrieval implements the query-time pipeline: intent
// classification (§4.H), scope selection (§4.I), multi-index fan-out
// (§4.J), reciprocal-rank-fusion with consensus boosting (§4.K), and
// token-budget context packing (§4.L).
package retrieval

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Intent is the classified purpose behind a query: a soft probability
// distribution over these five classes, each carrying its own index
// weight profile and cutoff in fusion.go (§4.H).
type Intent string

const (
	IntentSymbol   Intent = "symbol"
	IntentFlow     Intent = "flow"
	IntentConcept  Intent = "concept"
	IntentCode     Intent = "code"
	IntentBalanced Intent = "balanced"
)

// pattern is one weighted regular expression contributing evidence toward
// an Intent, generalizing a hand-rolled keyword scan into a scored
// accumulator the way a production classifier degrades gracefully on
// queries it hasn't seen verbatim (§4.H "weighted-pattern accumulator").
type pattern struct {
	re     *regexp.Regexp
	intent Intent
	weight float64
}

var patterns = []pattern{
	{regexp.MustCompile(`(?i)\bwhere (is|are)\b`), IntentSymbol, 0.6},
	{regexp.MustCompile(`(?i)\bdefin(e|ition|ed)\b`), IntentSymbol, 0.6},
	{regexp.MustCompile(`(?i)\bdeclar(e|ation|ed)\b`), IntentSymbol, 0.5},
	{regexp.MustCompile(`(?i)\bfind\b`), IntentSymbol, 0.3},

	{regexp.MustCompile(`(?i)\bhow does\b`), IntentConcept, 0.6},
	{regexp.MustCompile(`(?i)\bexplain\b`), IntentConcept, 0.6},
	{regexp.MustCompile(`(?i)\boverview\b`), IntentConcept, 0.5},
	{regexp.MustCompile(`(?i)\barchitecture\b`), IntentConcept, 0.5},

	{regexp.MustCompile(`(?i)\bwho calls\b`), IntentFlow, 0.7},
	{regexp.MustCompile(`(?i)\bcallers? of\b`), IntentFlow, 0.7},
	{regexp.MustCompile(`(?i)\bimpact of\b`), IntentFlow, 0.6},
	{regexp.MustCompile(`(?i)\btrace\b`), IntentFlow, 0.5},
	{regexp.MustCompile(`(?i)\bcall(s|ed|ing)? (by|from)\b`), IntentFlow, 0.5},

	{regexp.MustCompile(`(?i)\b(implement|write|generate)\b`), IntentCode, 0.5},
	{regexp.MustCompile(`(?i)\b(bug|fail(s|ing|ure)?|crash(es|ing)?|error|exception|panic)\b`), IntentCode, 0.5},
	{regexp.MustCompile(`(?i)\b(add|remove|refactor|rename|fix|change)\b`), IntentCode, 0.4},
}

// questionWordsRe, flowPhraseRe, and shortIdentRe back §4.H's bespoke
// heuristic adjustments layered on top of the regex-rule accumulator.
var (
	questionWordsRe = regexp.MustCompile(`(?i)\b(how|what|why)\b`)
	flowPhraseRe    = regexp.MustCompile(`(?i)\bfrom\s+\S+\s+to\s+\S+\b`)
	shortIdentRe    = regexp.MustCompile(`^[\w.]+$`)
	fileExtRe       = regexp.MustCompile(`\.(go|py|js|jsx|ts|tsx|java|rb|rs|c|cpp|h|hpp)\b`)
)

// Classification is the result of Classify: the winning Intent, the full
// softmax-normalized probability distribution, and the three hint
// categories the scope selector (§4.I) and fusion's post-boost (§4.K)
// consume.
type Classification struct {
	Intent      Intent
	Scores      map[Intent]float64
	SymbolNames []string
	FilePaths   []string
	ModulePaths []string
}

// Classify scores query against every weighted pattern, layers on the
// heuristic adjustments spec §4.H names explicitly, and applies a
// temperature-1 softmax so the result is a proper probability
// distribution rather than raw unbounded weights.
func Classify(query string) Classification {
	raw := map[Intent]float64{
		IntentSymbol:   0.0,
		IntentFlow:     0.0,
		IntentConcept:  0.0,
		IntentCode:     0.0,
		IntentBalanced: 0.1,
	}
	for _, p := range patterns {
		if p.re.MatchString(query) {
			raw[p.intent] += p.weight
		}
	}

	tokens := strings.Fields(query)
	if len(tokens) <= 2 && shortIdentRe.MatchString(strings.TrimSpace(query)) {
		raw[IntentSymbol] += 0.7
	}
	if questionWordsRe.MatchString(query) {
		raw[IntentConcept] += 0.3
	}
	if fileExtRe.MatchString(query) {
		raw[IntentCode] += 0.4
	}
	if flowPhraseRe.MatchString(query) {
		raw[IntentFlow] += 0.5
	}
	if len(tokens) > 8 {
		raw[IntentConcept] += 0.3
	}

	scores := softmax(raw)
	best := IntentBalanced
	bestScore := -1.0
	for _, intent := range []Intent{IntentSymbol, IntentFlow, IntentConcept, IntentCode, IntentBalanced} {
		if scores[intent] > bestScore {
			best = intent
			bestScore = scores[intent]
		}
	}

	symbolNames, filePaths, modulePaths := extractHints(tokens)
	return Classification{
		Intent:      best,
		Scores:      scores,
		SymbolNames: symbolNames,
		FilePaths:   filePaths,
		ModulePaths: modulePaths,
	}
}

func softmax(raw map[Intent]float64) map[Intent]float64 {
	maxV := math.Inf(-1)
	for _, v := range raw {
		if v > maxV {
			maxV = v
		}
	}
	sum := 0.0
	exp := make(map[Intent]float64, len(raw))
	for k, v := range raw {
		e := math.Exp(v - maxV)
		exp[k] = e
		sum += e
	}
	out := make(map[Intent]float64, len(raw))
	for k, v := range exp {
		out[k] = v / sum
	}
	return out
}

var (
	camelCaseRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*[A-Z][a-zA-Z0-9]*$`)
	snakeCaseRe = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)+$`)
	dottedRe    = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)+$`)
)

// extractHints implements §4.H's one-pass hint extraction: CamelCase and
// snake_case tokens are symbol_names, tokens containing a recognized
// source extension are file_paths, and dotted lowercase tokens are
// module_paths. A token can only land in one category, checked in that
// priority order (file-extension hint beats the dotted-module check,
// which would otherwise also match "pkg/mod.py").
func extractHints(tokens []string) (symbolNames, filePaths, modulePaths []string) {
	seenSym, seenFile, seenMod := map[string]bool{}, map[string]bool{}, map[string]bool{}
	for _, raw := range tokens {
		tok := strings.Trim(raw, "`'\",.;:()[]{}?!")
		if tok == "" {
			continue
		}
		switch {
		case fileExtRe.MatchString(tok):
			if !seenFile[tok] {
				seenFile[tok] = true
				filePaths = append(filePaths, tok)
			}
		case camelCaseRe.MatchString(tok) || snakeCaseRe.MatchString(tok):
			if !seenSym[tok] {
				seenSym[tok] = true
				symbolNames = append(symbolNames, tok)
			}
		case dottedRe.MatchString(tok):
			if !seenMod[tok] {
				seenMod[tok] = true
				modulePaths = append(modulePaths, tok)
			}
		}
	}
	sort.Strings(symbolNames)
	sort.Strings(filePaths)
	sort.Strings(modulePaths)
	return symbolNames, filePaths, modulePaths
}
