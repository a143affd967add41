package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySymbolLookup(t *testing.T) {
	c := Classify("LoginHandler")
	assert.Equal(t, IntentSymbol, c.Intent)
	assert.Greater(t, c.Scores[IntentSymbol], 0.3)
	require.Len(t, c.SymbolNames, 1)
	assert.Equal(t, "LoginHandler", c.SymbolNames[0])
}

func TestClassifyConceptSearch(t *testing.T) {
	c := Classify("how does authentication work?")
	assert.Equal(t, IntentConcept, c.Intent)
	assert.Greater(t, c.Scores[IntentConcept], 0.3)
}

func TestClassifyFlowQuery(t *testing.T) {
	c := Classify("callers of authenticate")
	assert.Equal(t, IntentFlow, c.Intent)
}

func TestClassifyFlowFromToPhrase(t *testing.T) {
	c := Classify("trace the request from handler to database")
	assert.Equal(t, IntentFlow, c.Intent, "expected a from-X-to-Y phrase to classify as Flow")
}

func TestClassifyFileExtensionHintsCode(t *testing.T) {
	c := Classify("refactor the handler in auth.go to use context")
	assert.NotEmpty(t, c.FilePaths)
	assert.Equal(t, IntentCode, c.Intent)
}

func TestClassifyModulePathHint(t *testing.T) {
	c := Classify("explain pkg.auth.session handling")
	assert.Contains(t, c.ModulePaths, "pkg.auth.session")
}

func TestClassifyScoresSumToOne(t *testing.T) {
	c := Classify("why does login fail with a nil pointer")
	sum := 0.0
	for _, v := range c.Scores {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 0.001)
}
