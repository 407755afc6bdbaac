package nacos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicateMatch(t *testing.T) {
	p, err := NewPredicate(`metadata["env"] == "prod" && metadata["zone"] == "sh"`)
	require.NoError(t, err)

	ok, err := p.Match(map[string]string{"env": "prod", "zone": "sh"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Match(map[string]string{"env": "prod", "zone": "bj"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPredicateMissingKey(t *testing.T) {
	p, err := NewPredicate(`"env" in metadata && metadata["env"] == "prod"`)
	require.NoError(t, err)

	ok, err := p.Match(map[string]string{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPredicateRejectsInvalidExpression(t *testing.T) {
	_, err := NewPredicate(`metadata[`)
	assert.Error(t, err)
}

func TestPredicateRejectsNonBool(t *testing.T) {
	_, err := NewPredicate(`metadata["env"]`)
	assert.Error(t, err)
}
