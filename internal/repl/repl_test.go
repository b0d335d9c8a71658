package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessDeclarationInfersValueScheme(t *testing.T) {
	r := New()
	var out bytes.Buffer

	r.ProcessDeclaration("five = 5;", &out)

	assert.Contains(t, out.String(), "five")
	assert.Contains(t, out.String(), "Int")
	assert.Empty(t, r.typeEnv.Constructors)
	require.Contains(t, r.typeEnv.Values, "five")
}

func TestProcessDeclarationAcceptsAnnotation(t *testing.T) {
	r := New()
	var out bytes.Buffer

	r.ProcessDeclaration("five: Int = 5;", &out)

	require.NotContains(t, strings.ToLower(out.String()), "error")
	require.Contains(t, r.typeEnv.Values, "five")
}

func TestProcessDeclarationReportsTypeError(t *testing.T) {
	r := New()
	var out bytes.Buffer

	r.ProcessDeclaration(`bad: Int = "not an int";`, &out)

	assert.Contains(t, strings.ToUpper(out.String()), "TYC")
	assert.NotContains(t, r.typeEnv.Values, "bad")
}

func TestProcessDeclarationWidensEnvironmentAcrossCalls(t *testing.T) {
	r := New()
	var out bytes.Buffer

	r.ProcessDeclaration("type Maybe(a) = Just(a) | Nothing;", &out)
	require.Contains(t, r.kindEnv.Types, "Maybe")
	require.Contains(t, r.typeEnv.Constructors, "Just")
	require.Contains(t, r.typeEnv.Constructors, "Nothing")

	out.Reset()
	r.ProcessDeclaration("one = Just(1);", &out)
	assert.Contains(t, out.String(), "Maybe")
	require.Contains(t, r.typeEnv.Values, "one")
}

func TestHandleCommandReset(t *testing.T) {
	r := New()
	var out bytes.Buffer

	r.ProcessDeclaration("five = 5;", &out)
	require.Contains(t, r.typeEnv.Values, "five")

	quit := r.HandleCommand(":reset", &out)
	assert.False(t, quit)
	assert.Empty(t, r.typeEnv.Values)
}

func TestHandleCommandQuit(t *testing.T) {
	r := New()
	var out bytes.Buffer
	assert.True(t, r.HandleCommand(":quit", &out))
}
