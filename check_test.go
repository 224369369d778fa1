package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRejectsOutOfRangeValue(t *testing.T) {
	type rangeTarget struct{ Port int }

	Attributes(&rangeTarget{}, Decls{
		"Port": {Set("--port", Type(Int), Check("min=1,max=65535"))},
	})

	cmd := &rangeTarget{}
	_, err := Parse(cmd, []string{"--port", "0"})
	require.Error(t, err)

	var inv *InvocationError
	require.ErrorAs(t, err, &inv)
	assert.Contains(t, inv.Message, "--port")
	assert.Contains(t, inv.Message, "min")
	assert.Zero(t, cmd.Port)
}

func TestCheckAcceptsValidValue(t *testing.T) {
	type okTarget struct{ Port int }

	Attributes(&okTarget{}, Decls{
		"Port": {Set("--port", Type(Int), Check("min=1,max=65535"))},
	})

	cmd := &okTarget{}
	rest, err := Parse(cmd, []string{"--port", "8080"})
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, 8080, cmd.Port)
}

func TestCheckConstraintOnStringValue(t *testing.T) {
	type urlTarget struct{ DB string }

	Attributes(&urlTarget{}, Decls{
		"DB": {Set("--db", Type(String), Check("url"))},
	})

	cmd := &urlTarget{}
	_, err := Parse(cmd, []string{"--db", "not a url"})
	require.Error(t, err)

	var inv *InvocationError
	require.ErrorAs(t, err, &inv)
	assert.Contains(t, inv.Message, "url")

	_, err = Parse(&urlTarget{}, []string{"--db", "postgres://localhost/app"})
	require.NoError(t, err)
}
