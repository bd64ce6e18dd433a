package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyValues(t *testing.T) {
	out, err := parseKeyValues([]string{"MODEL_MAX_ITEMS=64", "NOTE=a=b", "EMPTY="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"MODEL_MAX_ITEMS": "64", "NOTE": "a=b", "EMPTY": ""}, out)

	out, err = parseKeyValues(nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = parseKeyValues([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseKeyValues([]string{"=x"})
	assert.Error(t, err)
}

func TestServingctlCommands(t *testing.T) {
	cmd := NewServingctlCmd()

	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"deploy", "undeploy", "status", "invoke", "benchmark", "feedback"} {
		assert.True(t, names[want], want)
	}
}
