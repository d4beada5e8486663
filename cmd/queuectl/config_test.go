package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuectl/queuectl/pkg/config"
)

func TestApplyAndLookupConfigKey(t *testing.T) {
	a := &app{cfg: config.Default()}

	require.NoError(t, applyConfigKey(a, "max-retries", "7"))
	require.NoError(t, applyConfigKey(a, "backoff-base", "1.5"))
	require.NoError(t, applyConfigKey(a, "cleanup-schedule", "@daily"))

	got, err := lookupConfigKey(a, "max-retries")
	require.NoError(t, err)
	assert.Equal(t, "7", got)

	got, err = lookupConfigKey(a, "backoff-base")
	require.NoError(t, err)
	assert.Equal(t, "1.5", got)

	got, err = lookupConfigKey(a, "cleanup-schedule")
	require.NoError(t, err)
	assert.Equal(t, "@daily", got)
}

func TestConfigKey_Unknown(t *testing.T) {
	a := &app{cfg: config.Default()}

	assert.Error(t, applyConfigKey(a, "nope", "1"))

	_, err := lookupConfigKey(a, "nope")
	assert.Error(t, err)
}

func TestApplyConfigKey_RejectsBadInteger(t *testing.T) {
	a := &app{cfg: config.Default()}

	assert.Error(t, applyConfigKey(a, "max-retries", "many"))
	assert.Error(t, applyConfigKey(a, "backoff-base", "fast"))
}

func TestDLQListHasLimitFlag(t *testing.T) {
	root := newRootCmd()

	dlqList, _, err := root.Find([]string{"dlq", "list"})
	require.NoError(t, err)
	require.Equal(t, "list", dlqList.Name())

	flag := dlqList.Flags().Lookup("limit")
	require.NotNil(t, flag, "dlq list must page with an explicit limit")
	assert.Equal(t, "100", flag.DefValue)
}

func TestConfigSubcommands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"show", "get", "set", "reset"} {
		cmd, _, err := root.Find([]string{"config", name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name(), "config %s must exist", name)
	}
}
