package options_test

import (
	"bytes"
	"testing"

	"github.com/seek-and-deploy/deployer/options"
	"github.com/seek-and-deploy/deployer/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvs(t *testing.T) {
	t.Parallel()

	parsed := options.ParseEnvs([]string{"HOME=/root", "EMPTY=", "URL=a=b", "garbage", " SPACED =x"})

	assert.Equal(t, map[string]string{
		"HOME":   "/root",
		"EMPTY":  "",
		"URL":    "a=b",
		"SPACED": "x",
	}, parsed)
}

func TestConfigureLogger(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer

	opts := options.NewDeployerOptionsWithWriters(&bytes.Buffer{}, &stderr)
	opts.LogLevel = log.DebugLevel
	opts.LogFormat = "json"

	require.NoError(t, opts.ConfigureLogger())

	opts.Logger.Debug("hello")
	assert.Contains(t, stderr.String(), `"msg":"hello"`)

	opts.LogFormat = "yaml"
	require.Error(t, opts.ConfigureLogger())
}
