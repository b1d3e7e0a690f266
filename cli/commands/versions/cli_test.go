package versions_test

import (
	"bytes"
	"testing"

	"github.com/seek-and-deploy/deployer/cli/commands/versions"
	"github.com/seek-and-deploy/deployer/internal/discovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrint(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	require.NoError(t, versions.Print(&out, "qa", discovery.VersionLedger{"a", "c"}))
	assert.Equal(t, "qa-a\nqa-c\n", out.String())

	out.Reset()

	require.NoError(t, versions.Print(&out, "qa", nil))
	assert.Empty(t, out.String())
}
