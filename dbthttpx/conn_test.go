package dbthttpx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConnection(t *testing.T) {
	conn, err := ResolveConnection("cloud.getdbt.com", "", 42, "dbts_token")
	require.NoError(t, err)

	assert.Equal(t, "cloud.getdbt.com", conn.Host)
	assert.Equal(t, "https://semantic-layer.cloud.getdbt.com", conn.SemanticLayerEndpoint)
	assert.Equal(t, "https://metadata.cloud.getdbt.com", conn.MetadataEndpoint)
	assert.Equal(t, "https://cloud.getdbt.com/mcp/sse", conn.RemoteMcpEndpoint)
	assert.Equal(t, int64(42), conn.EnvironmentId)
}

func TestResolveConnectionExplicitPrefix(t *testing.T) {
	conn, err := ResolveConnection("cloud.getdbt.com", "ab123", 42, "dbts_token")
	require.NoError(t, err)

	assert.Equal(t, "https://ab123.semantic-layer.cloud.getdbt.com", conn.SemanticLayerEndpoint)
	assert.Equal(t, "https://ab123.metadata.cloud.getdbt.com", conn.MetadataEndpoint)
}

func TestResolveConnectionEmbeddedPrefix(t *testing.T) {
	// A host already qualified with a cell prefix must resolve to the same
	// canonical form as supplying the prefix explicitly.
	explicit, err := ResolveConnection("cloud.getdbt.com", "ab123", 42, "dbts_token")
	require.NoError(t, err)

	embedded, err := ResolveConnection("ab123.semantic-layer.cloud.getdbt.com", "", 42, "dbts_token")
	require.NoError(t, err)

	assert.Equal(t, explicit.SemanticLayerEndpoint, embedded.SemanticLayerEndpoint)
	assert.Equal(t, explicit.MetadataEndpoint, embedded.MetadataEndpoint)
	assert.Equal(t, "cloud.getdbt.com", embedded.Host)
}

func TestResolveConnectionServiceQualifiedHost(t *testing.T) {
	conn, err := ResolveConnection("semantic-layer.cloud.getdbt.com", "", 42, "dbts_token")
	require.NoError(t, err)

	assert.Equal(t, "https://semantic-layer.cloud.getdbt.com", conn.SemanticLayerEndpoint)
	assert.Equal(t, "cloud.getdbt.com", conn.Host)
}

func TestResolveConnectionLocalhost(t *testing.T) {
	conn, err := ResolveConnection("localhost:8002", "", 1, "dbts_token")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8002", conn.SemanticLayerEndpoint)
	assert.Equal(t, "http://localhost:8002", conn.MetadataEndpoint)
	assert.Equal(t, "http://localhost:8002/mcp/sse", conn.RemoteMcpEndpoint)
}

func TestResolveConnectionInvalid(t *testing.T) {
	_, err := ResolveConnection("", "", 42, "dbts_token")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = ResolveConnection("cloud.getdbt.com", "", 42, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = ResolveConnection("cloud.getdbt.com", "", 0, "dbts_token")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestResolveConnectionPrefixWinsOverEmbedded(t *testing.T) {
	conn, err := ResolveConnection("cloud.getdbt.com", "cell9", 42, "dbts_token")
	require.NoError(t, err)

	assert.Equal(t, "https://cell9.semantic-layer.cloud.getdbt.com", conn.SemanticLayerEndpoint)
}
