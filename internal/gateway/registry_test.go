package gateway

import (
	"testing"

	"tengen/gateway/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeComputeNode(t *testing.T) {
	g, emitter := newTestGateway(t)

	authorized, err := g.IsAuthorizedNode("0xnode2")
	require.NoError(t, err)
	assert.False(t, authorized)

	require.NoError(t, g.AuthorizeComputeNode(testAdmin, "0xnode2"))

	authorized, err = g.IsAuthorizedNode("0xnode2")
	require.NoError(t, err)
	assert.True(t, authorized)

	assert.Contains(t, emitter.types(), models.EventNodeAuthorized)
}

func TestAuthorizeComputeNodeIdempotent(t *testing.T) {
	g, _ := newTestGateway(t)

	// testNode is already authorized by the helper
	require.NoError(t, g.AuthorizeComputeNode(testAdmin, testNode))

	nodes, err := g.ListComputeNodes()
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestRevokeComputeNode(t *testing.T) {
	g, emitter := newTestGateway(t)

	require.NoError(t, g.RevokeComputeNode(testAdmin, testNode))

	authorized, err := g.IsAuthorizedNode(testNode)
	require.NoError(t, err)
	assert.False(t, authorized)

	// Revoking again is a no-op success
	require.NoError(t, g.RevokeComputeNode(testAdmin, testNode))

	assert.Contains(t, emitter.types(), models.EventNodeRevoked)
}

func TestRegistryAdminOnly(t *testing.T) {
	g, _ := newTestGateway(t)

	assert.ErrorIs(t, g.AuthorizeComputeNode("0xmallory", "0xnode2"), ErrNotAuthorizedAdmin)
	assert.ErrorIs(t, g.RevokeComputeNode("0xmallory", testNode), ErrNotAuthorizedAdmin)

	// The registry is unchanged
	authorized, err := g.IsAuthorizedNode(testNode)
	require.NoError(t, err)
	assert.True(t, authorized)

	authorized, err = g.IsAuthorizedNode("0xnode2")
	require.NoError(t, err)
	assert.False(t, authorized)
}

func TestRevocationDoesNotTouchReportedJobs(t *testing.T) {
	g, _ := newTestGateway(t)

	jobID, err := g.RequestCompute(testRequester, models.TaskTypePrimeFinder, nil, 100)
	require.NoError(t, err)
	require.NoError(t, g.SubmitResult(testNode, jobID, []byte("result")))

	require.NoError(t, g.RevokeComputeNode(testAdmin, testNode))

	// The completed job still credits the revoked node
	job, err := g.GetJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, job.Status)
	assert.Equal(t, testNode, job.ComputeProvider)
}
