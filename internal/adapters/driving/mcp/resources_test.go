package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZakirCodeArchitect/PakistanHigherCourtsSearchAndQASystem/internal/core/domain"
)

func TestServer_handleStatusResource(t *testing.T) {
	mockSearch := &mockSearchService{
		status: &domain.IndexStatus{
			Built:      true,
			Version:    3,
			CaseCount:  120,
			ChunkCount: 900,
			Coverage:   1.0,
		},
	}
	server, err := NewServer(&Ports{Search: mockSearch})
	require.NoError(t, err)

	req := &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uriScheme + "status"},
	}
	result, err := server.handleStatusResource(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var status domain.IndexStatus
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &status))
	assert.True(t, status.Built)
	assert.Equal(t, 120, status.CaseCount)
}
