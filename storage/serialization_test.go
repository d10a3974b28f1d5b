package storage

import (
	"testing"
	"time"

	"github.com/poiesic/docuchat/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkRoundTrip(t *testing.T) {
	chunk := &core.Chunk{
		Id:         core.IDFromContent("test"),
		ResourceID: "res-1",
		SourceFile: "invoice.pdf",
		Index:      3,
		Content:    "Total due: $420.00",
		CreatedAt:  time.Date(2026, 2, 11, 9, 30, 0, 0, time.UTC),
		Vector:     []float32{0.1, 0.2, 0.3},
		Metadata:   map[string]string{"page": "2"},
	}

	data, err := MarshalChunk(chunk)
	require.NoError(t, err)

	got, err := UnmarshalChunk(data)
	require.NoError(t, err)

	assert.Equal(t, chunk.Id, got.Id)
	assert.Equal(t, chunk.ResourceID, got.ResourceID)
	assert.Equal(t, chunk.SourceFile, got.SourceFile)
	assert.Equal(t, chunk.Index, got.Index)
	assert.Equal(t, chunk.Content, got.Content)
	assert.Equal(t, chunk.Vector, got.Vector)
	assert.Equal(t, chunk.Metadata, got.Metadata)
	assert.True(t, chunk.CreatedAt.Equal(got.CreatedAt))
}

func TestMessagesRoundTrip(t *testing.T) {
	msgs := []core.Message{
		{Role: core.RoleHuman, Content: "What is the visa category?", Timestamp: time.Now().UTC().Truncate(time.Millisecond)},
		{Role: core.RoleAssistant, Content: "The filing lists H-1B.", Timestamp: time.Now().UTC().Truncate(time.Millisecond)},
	}

	data, err := MarshalMessages(msgs)
	require.NoError(t, err)

	got, err := UnmarshalMessages(data)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, core.RoleHuman, got[0].Role)
	assert.Equal(t, msgs[0].Content, got[0].Content)
	assert.Equal(t, core.RoleAssistant, got[1].Role)
}

func TestUnmarshalMessages_Corrupt(t *testing.T) {
	_, err := UnmarshalMessages([]byte("{not json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestThreadRoundTrip(t *testing.T) {
	thread := &core.Thread{
		ThreadID:     "2f0d9a6e-1111-4aaa-bbbb-c3c3c3c3c3c3",
		ResourceID:   "res-1",
		UserID:       "user-1",
		Title:        "Chat - res-1",
		MessageCount: 4,
		IsActive:     true,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}

	data, err := MarshalThread(thread)
	require.NoError(t, err)

	got, err := UnmarshalThread(data)
	require.NoError(t, err)

	assert.Equal(t, thread.ThreadID, got.ThreadID)
	assert.Equal(t, thread.MessageCount, got.MessageCount)
	assert.True(t, got.IsActive)
}
