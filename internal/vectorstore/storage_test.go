package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/config"
	"ragchat/internal/vectorstore/memory"
	"ragchat/internal/vectorstore/qdrant"
)

func TestNew(t *testing.T) {
	st, err := New(config.VectorStoreConfig{})
	require.NoError(t, err)
	assert.IsType(t, &memory.Storage{}, st)

	st, err = New(config.VectorStoreConfig{Type: "qdrant", Qdrant: &config.QdrantConfig{URL: "http://localhost:6333"}})
	require.NoError(t, err)
	assert.IsType(t, &qdrant.Storage{}, st)

	_, err = New(config.VectorStoreConfig{Type: "qdrant"})
	assert.Error(t, err)

	_, err = New(config.VectorStoreConfig{Type: "faiss"})
	assert.Error(t, err)
}
