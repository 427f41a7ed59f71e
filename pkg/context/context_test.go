package context

import (
	"testing"

	"github.com/raybest4u/statemon/pkg/storage/mockstorage"

	"github.com/stretchr/testify/assert"
)

func TestStores(t *testing.T) {
	metadata := &mockstorage.StoreMock{StringFunc: func() string { return "metadata" }}
	payloads := &mockstorage.StoreMock{StringFunc: func() string { return "payloads" }}

	stores := NewStores(metadata, payloads)
	assert.Equal(t, "metadata", stores.Metadata().String())
	assert.Equal(t, "payloads", stores.Payloads().String())

	other := &mockstorage.StoreMock{StringFunc: func() string { return "other" }}
	stores.SetMetadata(other)
	stores.SetPayloads(other)
	assert.Equal(t, "other", stores.Metadata().String())
	assert.Equal(t, "other", stores.Payloads().String())

	empty := New()
	assert.Nil(t, empty.Metadata())
	assert.Nil(t, empty.Payloads())
}
