package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSourceRefValidate(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		ref     SourceRef
		wantErr bool
	}{
		{"chat thread", SourceRef{Kind: SourceKindChatThread, ID: id}, false},
		{"imported item", SourceRef{Kind: SourceKindImportedItem, ID: id}, false},
		{"unknown kind", SourceRef{Kind: "webhook", ID: id}, true},
		{"missing id", SourceRef{Kind: SourceKindChatThread}, true},
		{"zero value", SourceRef{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ref.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSourceRefString(t *testing.T) {
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	ref := SourceRef{Kind: SourceKindChatThread, ID: id}
	assert.Equal(t, "chat_thread:11111111-1111-1111-1111-111111111111", ref.String())
}
