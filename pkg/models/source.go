package models

import (
	"fmt"

	"github.com/google/uuid"
)

// SourceKind identifies the collection an extracted statement originated from.
type SourceKind string

const (
	SourceKindChatThread   SourceKind = "chat_thread"
	SourceKindImportedItem SourceKind = "imported_item"
)

// IsValidSourceKind checks if the given kind is valid.
func IsValidSourceKind(k SourceKind) bool {
	return k == SourceKindChatThread || k == SourceKindImportedItem
}

// SourceRef is a typed reference to the origin record of an extracted
// statement. The origin can live in either the chat_threads or imported_items
// table, so the reference carries its kind instead of being a foreign key.
type SourceRef struct {
	Kind SourceKind `json:"kind"`
	ID   uuid.UUID  `json:"id"`
}

// Validate returns an error if the reference is incomplete or names an
// unknown origin kind.
func (r SourceRef) Validate() error {
	if !IsValidSourceKind(r.Kind) {
		return fmt.Errorf("unknown source kind %q", r.Kind)
	}
	if r.ID == uuid.Nil {
		return fmt.Errorf("source ref requires an id")
	}
	return nil
}

func (r SourceRef) String() string {
	return string(r.Kind) + ":" + r.ID.String()
}
