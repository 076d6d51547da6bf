package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentVector is one embedded chunk in the vector index. The Id is
// namespaced as doc_<document_id>_chunk_<index>, so concurrent runs for
// different documents can never collide. All fields the retrieval layer
// needs travel with the record; nothing hides in an untyped metadata bag.
type DocumentVector struct {
	Id            string
	Embedding     []float32
	DocumentId    uuid.UUID
	DocumentTitle string
	UserId        uuid.UUID
	ChunkIndex    int
	Text          string
	StartChar     int
	EndChar       int
	CreatedAt     time.Time
}
