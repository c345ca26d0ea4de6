// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"context"
	"time"

	"github.com/poiesic/searchflow/core"
)

// DocumentRepository stores searchable documents grouped by index.
type DocumentRepository interface {
	// AddDocuments stores one or more documents.
	// Documents without an ID get one derived from their source.
	// Sets IndexedAt if not already set. Existing documents are replaced.
	// Returns the documents with IDs and timestamps populated.
	AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// DeleteDocuments removes documents from an index.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, index string, ids ...string) error

	// GetDocument retrieves a single document.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, index, id string) (*core.Document, error)

	// GetDocuments retrieves multiple documents from an index.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, index string, ids ...string) ([]*core.Document, error)

	// ScanDocuments calls fn for every document in index, or in every index
	// when index is empty. Returning ErrStopIteration from fn ends the scan
	// without error; any other error aborts it and is returned.
	ScanDocuments(ctx context.Context, index string, fn func(doc *core.Document) error) error

	// GetDocumentsSince retrieves documents of an index indexed at or after
	// since, ordered by IndexedAt.
	GetDocumentsSince(ctx context.Context, index string, since time.Time) ([]*core.Document, error)

	// CountDocuments returns the number of documents in index, or in every
	// index when index is empty.
	CountDocuments(ctx context.Context, index string) (int64, error)

	// Close releases resources held by the repository. It does not close the
	// underlying backend.
	Close() error
}
