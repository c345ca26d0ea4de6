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


// Package storage provides the document storage abstraction used by the
// local search transport.
//
// This package defines the repository interface that decouples the search
// evaluator from the storage engine. The BadgerDB implementation lives in
// storage/badger.
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return the interface:
//
//	repo, err := badger.NewDocumentRepository(backend) // storage.DocumentRepository
//
// Internal helpers may return concrete types since they are only used within
// the implementation package.
//
// # Documents
//
// Documents are schemaless JSON objects grouped by index. A document added
// without an ID gets one derived from its content, so re-indexing the same
// source is idempotent. Adding a document whose ID already exists replaces it.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	repo, err := badger.NewDocumentRepository(backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Use in tests with in-memory storage:
//
//	repo, backend, err := badger.NewMemoryRepository()
//
// # Thread Safety
//
// All repository implementations must be safe for concurrent use.
package storage
