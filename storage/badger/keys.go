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


package badger

import (
	"encoding/binary"
	"fmt"
	"time"
)

const (
	documentPrefix     = "docrec"
	documentDatePrefix = "docrecd"
)

// makeDocumentKey returns docrec:<index>:<id>.
func makeDocumentKey(index, id string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", documentPrefix, index, id))
}

// makeDocumentPrefix returns the prefix shared by every document of index, or
// by every document when index is empty.
func makeDocumentPrefix(index string) []byte {
	if index == "" {
		return []byte(documentPrefix + ":")
	}
	return []byte(fmt.Sprintf("%s:%s:", documentPrefix, index))
}

// makeDocumentDateKey returns docrecd:<index>:<micros><id>.
func makeDocumentDateKey(index string, indexedAt time.Time, id string) []byte {
	prefix := makeDocumentDatePrefix(index)
	buf := make([]byte, len(prefix)+8+len(id))
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(indexedAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], id)
	return buf
}

func makePartialDocumentDateKey(index string, indexedAt time.Time) []byte {
	prefix := makeDocumentDatePrefix(index)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(indexedAt.UnixMicro()))
	return buf
}

func makeDocumentDatePrefix(index string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", documentDatePrefix, index))
}
