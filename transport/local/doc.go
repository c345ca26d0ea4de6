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


// Package local implements transport.Client over a storage.DocumentRepository.
//
// The client evaluates a subset of the Elasticsearch query DSL in process:
//
//   - match_all, match, multi_match, term, terms, range, exists
//   - bool with must, filter, should, must_not and minimum_should_match
//   - geo_bounding_box over {lat, lon} objects, "lat,lon" strings and
//     [lon, lat] arrays
//
// Request bodies may also carry from, size, sort and aggs (terms, min, max,
// avg). The request Type, when set, restricts the search to the index of that
// name.
//
// Streaming subscriptions deliver every document indexed through the client
// after the subscription was opened and matching its query.
package local
