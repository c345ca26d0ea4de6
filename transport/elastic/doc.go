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


// Package elastic implements transport.Client for Elasticsearch-compatible
// search APIs.
//
// One-shot searches POST the request body to <url>/<index>/_search with the
// request's preference token as the "preference" query parameter. Transient
// failures (network errors, 429 and 5xx responses) are retried with
// exponential backoff; other HTTP errors are returned as *APIError.
//
// Streaming subscriptions open a websocket to <url>/<index>/_stream and send
// a subscribe frame carrying a fresh subscription ID and the request body.
// The server answers with frames carrying either a single hit, a full search
// response, or an error. Elasticsearch itself has no such endpoint; it is
// served by streaming proxies in front of the cluster.
//
// The request Type, when set, replaces the default index.
package elastic
