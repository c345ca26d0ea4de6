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


// Package mock provides a test double for transport.Client.
//
// MockClient records every request and lets tests inject behavior through
// function fields:
//
//	client := mock.NewMockClient()
//	client.SearchFunc = func(ctx context.Context, req *transport.Request) (*core.SearchResponse, error) {
//	    return &core.SearchResponse{Total: 1}, nil
//	}
//
// Streams opened through SearchStream are MockStreams; tests push events with
// Send and observe Stop through Stopped.
package mock
