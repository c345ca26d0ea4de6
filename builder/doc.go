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


// Package builder provides the default query builder.
//
// A component's query is composed from the queries of the components it
// reacts to: "and" sources become a bool must clause, "or" sources a bool
// should clause with minimum_should_match 1, and "not" sources a bool
// must_not clause. Sources that are unregistered or carry no query are left
// out. The component's own options are passed through unchanged.
package builder
