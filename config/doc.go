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


// Package config holds runtime configuration for a searchflow Runtime.
//
// A Config can be built in code with functional options or loaded from a
// YAML file. Values missing from the file keep their defaults:
//
//	cfg, err := config.Load("searchflow.yaml")
//	if err != nil {
//	    return err
//	}
//	rt, err := searchflow.NewRuntime(cfg)
package config
