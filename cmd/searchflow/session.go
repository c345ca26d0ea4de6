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


package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/poiesic/searchflow/core"
	"github.com/poiesic/searchflow/orchestrator"
	"github.com/poiesic/searchflow/state"
	"gopkg.in/yaml.v3"
)

// Session step actions.
const (
	actionUpdate   = "update"
	actionOptions  = "options"
	actionLoadMore = "load_more"
	actionMap      = "map"
	actionStream   = "stream"
	actionClear    = "clear"
	actionRemove   = "remove"
)

var errInvalidSession = errors.New("invalid session")

// session is a scripted sequence of UI interactions.
type session struct {
	Components []sessionComponent `yaml:"components"`
	Steps      []sessionStep      `yaml:"steps"`
	Print      []string           `yaml:"print"`
}

type sessionComponent struct {
	ID       string         `yaml:"id"`
	Internal bool           `yaml:"internal"`
	React    *sessionReact  `yaml:"react"`
	Options  map[string]any `yaml:"options"`
	Stream   bool           `yaml:"stream"`
}

type sessionReact struct {
	And []string `yaml:"and"`
	Or  []string `yaml:"or"`
	Not []string `yaml:"not"`
}

func (r *sessionReact) spec() core.React {
	return core.React{And: componentIDs(r.And), Or: componentIDs(r.Or), Not: componentIDs(r.Not)}
}

type sessionStep struct {
	Action    string         `yaml:"action"`
	Component string         `yaml:"component"`
	Query     map[string]any `yaml:"query"`
	Value     any            `yaml:"value"`
	Label     string         `yaml:"label"`
	Options   map[string]any `yaml:"options"`
	Execute   bool           `yaml:"execute"`
	Enabled   bool           `yaml:"enabled"`
}

func componentIDs(ids []string) []core.ComponentID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]core.ComponentID, len(ids))
	for i, id := range ids {
		out[i] = core.ComponentID(id)
	}
	return out
}

func loadSession(path string) (*session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading session %s: %w", path, err)
	}
	return parseSession(data)
}

func parseSession(data []byte) (*session, error) {
	var s session
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidSession, err)
	}
	if len(s.Components) == 0 {
		return nil, fmt.Errorf("%w: no components", errInvalidSession)
	}
	for i, step := range s.Steps {
		switch step.Action {
		case actionClear:
		case actionUpdate, actionOptions, actionLoadMore, actionMap, actionStream, actionRemove:
			if step.Component == "" {
				return nil, fmt.Errorf("%w: step %d (%s) needs a component", errInvalidSession, i+1, step.Action)
			}
		default:
			return nil, fmt.Errorf("%w: step %d has unknown action %q", errInvalidSession, i+1, step.Action)
		}
	}
	return &s, nil
}

// printTargets returns the components whose results are printed. Without an
// explicit list every component with a react expression is printed.
func (s *session) printTargets() []core.ComponentID {
	if len(s.Print) > 0 {
		return componentIDs(s.Print)
	}
	var ids []core.ComponentID
	for _, c := range s.Components {
		if c.React != nil {
			ids = append(ids, core.ComponentID(c.ID))
		}
	}
	return ids
}

// runSession registers the session's components and replays its steps,
// waiting for in-flight searches after each one.
func runSession(ctx context.Context, engine *orchestrator.Engine, s *session) error {
	for _, c := range s.Components {
		if err := engine.AddComponent(core.Component{ID: core.ComponentID(c.ID), Internal: c.Internal}); err != nil {
			return fmt.Errorf("registering %q: %w", c.ID, err)
		}
	}
	for _, c := range s.Components {
		id := core.ComponentID(c.ID)
		if c.Options != nil {
			if err := engine.SetQueryOptions(ctx, id, core.Options(c.Options), false); err != nil {
				return err
			}
		}
		if c.React != nil {
			if err := engine.WatchComponent(ctx, id, c.React.spec()); err != nil {
				return err
			}
		}
	}
	for _, c := range s.Components {
		if c.Stream {
			if err := engine.SetStreaming(ctx, core.ComponentID(c.ID), true); err != nil {
				return err
			}
		}
	}
	engine.Wait()

	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := runStep(ctx, engine, step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}
		engine.Wait()
	}
	return nil
}

func runStep(ctx context.Context, engine *orchestrator.Engine, step sessionStep) error {
	id := core.ComponentID(step.Component)
	switch step.Action {
	case actionUpdate:
		return engine.UpdateQuery(ctx, orchestrator.UpdateQueryRequest{
			Component:  id,
			Query:      core.Query(step.Query),
			Value:      step.Value,
			Label:      step.Label,
			ShowFilter: true,
		})
	case actionOptions:
		return engine.SetQueryOptions(ctx, id, core.Options(step.Options), step.Execute)
	case actionLoadMore:
		return engine.LoadMore(ctx, id, core.Options(step.Options))
	case actionMap:
		return engine.UpdateMapData(ctx, id, core.Query(step.Query), step.Execute)
	case actionStream:
		return engine.SetStreaming(ctx, id, step.Enabled)
	case actionClear:
		engine.ClearValues()
		return nil
	case actionRemove:
		engine.RemoveComponent(id)
		return nil
	}
	return fmt.Errorf("unknown action %q", step.Action)
}

type componentResult struct {
	Component    core.ComponentID `json:"component"`
	Total        int64            `json:"total"`
	Hits         []core.Hit       `json:"hits"`
	StreamHits   []core.Hit       `json:"stream_hits,omitempty"`
	Aggregations map[string]any   `json:"aggregations,omitempty"`
	Error        string           `json:"error,omitempty"`
}

func printResults(w io.Writer, store *state.Store, ids []core.ComponentID) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	for _, id := range ids {
		hits := store.Hits(id)
		result := componentResult{
			Component:    id,
			Total:        hits.Total,
			Hits:         hits.Hits,
			StreamHits:   store.StreamHits(id),
			Aggregations: store.Aggregations(id),
		}
		if result.Hits == nil {
			result.Hits = []core.Hit{}
		}
		if err := store.Err(id); err != nil {
			result.Error = err.Error()
		}
		if err := enc.Encode(result); err != nil {
			return err
		}
	}
	return nil
}

// followStreams prints every streamed hit as a JSON line.
func followStreams(store *state.Store, w io.Writer) func() {
	var mu sync.Mutex
	enc := json.NewEncoder(w)
	return store.Subscribe(func(ev state.Event) {
		if ev.Kind != state.StreamHitsUpdated {
			return
		}
		hits, ok := ev.Value.([]core.Hit)
		if !ok || len(hits) == 0 {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		_ = enc.Encode(struct {
			Component core.ComponentID `json:"component"`
			Hit       core.Hit         `json:"hit"`
		}{ev.Component, hits[len(hits)-1]})
	})
}

// readDocuments decodes a stream of JSON objects, one document source each.
// Both newline-delimited objects and a single top-level array are accepted.
func readDocuments(r io.Reader) ([]*core.Document, error) {
	dec := json.NewDecoder(r)

	var docs []*core.Document
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return docs, nil
			}
			return nil, fmt.Errorf("decoding documents: %w", err)
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var sources []map[string]any
			if err := json.Unmarshal(trimmed, &sources); err != nil {
				return nil, fmt.Errorf("decoding documents: %w", err)
			}
			for _, source := range sources {
				docs = append(docs, &core.Document{Source: source})
			}
			continue
		}
		var source map[string]any
		if err := json.Unmarshal(trimmed, &source); err != nil {
			return nil, fmt.Errorf("decoding documents: %w", err)
		}
		docs = append(docs, &core.Document{Source: source})
	}
}
