// Copyright 2025 The xircc Authors.
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

// Package parser implements a recursive-descent CST builder over a token
// stream, driven entirely by a grammar.Grammar: node definitions are data
// (sequence/alternation of typed parts), not Go types, so the same
// dispatch logic in parseNode serves every grammar the engine is handed —
// the bundled bootstrap BNF grammar as well as any grammar lowered from it.
package parser

import (
	"fmt"

	"github.com/xircomp/xircc/internal/collections"
	"github.com/xircomp/xircc/internal/cst"
	"github.com/xircomp/xircc/internal/grammar"
	"github.com/xircomp/xircc/internal/issue"
	"github.com/xircomp/xircc/internal/token"
)

// Stats exposes per-invocation counters for diagnostics (spec §4.D:
// "implementations should expose a counter of invocations per root
// input").
type Stats struct {
	NodeAttempts int
}

// Parser holds the read-only grammar and index a single Parse call walks.
// It carries no mutable cursor: every parse step takes and returns an
// explicit token index, so rollback on a failed sequence is simply
// "discard the returned index and reuse the one you already had" — no
// separate undo bookkeeping is needed (see parseSequence).
type Parser struct {
	grammar *grammar.Grammar
	idx     *grammar.Index
	ignored collections.Set[string]
	tokens  []token.Token
	sink    issue.Sink
	stats   Stats
}

// New constructs a Parser over tokens for g. sink receives the Debug-level
// parse-stats issue and the Error-level issue for an unexpected top-level
// token; a nil sink discards them.
func New(g *grammar.Grammar, tokens []token.Token, sink issue.Sink) *Parser {
	if sink == nil {
		sink = issue.Discard
	}
	return &Parser{grammar: g, idx: g.BuildIndex(), ignored: g.IgnoredSet(), tokens: tokens, sink: sink}
}

// Stats returns a snapshot of the parser's invocation counters.
func (p *Parser) Stats() Stats { return p.stats }

// matchResult is the outcome of one parseNode/parsePart attempt. ok=false
// is a normal no-match control signal, not an error (spec §4.D: "No-match
// is a normal control signal, not an error").
type matchResult struct {
	node *cst.Node
	pos  int
	ok   bool
}

// Parse runs the top-level loop from spec §4.D: starting at token index 0,
// repeatedly try every grammar.RootNodes entry in order; the first that
// succeeds is appended to the result and the cursor advances past it.
// Fails if no root node matches at the current position before the
// stream is exhausted.
func Parse(g *grammar.Grammar, tokens []token.Token, sink issue.Sink) ([]*cst.Node, error) {
	p := New(g, tokens, sink)
	return p.ParseAll()
}

func (p *Parser) ParseAll() ([]*cst.Node, error) {
	var results []*cst.Node
	pos := 0

	for {
		pos = p.skip(pos)
		if pos >= len(p.tokens) {
			p.logStats()
			return results, nil
		}

		matched := false
		for _, root := range p.grammar.RootNodes {
			res, err := p.parseNode(root, pos)
			if err != nil {
				p.logStats()
				return nil, err
			}
			if res.ok {
				results = append(results, res.node)
				pos = res.pos
				matched = true
				break
			}
		}

		if !matched {
			tok := p.tokens[pos]
			err := fmt.Errorf("Unexpected token %q at %d:%d", tok.Text, tok.Location.Line, tok.Location.Column)
			p.sink.Emit(issue.Issue{Location: &tok.Location, Level: issue.Error, Message: err.Error()})
			p.logStats()
			return nil, err
		}
	}
}

// logStats emits the parser's invocation counters through sink at
// Debug level once a root-input parse finishes, successfully or not
// (spec §4.D: NodeAttempts is "logged through the same issue.Sink at
// issue.Debug level").
func (p *Parser) logStats() {
	p.sink.Emit(issue.Issue{Level: issue.Debug, Message: fmt.Sprintf("parse stats: %d node attempts", p.stats.NodeAttempts)})
}

// parseNode dispatches on whether kind names a literal or a definition,
// per spec §4.D's parseNode algorithm.
func (p *Parser) parseNode(kind string, pos int) (matchResult, error) {
	p.stats.NodeAttempts++

	if p.idx.IsLiteral(kind) {
		return p.parseLiteral(kind, pos), nil
	}

	def, ok := p.idx.Definition(kind)
	if !ok {
		return matchResult{}, fmt.Errorf("definition not found: %q", kind)
	}

	switch def.Type {
	case grammar.Alternation:
		return p.parseAlternation(def, pos)
	case grammar.Sequence:
		return p.parseSequence(def, pos)
	default:
		return matchResult{}, fmt.Errorf("definition %q: unknown type %v", def.Name, def.Type)
	}
}

// parseLiteral consumes a single token if its Kind matches, skipping
// ignored tokens first (spec §4.D: "Before each token-level read... the
// cursor is advanced past any tokens whose kind is in ignored_literals").
func (p *Parser) parseLiteral(kind string, pos int) matchResult {
	effective := p.skip(pos)
	if effective >= len(p.tokens) || p.tokens[effective].Kind != kind {
		return matchResult{ok: false}
	}
	tok := p.tokens[effective]
	return matchResult{
		node: &cst.Node{Kind: tok.Kind, Text: tok.Text, Location: tok.Location},
		pos:  effective + 1,
		ok:   true,
	}
}

// parseAlternation tries each pattern part in order; the first success is
// wrapped under the alternation's own name (spec §4.D).
func (p *Parser) parseAlternation(def *grammar.NodeDefinition, pos int) (matchResult, error) {
	for _, part := range def.Pattern {
		res, err := p.parseNode(part.Kind, pos)
		if err != nil {
			return matchResult{}, err
		}
		if res.ok {
			wrapped := &cst.Node{
				Kind:     def.Name,
				Text:     res.node.Text,
				Location: res.node.Location,
				Children: []*cst.Node{res.node},
			}
			return matchResult{node: wrapped, pos: res.pos, ok: true}, nil
		}
	}
	return matchResult{ok: false}, nil
}

// parseSequence walks def.Pattern in order. required parts must match or
// the whole sequence rewinds to pos and reports no-match; optional parts
// are skipped silently on no-match; a repeated part consumes zero or more
// matches greedily and, once exhausted, ends the sequence — the parts
// after it are never attempted (spec §4.D: "a repeated part must be the
// last semantic element authors intend to match").
func (p *Parser) parseSequence(def *grammar.NodeDefinition, pos int) (matchResult, error) {
	var children []*cst.Node
	cur := pos

	for _, part := range def.Pattern {
		switch part.Type {
		case grammar.Required:
			res, err := p.parseNode(part.Kind, cur)
			if err != nil {
				return matchResult{}, err
			}
			if !res.ok {
				return matchResult{ok: false}, nil // rollback: caller still holds pos
			}
			children = append(children, res.node)
			cur = res.pos

		case grammar.Optional:
			res, err := p.parseNode(part.Kind, cur)
			if err != nil {
				return matchResult{}, err
			}
			if res.ok {
				children = append(children, res.node)
				cur = res.pos
			}

		case grammar.Repeated:
			for {
				res, err := p.parseNode(part.Kind, cur)
				if err != nil {
					return matchResult{}, err
				}
				if !res.ok {
					break
				}
				children = append(children, res.node)
				cur = res.pos
			}
			return p.buildSequenceNode(def.Name, children, cur), nil
		}
	}

	return p.buildSequenceNode(def.Name, children, cur), nil
}

func (p *Parser) buildSequenceNode(name string, children []*cst.Node, endPos int) matchResult {
	node := &cst.Node{Kind: name, Children: children}
	if len(children) > 0 {
		node.Text = children[0].Text
		node.Location = children[0].Location
	}
	return matchResult{node: node, pos: endPos, ok: true}
}

// skip advances pos past every token whose Kind is in the grammar's
// ignored_literals set. This is the single centralized cursor-advance
// helper the design notes (spec §9) call for: every other call site that
// needs to skip ignored tokens routes through here so the rollback
// contract stays consistent.
func (p *Parser) skip(pos int) int {
	for pos < len(p.tokens) && p.ignored.Contains(p.tokens[pos].Kind) {
		pos++
	}
	return pos
}
