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

// Package bnf lowers the CST of a BNF-like source, parsed against the
// bundled bootstrap grammar, into a runtime grammar.Config. It is the
// engine's only metacircular piece: the same Grammar/Parser types used to
// read an arbitrary target grammar are first used to read the BNF
// describing that grammar.
package bnf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xircomp/xircc/internal/cst"
	"github.com/xircomp/xircc/internal/grammar"
	"github.com/xircomp/xircc/internal/issue"
)

// IncludeResolver resolves a "##include <path>" directive's argument into
// the CST of the included source, already parsed against the bootstrap
// grammar. ok is false when the path cannot be resolved.
type IncludeResolver func(path string) (nodes []*cst.Node, ok bool)

var directivePattern = regexp.MustCompile(`^##(\w+)(?:\s+(.*))?$`)
var splitArgsPattern = regexp.MustCompile(`[ ,;]+`)

type inlineCandidate struct {
	name   string
	ignore bool
}

// Lowering holds the in-progress grammar.Config a BNF CST walk builds up.
// It is single-use: construct with New, call Lower once.
type Lowering struct {
	cfg             grammar.Config
	literalIndex    map[string]int
	definitionIndex map[string]int
	groupCounters   map[string]int
	inlineCandidates []inlineCandidate
	sink            issue.Sink
	include         IncludeResolver
}

// New constructs a Lowering. include may be nil, in which case every
// "##include" directive warns and is skipped.
func New(sink issue.Sink, include IncludeResolver) *Lowering {
	if sink == nil {
		sink = issue.Discard
	}
	return &Lowering{
		literalIndex:    map[string]int{},
		definitionIndex: map[string]int{},
		groupCounters:   map[string]int{},
		sink:            sink,
		include:         include,
	}
}

// Lower walks nodes (the top-level CST produced by parsing a BNF source
// against the bootstrap grammar) and returns the resulting grammar.Config.
func Lower(nodes []*cst.Node, sink issue.Sink, include IncludeResolver) (grammar.Config, error) {
	l := New(sink, include)
	return l.Lower(nodes)
}

func (l *Lowering) Lower(nodes []*cst.Node) (grammar.Config, error) {
	for _, n := range nodes {
		if err := l.walk(n); err != nil {
			return grammar.Config{}, err
		}
	}
	l.applyInlining()
	if len(l.cfg.RootNodes) == 0 {
		l.sink.Emit(issue.Issue{Level: issue.Warning, Message: "No root nodes are defined"})
	}
	return l.cfg, nil
}

func (l *Lowering) walk(n *cst.Node) error {
	switch n.Kind {
	case "directive":
		return l.handleDirective(n)
	case "rule":
		return l.handleRule(n)
	default:
		for _, c := range n.Children {
			if err := l.walk(c); err != nil {
				return err
			}
		}
		return nil
	}
}

// handleDirective dispatches a "##name args" line per spec §4.E.
func (l *Lowering) handleDirective(n *cst.Node) error {
	m := directivePattern.FindStringSubmatch(n.Text)
	if m == nil {
		l.sink.Emit(issue.Issue{Level: issue.Note, Message: fmt.Sprintf("malformed directive %q", n.Text)})
		return nil
	}
	name, args := m[1], m[2]

	switch name {
	case "root":
		l.cfg.RootNodes = append(l.cfg.RootNodes, splitArgs(args)...)
	case "ignore":
		l.cfg.IgnoredLiterals = append(l.cfg.IgnoredLiterals, splitArgs(args)...)
	case "include":
		path := strings.TrimSpace(args)
		if l.include == nil {
			l.sink.Emit(issue.Issue{Level: issue.Warning, Message: fmt.Sprintf("no include resolver configured for %q", path)})
			return nil
		}
		included, ok := l.include(path)
		if !ok {
			l.sink.Emit(issue.Issue{Level: issue.Warning, Message: fmt.Sprintf("could not resolve include %q", path)})
			return nil
		}
		for _, c := range included {
			if err := l.walk(c); err != nil {
				return err
			}
		}
	case "flags":
		fields := strings.Fields(args)
		if len(fields) < 1 {
			l.sink.Emit(issue.Issue{Level: issue.Warning, Message: "##flags requires a literal name"})
			return nil
		}
		litName, flags := fields[0], strings.Join(fields[1:], "")
		idx, ok := l.literalIndex[litName]
		if !ok {
			l.sink.Emit(issue.Issue{Level: issue.Warning, Message: fmt.Sprintf("##flags: literal %q does not exist", litName)})
			return nil
		}
		l.cfg.Literals[idx].Flags = flags
	case "groups":
		l.handleGroupsDirective(args)
	default:
		l.sink.Emit(issue.Issue{Level: issue.Note, Message: fmt.Sprintf("unknown directive %q", name)})
	}
	return nil
}

// handleGroupsDirective renames <rule>#0, <rule>#1, ... to the given names,
// substituting "%" with <rule> in each, and rewrites every pattern part that
// referenced an old group name (spec §4.E "groups").
func (l *Lowering) handleGroupsDirective(args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		l.sink.Emit(issue.Issue{Level: issue.Warning, Message: "##groups requires a rule name and at least one group name"})
		return
	}
	rule, names := fields[0], fields[1:]

	renames := map[string]string{}
	for i, raw := range names {
		newName := strings.ReplaceAll(raw, "%", rule)
		oldName := fmt.Sprintf("%s#%d", rule, i)
		renames[oldName] = newName
	}

	for oldName, newName := range renames {
		if idx, ok := l.definitionIndex[oldName]; ok {
			l.cfg.Definitions[idx].Name = newName
			delete(l.definitionIndex, oldName)
			l.definitionIndex[newName] = idx
		}
	}
	for i := range l.cfg.Definitions {
		for j, part := range l.cfg.Definitions[i].Pattern {
			if newName, ok := renames[part.Kind]; ok {
				l.cfg.Definitions[i].Pattern[j].Kind = newName
			}
		}
	}
}

func splitArgs(args string) []string {
	var out []string
	for _, field := range splitArgsPattern.Split(strings.TrimSpace(args), -1) {
		if field != "" {
			out = append(out, field)
		}
	}
	return out
}

// handleRule lowers a "rule" node: identifier, zero or more attributes
// (threaded through a right-recursive attributeList), and an expression.
func (l *Lowering) handleRule(n *cst.Node) error {
	var identNode, exprNode, attrListNode *cst.Node
	for _, c := range n.Children {
		switch c.Kind {
		case "identifier":
			if identNode == nil {
				identNode = c
			}
		case "attributeList":
			attrListNode = c
		case "expression":
			exprNode = c
		}
	}
	if identNode == nil {
		return fmt.Errorf("rule is missing a name")
	}
	name := identNode.Text

	var isRoot, isIgnore bool
	for _, a := range collectAttributes(attrListNode) {
		attrName, _ := l.parseAttribute(a)
		switch attrName {
		case "root":
			isRoot = true
		case "ignore":
			isIgnore = true
		case "":
		default:
			l.sink.Emit(issue.Issue{Level: issue.Note, Message: fmt.Sprintf("unsupported rule attribute %q", attrName)})
		}
	}

	if exprNode == nil {
		l.sink.Emit(issue.Issue{Level: issue.Error, Message: fmt.Sprintf("rule %q has no expression", name)})
		return nil
	}

	if err := l.defineFromAlternatives(name, collectSequences(exprNode)); err != nil {
		return err
	}

	if isRoot {
		l.cfg.RootNodes = append(l.cfg.RootNodes, name)
	}
	l.inlineCandidates = append(l.inlineCandidates, inlineCandidate{name: name, ignore: isIgnore})
	return nil
}

// collectAttributes flattens the right-recursive attributeList structure
// into the attribute nodes it holds, in order.
func collectAttributes(n *cst.Node) []*cst.Node {
	var out []*cst.Node
	var walk func(*cst.Node)
	walk = func(n *cst.Node) {
		if n == nil {
			return
		}
		switch n.Kind {
		case "attribute":
			out = append(out, n)
		default:
			for _, c := range n.Children {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}

// parseAttribute reads an "attribute" node (`@name` or `@name: value`).
// Per spec §4.E: string/number values are kept verbatim; an identifier
// value emits a Note and is treated as absent.
func (l *Lowering) parseAttribute(a *cst.Node) (name string, value *string) {
	for _, c := range a.Children {
		switch c.Kind {
		case "identifier":
			if name == "" {
				name = c.Text
			}
		case "attrValue":
			for _, vc := range c.Children {
				if vc.Kind != "attrLiteral" || len(vc.Children) == 0 {
					continue
				}
				lit := vc.Children[0]
				if lit.Kind == "identifier" {
					l.sink.Emit(issue.Issue{Level: issue.Note, Message: fmt.Sprintf("attribute %q has an identifier value, treated as null", name)})
					continue
				}
				v := lit.Text
				value = &v
			}
		}
	}
	return name, value
}

// collectSequences returns the top-level pipe-separated sequenceRule nodes
// of an expression node, in order.
func collectSequences(exprNode *cst.Node) []*cst.Node {
	var out []*cst.Node
	for _, c := range exprNode.Children {
		switch c.Kind {
		case "sequenceRule":
			out = append(out, c)
		case "pipeSeq":
			for _, cc := range c.Children {
				if cc.Kind == "sequenceRule" {
					out = append(out, cc)
				}
			}
		}
	}
	return out
}

// collectTerms returns the term nodes of a sequenceRule node, in order.
func collectTerms(seqNode *cst.Node) []*cst.Node {
	var out []*cst.Node
	for _, c := range seqNode.Children {
		if c.Kind == "term" {
			out = append(out, c)
		}
	}
	return out
}

// defineFromAlternatives registers a NodeDefinition under name from a list
// of alternative sequences: a single alternative becomes a "sequence"
// definition directly; more than one becomes an "alternation" whose parts
// are either the alternative's sole term (reused directly) or a freshly
// named sub-rule <name>#<n> holding a multi-term alternative.
func (l *Lowering) defineFromAlternatives(name string, seqNodes []*cst.Node) error {
	if len(seqNodes) == 1 {
		parts, err := l.lowerTermsList(name, collectTerms(seqNodes[0]))
		if err != nil {
			return err
		}
		l.setDefinition(name, "sequence", parts)
		return nil
	}

	var altParts []grammar.ConfigPart
	for _, sn := range seqNodes {
		terms := collectTerms(sn)
		if len(terms) == 1 {
			part, err := l.lowerTerm(name, terms[0])
			if err != nil {
				return err
			}
			altParts = append(altParts, part)
			continue
		}
		subName := l.nextGroupName(name)
		parts, err := l.lowerTermsList(subName, terms)
		if err != nil {
			return err
		}
		l.setDefinition(subName, "sequence", parts)
		altParts = append(altParts, grammar.ConfigPart{Kind: subName, Type: "required"})
	}
	l.setDefinition(name, "alternation", altParts)
	return nil
}

func (l *Lowering) lowerTermsList(parentName string, terms []*cst.Node) ([]grammar.ConfigPart, error) {
	parts := make([]grammar.ConfigPart, 0, len(terms))
	for _, t := range terms {
		p, err := l.lowerTerm(parentName, t)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, nil
}

// lowerTerm lowers one "term" node (a termBase plus an optional `?`/`*`
// modifier) into a ConfigPart.
func (l *Lowering) lowerTerm(parentName string, termNode *cst.Node) (grammar.ConfigPart, error) {
	var baseNode, modNode *cst.Node
	for _, c := range termNode.Children {
		switch c.Kind {
		case "termBase":
			baseNode = c
		case "modifier":
			modNode = c
		}
	}
	if baseNode == nil || len(baseNode.Children) == 0 {
		return grammar.ConfigPart{}, fmt.Errorf("malformed term in %q", parentName)
	}
	inner := baseNode.Children[0]

	partType := "required"
	if modNode != nil && len(modNode.Children) > 0 {
		switch modNode.Children[0].Kind {
		case "question":
			partType = "optional"
		case "star":
			partType = "repeated"
		}
	}

	switch inner.Kind {
	case "identifier":
		return grammar.ConfigPart{Kind: inner.Text, Type: partType}, nil

	case "string":
		name, err := unquoteBNFString(inner.Text)
		if err != nil {
			return grammar.ConfigPart{}, fmt.Errorf("invalid string term in %q: %w", parentName, err)
		}
		l.ensureLiteral(name, name, "")
		return grammar.ConfigPart{Kind: name, Type: partType}, nil

	case "group":
		if len(inner.Children) == 0 {
			return grammar.ConfigPart{}, fmt.Errorf("malformed group in %q", parentName)
		}
		groupType, exprNode, err := unwrapGroup(inner.Children[0])
		if err != nil {
			return grammar.ConfigPart{}, err
		}
		part, err := l.lowerGroup(parentName, groupType, exprNode)
		if err != nil {
			return grammar.ConfigPart{}, err
		}
		if modNode != nil {
			part.Type = partType
		}
		return part, nil

	default:
		return grammar.ConfigPart{}, fmt.Errorf("unexpected term base kind %q in %q", inner.Kind, parentName)
	}
}

// unwrapGroup maps a group's bracketing node kind to its PartType and
// returns its inner expression node.
func unwrapGroup(n *cst.Node) (groupType string, exprNode *cst.Node, err error) {
	switch n.Kind {
	case "optGroup":
		groupType = "optional"
	case "repGroup":
		groupType = "repeated"
	case "reqGroup":
		groupType = "required"
	default:
		return "", nil, fmt.Errorf("unexpected group kind %q", n.Kind)
	}
	for _, c := range n.Children {
		if c.Kind == "expression" {
			return groupType, c, nil
		}
	}
	return "", nil, fmt.Errorf("group missing an expression")
}

// lowerGroup lowers a bracketed group's inner expression per spec §4.E
// "Group lowering": if the inner expression reduces to a single non-string
// part, the group is elided and that part is reused with the group's own
// type; otherwise a fresh <parentName>#<n> definition is created.
func (l *Lowering) lowerGroup(parentName, groupType string, exprNode *cst.Node) (grammar.ConfigPart, error) {
	seqNodes := collectSequences(exprNode)

	if len(seqNodes) == 1 {
		terms := collectTerms(seqNodes[0])
		if len(terms) == 1 {
			if base, ok := termBaseKind(terms[0]); ok && base != "string" {
				part, err := l.lowerTerm(parentName, terms[0])
				if err != nil {
					return grammar.ConfigPart{}, err
				}
				part.Type = groupType
				return part, nil
			}
		}
	}

	subName := l.nextGroupName(parentName)
	if err := l.defineFromAlternatives(subName, seqNodes); err != nil {
		return grammar.ConfigPart{}, err
	}
	return grammar.ConfigPart{Kind: subName, Type: groupType}, nil
}

func termBaseKind(termNode *cst.Node) (string, bool) {
	for _, c := range termNode.Children {
		if c.Kind == "termBase" && len(c.Children) > 0 {
			return c.Children[0].Kind, true
		}
	}
	return "", false
}

func (l *Lowering) nextGroupName(parent string) string {
	n := l.groupCounters[parent]
	l.groupCounters[parent] = n + 1
	return fmt.Sprintf("%s#%d", parent, n)
}

func (l *Lowering) setDefinition(name, typ string, parts []grammar.ConfigPart) {
	node := grammar.ConfigNode{Name: name, Type: typ, Pattern: parts}
	if idx, ok := l.definitionIndex[name]; ok {
		l.cfg.Definitions[idx] = node
		return
	}
	l.definitionIndex[name] = len(l.cfg.Definitions)
	l.cfg.Definitions = append(l.cfg.Definitions, node)
}

func (l *Lowering) ensureLiteral(name, pattern, flags string) {
	if _, ok := l.literalIndex[name]; ok {
		return
	}
	l.literalIndex[name] = len(l.cfg.Literals)
	l.cfg.Literals = append(l.cfg.Literals, grammar.ConfigLiteral{Name: name, Pattern: pattern, Flags: flags})
}

// applyInlining implements spec §4.E "Single-use-literal inlining": a rule
// whose pattern is exactly one required part naming a literal whose
// pattern source equals that part's kind collapses into a single literal
// renamed to the rule's name; the rule itself is dropped.
func (l *Lowering) applyInlining() {
	drop := map[string]bool{}

	for _, cand := range l.inlineCandidates {
		defIdx, ok := l.definitionIndex[cand.name]
		if !ok {
			continue
		}
		def := l.cfg.Definitions[defIdx]
		if def.Type != "sequence" || len(def.Pattern) != 1 || def.Pattern[0].Type != "required" {
			continue
		}
		litName := def.Pattern[0].Kind
		litIdx, ok := l.literalIndex[litName]
		if !ok {
			continue
		}
		lit := l.cfg.Literals[litIdx]
		if lit.Pattern != litName {
			continue
		}

		oldName := lit.Name
		lit.Name = cand.name
		l.cfg.Literals[litIdx] = lit
		delete(l.literalIndex, oldName)
		l.literalIndex[cand.name] = litIdx

		for i := range l.cfg.Definitions {
			for j := range l.cfg.Definitions[i].Pattern {
				if l.cfg.Definitions[i].Pattern[j].Kind == oldName {
					l.cfg.Definitions[i].Pattern[j].Kind = cand.name
				}
			}
		}

		if cand.ignore {
			l.cfg.IgnoredLiterals = append(l.cfg.IgnoredLiterals, cand.name)
		}
		drop[cand.name] = true
	}

	if len(drop) == 0 {
		return
	}
	kept := make([]grammar.ConfigNode, 0, len(l.cfg.Definitions))
	for _, def := range l.cfg.Definitions {
		if !drop[def.Name] {
			kept = append(kept, def)
		}
	}
	l.cfg.Definitions = kept
	l.definitionIndex = map[string]int{}
	for i, def := range l.cfg.Definitions {
		l.definitionIndex[def.Name] = i
	}
}

// unquoteBNFString strips a quoted string term's surrounding quotes and
// undoes its only two escapes (\" and \\), returning the raw pattern text
// the quotes were protecting (spec §4.E: "the unquoted, un-escaped text").
func unquoteBNFString(raw string) (string, error) {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return "", fmt.Errorf("not a quoted string: %q", raw)
	}
	body := raw[1 : len(raw)-1]

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) && (body[i+1] == '"' || body[i+1] == '\\') {
			b.WriteByte(body[i+1])
			i++
			continue
		}
		b.WriteByte(body[i])
	}
	return b.String(), nil
}
