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

// Command xircc is a thin CLI over the tokenizer/parser engine, the BNF
// lowering pass, and the C preprocessor. It is an external collaborator
// per spec.md §1, not part of the core spec: argument parsing, file I/O,
// and result formatting live here so the core packages stay free of any
// notion of "the command line."
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/xircomp/xircc/internal/bnf"
	"github.com/xircomp/xircc/internal/cfrag"
	"github.com/xircomp/xircc/internal/collections"
	"github.com/xircomp/xircc/internal/cpp"
	"github.com/xircomp/xircc/internal/cst"
	"github.com/xircomp/xircc/internal/grammar"
	"github.com/xircomp/xircc/internal/issue"
	"github.com/xircomp/xircc/internal/parser"
	"github.com/xircomp/xircc/internal/token"
)

const version = "0.1.0"

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <from>:<to> <input...> [flags]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "sources: c, bnf\n")
	fmt.Fprintf(os.Stderr, "targets: cst-json (from c or bnf), grammar-json (from bnf)\n\n")
	flag.PrintDefaults()
}

func main() {
	var (
		output  string
		help    bool
		showVer bool
		verbose bool
	)
	flag.StringVar(&output, "o", "", "output file path (default: stdout)")
	flag.StringVar(&output, "output", "", "output file path (default: stdout)")
	flag.BoolVar(&help, "h", false, "show help")
	flag.BoolVar(&help, "help", false, "show help")
	flag.BoolVar(&showVer, "v", false, "show version")
	flag.BoolVar(&showVer, "version", false, "show version")
	flag.BoolVar(&verbose, "w", false, "verbose diagnostics")
	flag.BoolVar(&verbose, "verbose", false, "verbose diagnostics")
	flag.Usage = usage
	flag.Parse()

	if help {
		usage()
		os.Exit(0)
	}
	if showVer {
		fmt.Println("xircc " + version)
		os.Exit(0)
	}

	if flag.NArg() < 2 {
		usage()
		log.Printf("expected <from>:<to> and at least one input argument")
		os.Exit(1)
	}

	fromTo := flag.Arg(0)
	from, to, ok := strings.Cut(fromTo, ":")
	if !ok {
		log.Printf("malformed <from>:<to> argument %q", fromTo)
		os.Exit(1)
	}

	files, err := expandInputs(flag.Args()[1:])
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	sink := &issue.SliceSink{}
	result, err := run(from, to, files, sink)
	for _, i := range sink.Issues {
		if i.Level == issue.Debug && !verbose {
			continue
		}
		if i.Level == issue.Note && !verbose {
			continue
		}
		log.Print(i.Format(false))
	}
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	if output == "" {
		fmt.Println(result)
		return
	}
	if err := os.WriteFile(output, []byte(result+"\n"), 0o644); err != nil {
		log.Printf("writing output: %v", err)
		os.Exit(1)
	}
}

// expandInputs glob-expands every argument with doublestar, the same
// globbing library the teacher uses to match BUILD-relevant source files
// (index/internal/bcr/registry.go, language/cc/resolve.go). Arguments that
// are not glob patterns and name an existing file pass through unchanged.
func expandInputs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if !doublestar.ValidatePattern(arg) {
			files = append(files, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", arg, err)
		}
		if len(matches) == 0 {
			files = append(files, arg)
			continue
		}
		files = append(files, matches...)
	}
	return files, nil
}

func run(from, to string, files []string, sink issue.Sink) (string, error) {
	switch from {
	case "c":
		return runC(to, files, sink)
	case "bnf":
		return runBNF(to, files, sink)
	case "clang-ast":
		return "", fmt.Errorf("unsupported source %q: the Clang-JSON-AST reader is an external collaborator, not part of this build", from)
	default:
		return "", fmt.Errorf("unsupported source %q", from)
	}
}

// runC preprocesses each input with the C preprocessor (internal/cpp),
// then tokenizes and parses the result with the bundled C-fragment
// grammar (internal/cfrag), per spec.md §1's scope: "#include"/conditional
// extraction, not a full C front-end.
func runC(to string, files []string, sink issue.Sink) (string, error) {
	if to != "cst-json" {
		return "", fmt.Errorf("unsupported target %q for source \"c\"", to)
	}

	g, err := cfrag.Bootstrap()
	if err != nil {
		return "", fmt.Errorf("loading c-fragment grammar: %w", err)
	}

	var allNodes []*cst.Node
	for _, path := range files {
		nodes, err := preprocessAndParseC(path, &g, sink)
		if err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		allNodes = append(allNodes, nodes...)
	}

	data, err := json.MarshalIndent(allNodes, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling cst: %w", err)
	}
	return string(data), nil
}

func preprocessAndParseC(path string, g *grammar.Grammar, sink issue.Sink) ([]*cst.Node, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading: %w", err)
	}

	pp := cpp.New(resolveFilesystem, sink)
	env := cpp.NewEnvironment()
	out, err := pp.Process(string(source), path, env, collections.Set[string]{})
	if err != nil {
		return nil, fmt.Errorf("preprocessing: %w", err)
	}

	toks, err := token.Tokenize(out.Text, g.Literals, path, sink)
	if err != nil {
		return nil, fmt.Errorf("tokenizing: %w", err)
	}
	if len(toks) == 0 {
		return nil, nil
	}
	nodes, err := parser.Parse(g, toks, sink)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	return nodes, nil
}

// resolveFilesystem satisfies cpp.FileResolver by reading files relative to
// currentUnit's directory for "..." includes; "<...>" system includes are
// reported missing-but-recoverable since this demo CLI configures no system
// include search path (spec.md §6: "Returning empty contents with a
// sentinel unit is the documented way to signal a missing-but-recoverable
// header"). is_next is not distinguished from a plain include since there
// is only one search root to resume after.
func resolveFilesystem(name string, startRelative, isNext, isInclude bool, currentUnit string) (contents, unit string, ok bool) {
	if !startRelative {
		return "", "", false
	}
	resolvedPath := filepath.Join(filepath.Dir(currentUnit), name)
	data, err := os.ReadFile(resolvedPath)
	if err != nil {
		return "", "", false
	}
	return string(data), resolvedPath, true
}

// runBNF tokenizes and parses each input against the bundled bootstrap BNF
// grammar (internal/bnf.Bootstrap), then lowers the CST into a grammar
// config or dumps the raw CST, depending on to.
func runBNF(to string, files []string, sink issue.Sink) (string, error) {
	if to != "cst-json" && to != "grammar-json" {
		return "", fmt.Errorf("unsupported target %q for source \"bnf\"", to)
	}

	g, err := bnf.Bootstrap()
	if err != nil {
		return "", fmt.Errorf("loading bootstrap grammar: %w", err)
	}

	var allNodes []*cst.Node
	for _, path := range files {
		source, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("%s: reading: %w", path, err)
		}
		toks, err := token.Tokenize(string(source), g.Literals, path, sink)
		if err != nil {
			return "", fmt.Errorf("%s: tokenizing: %w", path, err)
		}
		nodes, err := parser.Parse(&g, toks, sink)
		if err != nil {
			return "", fmt.Errorf("%s: parsing: %w", path, err)
		}
		allNodes = append(allNodes, nodes...)
	}

	if to == "cst-json" {
		data, err := json.MarshalIndent(allNodes, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshaling cst: %w", err)
		}
		return string(data), nil
	}

	cfg, err := bnf.Lower(allNodes, sink, nil)
	if err != nil {
		return "", fmt.Errorf("lowering: %w", err)
	}
	data, err := cfg.Marshal()
	if err != nil {
		return "", fmt.Errorf("marshaling grammar: %w", err)
	}
	return string(data), nil
}
