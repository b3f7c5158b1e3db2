// pkg/parser/parser.go
// Package parser turns raw tool output into structured result mappings.
// Parsers are pure: they take captured stdout/stderr and return a mapping,
// never an error. Output that cannot be understood comes back with
// "parsed": false and the raw text preserved, so a broken parser can never
// lose scan output.
package parser

import (
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Parser extracts structured data from one tool's output.
type Parser interface {
	// Tool returns the tool name this parser handles (e.g., "nmap").
	Tool() string

	// Parse converts captured output into a result mapping. Implementations
	// must not panic and must not return nil; the dispatcher guards both.
	Parse(stdout, stderr string) map[string]interface{}
}

var (
	mu       sync.RWMutex
	registry = make(map[string]Parser)
)

// Register adds a parser to the registry, replacing any previous parser for
// the same tool.
func Register(p Parser) {
	mu.Lock()
	defer mu.Unlock()
	registry[p.Tool()] = p
}

// Lookup returns the parser registered for tool.
func Lookup(tool string) (Parser, bool) {
	mu.RLock()
	defer mu.RUnlock()
	p, ok := registry[tool]
	return p, ok
}

// Parse dispatches output to the parser registered for tool. Unknown tools,
// nil results and panicking parsers all degrade to the raw fallback; callers
// always get a usable mapping.
func Parse(tool, stdout, stderr string) map[string]interface{} {
	p, ok := Lookup(tool)
	if !ok {
		return Fallback(stdout, stderr)
	}
	return safeParse(p, stdout, stderr)
}

func safeParse(p Parser, stdout, stderr string) (out map[string]interface{}) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Str("tool", p.Tool()).Interface("panic", r).Msg("output parser panicked, falling back to raw output")
			out = Fallback(stdout, stderr)
		}
	}()

	out = p.Parse(stdout, stderr)
	if out == nil {
		out = Fallback(stdout, stderr)
	}
	return out
}

// Fallback wraps unparseable output, keeping every captured byte.
func Fallback(stdout, stderr string) map[string]interface{} {
	out := map[string]interface{}{
		"parsed": false,
		"raw":    stdout,
	}
	if strings.TrimSpace(stderr) != "" {
		out["stderr"] = stderr
	}
	return out
}
