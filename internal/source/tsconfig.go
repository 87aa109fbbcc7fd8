package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/phobologic/archcheck/internal/paths"
)

// TSConfigFile is the compiler configuration read from the project root.
const TSConfigFile = "tsconfig.json"

type tsconfig struct {
	CompilerOptions struct {
		BaseURL string              `json:"baseUrl"`
		Paths   map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

type aliasPattern struct {
	prefix   string
	suffix   string
	wildcard bool
	targets  []string
}

// aliases maps non-relative specifiers through tsconfig baseUrl and paths.
type aliases struct {
	baseURL  string
	hasBase  bool
	patterns []aliasPattern
}

// loadAliases reads TSConfigFile from fsys. A missing file yields nil.
func loadAliases(fsys fs.FS) (*aliases, error) {
	data, err := fs.ReadFile(fsys, TSConfigFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return parseAliases(data)
}

func parseAliases(data []byte) (*aliases, error) {
	var cfg tsconfig
	if err := json.Unmarshal(stripJSONC(data), &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", TSConfigFile, err)
	}
	opts := cfg.CompilerOptions
	a := &aliases{}
	if opts.BaseURL != "" {
		a.baseURL = paths.Clean(opts.BaseURL)
		a.hasBase = true
	}
	for pattern, targets := range opts.Paths {
		p := aliasPattern{prefix: pattern, targets: targets}
		if i := strings.IndexByte(pattern, '*'); i >= 0 {
			p.prefix, p.suffix, p.wildcard = pattern[:i], pattern[i+1:], true
		}
		a.patterns = append(a.patterns, p)
	}
	// Longest prefix wins, exact patterns before wildcards.
	sort.Slice(a.patterns, func(i, j int) bool {
		pi, pj := a.patterns[i], a.patterns[j]
		if pi.wildcard != pj.wildcard {
			return !pi.wildcard
		}
		if len(pi.prefix) != len(pj.prefix) {
			return len(pi.prefix) > len(pj.prefix)
		}
		return pi.prefix < pj.prefix
	})
	if !a.hasBase && len(a.patterns) == 0 {
		return nil, nil
	}
	return a, nil
}

// resolve maps spec to a known file through the first matching paths
// pattern, then through baseUrl.
func (a *aliases) resolve(spec string, known paths.Set) (string, bool) {
	if a == nil {
		return "", false
	}
	for _, p := range a.patterns {
		capture, ok := p.match(spec)
		if !ok {
			continue
		}
		for _, target := range p.targets {
			sub := strings.Replace(target, "*", capture, 1)
			if f, ok := resolveCandidate(a.join(sub), known); ok {
				return f, true
			}
		}
		return "", false
	}
	if a.hasBase {
		return resolveCandidate(a.join(spec), known)
	}
	return "", false
}

func (p aliasPattern) match(spec string) (string, bool) {
	if !p.wildcard {
		return "", spec == p.prefix
	}
	if len(spec) < len(p.prefix)+len(p.suffix) || !strings.HasPrefix(spec, p.prefix) || !strings.HasSuffix(spec, p.suffix) {
		return "", false
	}
	return spec[len(p.prefix) : len(spec)-len(p.suffix)], true
}

func (a *aliases) join(rel string) string {
	return path.Clean(path.Join(a.baseURL, rel))
}

// stripJSONC removes comments and trailing commas so tsconfig files decode
// as plain JSON.
func stripJSONC(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inString := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out = append(out, c)
			switch c {
			case '\\':
				if i+1 < len(data) {
					i++
					out = append(out, data[i])
				}
			case '"':
				inString = false
			}
			continue
		}
		switch {
		case c == '"':
			inString = true
			out = append(out, c)
		case c == '/' && i+1 < len(data) && data[i+1] == '/':
			for i < len(data) && data[i] != '\n' {
				i++
			}
			if i < len(data) {
				out = append(out, '\n')
			}
		case c == '/' && i+1 < len(data) && data[i+1] == '*':
			i += 2
			for i+1 < len(data) && (data[i] != '*' || data[i+1] != '/') {
				i++
			}
			i++
		case c == ']' || c == '}':
			j := len(out) - 1
			for j >= 0 && isJSONSpace(out[j]) {
				j--
			}
			if j >= 0 && out[j] == ',' {
				out = append(out[:j], out[j+1:]...)
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return out
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
