package lint

import (
	"regexp"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher is a compiled, cached set of include globs plus optional negated
// exclusion globs (§4.5: "A matcher is a list of include-globs and optional
// negation-globs"). Compilation itself is a no-op for doublestar (patterns
// are plain strings matched lazily), but the cache still avoids repeated
// string parsing and negation bookkeeping per file, mirroring the
// discovery walker's include/exclude split (internal/discovery/discovery.go).
type Matcher struct {
	include []string
	exclude []string

	mu    sync.Mutex
	cache map[string]bool
}

// NewMatcher splits patterns into includes and `!`-prefixed excludes.
func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{cache: make(map[string]bool)}
	for _, p := range patterns {
		if len(p) > 0 && p[0] == '!' {
			m.exclude = append(m.exclude, p[1:])
		} else {
			m.include = append(m.include, p)
		}
	}
	return m
}

// Match reports whether a project-relative path matches this matcher.
func (m *Matcher) Match(path string) bool {
	m.mu.Lock()
	if v, ok := m.cache[path]; ok {
		m.mu.Unlock()
		return v
	}
	m.mu.Unlock()

	result := m.matchUncached(path)

	m.mu.Lock()
	m.cache[path] = result
	m.mu.Unlock()
	return result
}

func (m *Matcher) matchUncached(path string) bool {
	if len(m.include) == 0 {
		return false
	}
	matched := false
	for _, g := range m.include {
		if ok, _ := doublestar.Match(g, path); ok {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, g := range m.exclude {
		if ok, _ := doublestar.Match(g, path); ok {
			return false
		}
	}
	return true
}

// regexCache memoizes compiled `must_match` regexes across rule evaluations
// (Naming boundary, §4.5).
type regexCache struct {
	mu    sync.Mutex
	cache map[string]*regexp.Regexp
}

func newRegexCache() *regexCache {
	return &regexCache{cache: make(map[string]*regexp.Regexp)}
}

func (c *regexCache) compile(pattern string) (*regexp.Regexp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if re, ok := c.cache[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	c.cache[pattern] = re
	return re, nil
}
