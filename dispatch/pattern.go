package dispatch

import (
	"fmt"
	"regexp"
	"strings"
)

// MatchMode selects how a route pattern is compared against the request
// path.
type MatchMode int

const (
	// MatchExact requires the request path to equal the pattern.
	MatchExact MatchMode = iota

	// MatchPrefix requires the request path to start with the pattern.
	MatchPrefix

	// MatchSuffix requires the request path to end with the pattern.
	MatchSuffix

	// MatchRegexp requires the pattern, compiled as a regular
	// expression, to find a match anywhere in the request path. The
	// search is unanchored: pattern "/number/\d+/" matches the path
	// "/prefix/number/42/suffix".
	MatchRegexp
)

// String returns the mode name.
func (m MatchMode) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchPrefix:
		return "prefix"
	case MatchSuffix:
		return "suffix"
	case MatchRegexp:
		return "regexp"
	default:
		return "unknown"
	}
}

// RoutePattern is an immutable matching rule: pattern text, match mode,
// and an optional HTTP-method filter. In regexp mode the pattern is
// compiled once at construction; an invalid expression fails fast.
//
// RoutePattern has no state beyond its construction inputs and is safe
// to evaluate concurrently from multiple dispatch workers.
type RoutePattern struct {
	pattern string
	mode    MatchMode
	method  string
	re      *regexp.Regexp
}

// NewRoutePattern builds a pattern matching any HTTP method. In
// MatchRegexp mode an invalid expression is reported immediately.
func NewRoutePattern(pattern string, mode MatchMode) (RoutePattern, error) {
	p := RoutePattern{pattern: pattern, mode: mode}
	if mode == MatchRegexp {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return RoutePattern{}, fmt.Errorf("dispatch: invalid route pattern %q: %w", pattern, err)
		}
		p.re = re
	}
	return p, nil
}

// MustRoutePattern is like NewRoutePattern but panics on an invalid
// regular expression. Intended for route tables built from literals at
// startup.
func MustRoutePattern(pattern string, mode MatchMode) RoutePattern {
	p, err := NewRoutePattern(pattern, mode)
	if err != nil {
		panic(err)
	}
	return p
}

// ForMethod returns a copy of the pattern that additionally requires the
// request method to equal method exactly (case-sensitive). An empty
// method removes the filter.
func (p RoutePattern) ForMethod(method string) RoutePattern {
	p.method = method
	return p
}

// Pattern returns the pattern text.
func (p RoutePattern) Pattern() string { return p.pattern }

// Mode returns the match mode.
func (p RoutePattern) Mode() MatchMode { return p.mode }

// Method returns the method filter, or the empty string when the
// pattern matches any method.
func (p RoutePattern) Method() string { return p.method }

// Matches reports whether the pattern accepts the given request path
// and method. The method filter is evaluated first: a request with the
// wrong method never matches regardless of the path.
func (p RoutePattern) Matches(requestPath, requestMethod string) bool {
	if p.method != "" && p.method != requestMethod {
		return false
	}
	switch p.mode {
	case MatchExact:
		return requestPath == p.pattern
	case MatchPrefix:
		return strings.HasPrefix(requestPath, p.pattern)
	case MatchSuffix:
		return strings.HasSuffix(requestPath, p.pattern)
	case MatchRegexp:
		return p.re.MatchString(requestPath)
	default:
		return false
	}
}
