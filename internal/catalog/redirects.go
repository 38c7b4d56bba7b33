package catalog

import (
	"fmt"
	"strings"
)

type segment struct {
	prefix string
	param  string
}

type redirectRule struct {
	from      []segment
	to        []segment
	permanent bool
}

// RedirectError reports a redirect entry that cannot be compiled.
type RedirectError struct {
	From   string
	Reason string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("catalog: redirect %q: %s", e.From, e.Reason)
}

func compileRedirects(items []Redirect) ([]redirectRule, error) {
	seen := make(map[string]bool, len(items))
	rules := make([]redirectRule, 0, len(items))
	for i, rd := range items {
		from := cleanPath(rd.From)
		if !strings.HasPrefix(from, "/") {
			return nil, fmt.Errorf("catalog: %s entry %d: from must be an absolute path", FileRedirects, i)
		}
		if seen[from] {
			return nil, &DuplicateError{File: FileRedirects, Key: from}
		}
		seen[from] = true

		to := strings.TrimSpace(rd.To)
		switch {
		case !strings.HasPrefix(to, "/") || strings.HasPrefix(to, "//"):
			return nil, &RedirectError{From: from, Reason: "target must be a site path"}
		case strings.ContainsAny(to, "?#"):
			return nil, &RedirectError{From: from, Reason: "target must not carry a query or fragment"}
		case cleanPath(to) == from:
			return nil, &RedirectError{From: from, Reason: "redirects to itself"}
		}

		fromSegs, err := parsePattern(from)
		if err != nil {
			return nil, &RedirectError{From: from, Reason: err.Error()}
		}
		toSegs, err := parsePattern(cleanPath(to))
		if err != nil {
			return nil, &RedirectError{From: from, Reason: err.Error()}
		}
		params := map[string]bool{}
		for _, s := range fromSegs {
			if s.param == "" {
				continue
			}
			if params[s.param] {
				return nil, &RedirectError{From: from, Reason: "parameter :" + s.param + " repeats"}
			}
			params[s.param] = true
		}
		for _, s := range toSegs {
			if s.param != "" && !params[s.param] {
				return nil, &RedirectError{From: from, Reason: "target uses unknown parameter :" + s.param}
			}
		}
		rules = append(rules, redirectRule{from: fromSegs, to: toSegs, permanent: rd.IsPermanent()})
	}

	// a literal target that is itself redirected would bounce between rules
	for _, rule := range rules {
		target, literal := rule.literalTarget()
		if !literal {
			continue
		}
		for _, other := range rules {
			if _, ok := other.match(target); ok {
				return nil, &RedirectError{From: joinSegments(rule.from), Reason: "target " + target + " is redirected again"}
			}
		}
	}
	return rules, nil
}

func parsePattern(p string) ([]segment, error) {
	if p == "/" {
		return nil, nil
	}
	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	segs := make([]segment, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("empty path segment")
		}
		prefix, param, hasParam := strings.Cut(part, ":")
		if !hasParam {
			segs = append(segs, segment{prefix: part})
			continue
		}
		if param == "" || strings.ContainsAny(param, ":-.") {
			return nil, fmt.Errorf("bad parameter in segment %q", part)
		}
		segs = append(segs, segment{prefix: prefix, param: param})
	}
	return segs, nil
}

func (r redirectRule) match(p string) (map[string]string, bool) {
	var parts []string
	if p != "/" {
		parts = strings.Split(strings.TrimPrefix(p, "/"), "/")
	}
	if len(parts) != len(r.from) {
		return nil, false
	}
	var values map[string]string
	for i, s := range r.from {
		part := parts[i]
		if s.param == "" {
			if part != s.prefix {
				return nil, false
			}
			continue
		}
		value, ok := strings.CutPrefix(part, s.prefix)
		if !ok || value == "" {
			return nil, false
		}
		if values == nil {
			values = map[string]string{}
		}
		values[s.param] = value
	}
	return values, true
}

func (r redirectRule) expand(values map[string]string) string {
	var b strings.Builder
	for _, s := range r.to {
		b.WriteByte('/')
		b.WriteString(s.prefix)
		if s.param != "" {
			b.WriteString(values[s.param])
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

func (r redirectRule) literalTarget() (string, bool) {
	for _, s := range r.to {
		if s.param != "" {
			return "", false
		}
	}
	return r.expand(nil), true
}

func joinSegments(segs []segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteByte('/')
		b.WriteString(s.prefix)
		if s.param != "" {
			b.WriteString(":" + s.param)
		}
	}
	return b.String()
}

// cleanPath trims whitespace and a trailing slash, keeping the root.
func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}

// Redirect resolves path against the redirect table. The first matching
// entry in file order wins.
func (c *Catalog) Redirect(path string) (to string, permanent, ok bool) {
	p := cleanPath(path)
	for _, rule := range c.redirects {
		if values, matched := rule.match(p); matched {
			return rule.expand(values), rule.permanent, true
		}
	}
	return "", false, false
}
