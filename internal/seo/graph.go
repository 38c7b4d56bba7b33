package seo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Graph accumulates schema nodes for a single @graph document.
type Graph struct {
	nodes []map[string]any
	seen  map[string]struct{}
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{seen: make(map[string]struct{})}
}

// Add appends nodes, dropping nil nodes, the per-node @context and any node
// whose @id is already present.
func (g *Graph) Add(nodes ...map[string]any) *Graph {
	if g.seen == nil {
		g.seen = make(map[string]struct{})
	}
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if id, ok := n["@id"].(string); ok && id != "" {
			if _, dup := g.seen[id]; dup {
				continue
			}
			g.seen[id] = struct{}{}
		}
		g.nodes = append(g.nodes, withoutContext(n))
	}
	return g
}

// Len is the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Build returns {"@context", "@graph"}.
func (g *Graph) Build() map[string]any {
	nodes := make([]map[string]any, len(g.nodes))
	copy(nodes, g.nodes)
	return map[string]any{
		"@context": schemaContext,
		"@graph":   nodes,
	}
}

// Merge combines graph documents and single nodes into one graph. Nodes are
// deduplicated by @id, first occurrence wins. Nodes without @id are kept.
func Merge(docs ...map[string]any) map[string]any {
	g := NewGraph()
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if raw, ok := doc["@graph"]; ok {
			g.Add(graphNodes(raw)...)
			continue
		}
		if _, ok := doc["@type"]; ok {
			g.Add(doc)
		}
	}
	return g.Build()
}

// Validation failures.
var (
	ErrMissingContext = errors.New("missing @context at root level")
	ErrMissingType    = errors.New("missing @type")
	ErrGraphNotArray  = errors.New("@graph must be an array")
)

// Validate reports structural problems in a schema document. A nil result means valid.
func Validate(schema map[string]any) []error {
	var errs []error
	if schema == nil {
		return []error{ErrMissingType}
	}
	_, hasContext := schema["@context"]
	raw, hasGraph := schema["@graph"]
	if !hasContext && !hasGraph {
		errs = append(errs, ErrMissingContext)
	}

	if hasGraph {
		nodes, ok := asNodeList(raw)
		if !ok {
			errs = append(errs, ErrGraphNotArray)
		} else {
			for i, n := range nodes {
				if !hasType(n) {
					errs = append(errs, fmt.Errorf("item at index %d: %w", i, ErrMissingType))
				}
			}
		}
	} else if !hasType(schema) {
		errs = append(errs, ErrMissingType)
	}

	if _, err := json.Marshal(schema); err != nil {
		errs = append(errs, fmt.Errorf("invalid JSON structure: %w", err))
	}
	return errs
}

// PreviewRichSnippet renders a plain text approximation of how search results
// would present the FAQ, product and breadcrumb nodes of a schema document.
func PreviewRichSnippet(schema map[string]any) string {
	nodes := []map[string]any{schema}
	if raw, ok := schema["@graph"]; ok {
		nodes = graphNodes(raw)
	}

	var b strings.Builder
	for _, n := range nodes {
		typ, _ := n["@type"].(string)
		switch typ {
		case "FAQPage":
			b.WriteString("FAQ Rich Snippet:\n")
			for i, q := range graphNodes(n["mainEntity"]) {
				if i == 3 {
					break
				}
				answer := ""
				if a, ok := q["acceptedAnswer"].(map[string]any); ok {
					answer, _ = a["text"].(string)
				}
				fmt.Fprintf(&b, "Q: %v\nA: %s\n\n", q["name"], Truncate(answer, 100))
			}
		case "Product":
			b.WriteString("Product Rich Snippet:\n")
			fmt.Fprintf(&b, "Name: %v\n", n["name"])
			if r, ok := n["aggregateRating"].(map[string]any); ok {
				fmt.Fprintf(&b, "Rating: %v (%v reviews)\n", r["ratingValue"], r["reviewCount"])
			}
			if price := offerPrice(n["offers"]); price != nil {
				fmt.Fprintf(&b, "Price: From $%v\n", price)
			}
		case "BreadcrumbList":
			b.WriteString("Breadcrumb:\n")
			var names []string
			for _, item := range graphNodes(n["itemListElement"]) {
				names = append(names, fmt.Sprint(item["name"]))
			}
			b.WriteString(strings.Join(names, " > "))
			b.WriteString("\n")
		}
	}
	if b.Len() == 0 {
		return "No rich snippet preview available for this schema type"
	}
	return b.String()
}

func offerPrice(raw any) any {
	switch o := raw.(type) {
	case map[string]any:
		if v, ok := o["lowPrice"]; ok {
			return v
		}
		return o["price"]
	case []map[string]any:
		if len(o) > 0 {
			return offerPrice(o[0])
		}
	}
	return nil
}

func withoutContext(n map[string]any) map[string]any {
	if _, ok := n["@context"]; !ok {
		return n
	}
	out := make(map[string]any, len(n)-1)
	for k, v := range n {
		if k != "@context" {
			out[k] = v
		}
	}
	return out
}

func hasType(n map[string]any) bool {
	v, ok := n["@type"]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	return true
}

func asNodeList(raw any) ([]map[string]any, bool) {
	switch v := raw.(type) {
	case []map[string]any:
		return v, true
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			m, _ := item.(map[string]any)
			if m == nil {
				m = map[string]any{}
			}
			out = append(out, m)
		}
		return out, true
	default:
		return nil, false
	}
}

func graphNodes(raw any) []map[string]any {
	nodes, _ := asNodeList(raw)
	return nodes
}
