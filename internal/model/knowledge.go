package model

import "strings"

// KnowledgeBaseGroup is a named, reusable set of reference URLs.
type KnowledgeBaseGroup struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	URLs []string `json:"urls"`
}

// NormalizeURLs trims every entry and drops blanks and repeats, keeping the
// first occurrence order.
func NormalizeURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	seen := make(map[string]struct{}, len(urls))
	for _, raw := range urls {
		u := strings.TrimSpace(raw)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// ParseURLList splits newline-delimited input into a normalized URL list.
func ParseURLList(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return NormalizeURLs(strings.Split(text, "\n"))
}

func (g KnowledgeBaseGroup) Clone() KnowledgeBaseGroup {
	out := g
	out.URLs = append([]string(nil), g.URLs...)
	return out
}
