// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search runs templated queries against a rate-limited web search API
// and returns the collected result snippets.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode/utf8"
	"unicode"

	"github.com/pdiddy/visibility-engine/pkg/types"
)

// Backend executes a single query against one web search API.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string) ([]types.SearchResult, error)
}

// Deduplicate drops results whose normalized link, or normalized title when
// the link is empty, was already seen. Order of first occurrence is kept.
func Deduplicate(results []types.SearchResult) ([]types.SearchResult, int) {
	seen := make(map[string]int) // dedup key → index in deduped
	var deduped []types.SearchResult
	removed := 0

	for _, r := range results {
		key := dedupKey(r)
		if key == "" {
			deduped = append(deduped, r)
			continue
		}
		if idx, ok := seen[key]; ok {
			mergeInto(&deduped[idx], r)
			removed++
			continue
		}
		seen[key] = len(deduped)
		deduped = append(deduped, r)
	}
	return deduped, removed
}

func dedupKey(r types.SearchResult) string {
	if link := normalizeLink(r.Link); link != "" {
		return "link:" + link
	}
	if title := normalizeTitle(r.Name); title != "" {
		return "title:" + title
	}
	return ""
}

// mergeInto fills empty fields of dst from src.
func mergeInto(dst *types.SearchResult, src types.SearchResult) {
	if dst.Name == "" {
		dst.Name = src.Name
	}
	if len(src.Snippet) > len(dst.Snippet) {
		dst.Snippet = src.Snippet
	}
}

// normalizeLink lowercases the host, drops the scheme, "www.", query,
// fragment, and trailing slash.
func normalizeLink(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSpace(link))
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	return host + strings.TrimSuffix(u.Path, "/")
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the title.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Evidence renders results as the text block handed to the name extractor.
func Evidence(results []types.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.TrimSpace(r.Name))
		if s := strings.TrimSpace(r.Snippet); s != "" {
			fmt.Fprintf(&b, "   %s\n", strings.Join(strings.Fields(s), " "))
		}
		if r.Link != "" {
			fmt.Fprintf(&b, "   %s\n", r.Link)
		}
	}
	return b.String()
}

// FormatTable writes results as a human-readable table to w.
func FormatTable(results []types.SearchResult, w io.Writer) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-50s  %s\n", "Rank", "Title", "Link")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, r := range results {
		fmt.Fprintf(w, "%-4d  %-50s  %s\n", i+1, Truncate(r.Name, 50), r.Link)
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(results []types.SearchResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// Truncate shortens s to at most max runes, ending in "..." when cut.
// It never splits a multi-byte rune.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 3 {
		return string([]rune(s)[:max])
	}
	return string([]rune(s)[:max-3]) + "..."
}
