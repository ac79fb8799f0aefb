// Package resume assembles the priority-fill session digest (spec.md
// §4.8): a token-budgeted markdown document built from recent
// observations and recently indexed files. Grounded on mache's
// cmd/agent.go agentPromptTemplate markdown-assembly style, generalized
// from a single fixed prompt shape to a budget-aware, section-skipping
// renderer.
package resume

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chrispaulintheory/ContextGraph/internal/capsule"
	"github.com/chrispaulintheory/ContextGraph/internal/observations"
	"github.com/chrispaulintheory/ContextGraph/internal/store"
)

// Renderer assembles resume digests for one project.
type Renderer struct {
	store   *store.Store
	obs     *observations.Service
	capsule *capsule.Renderer
}

// New returns a Renderer backed by s, rendering file capsules through cap.
func New(s *store.Store, cap *capsule.Renderer) *Renderer {
	return &Renderer{store: s, obs: observations.New(s), capsule: cap}
}

// Render builds the resume digest for the given token budget and lookback
// window in hours (spec.md §4.8).
func (r *Renderer) Render(ctx context.Context, budget, hours int) (string, error) {
	since := nowSeconds() - float64(hours)*3600

	decisions, err := r.renderDecisions(since)
	if err != nil {
		return "", err
	}
	commits, err := r.renderCommits(since)
	if err != nil {
		return "", err
	}
	files, err := r.renderRecentFiles(ctx, since, budget)
	if err != nil {
		return "", err
	}
	touched, err := r.renderFilesTouched(since)
	if err != nil {
		return "", err
	}

	var sections []string
	remaining := budget

	if decisions != "" {
		cost := tokenLen(decisions)
		if cost <= remaining {
			sections = append(sections, decisions)
			remaining -= cost
		} else {
			truncated := decisions
			if max := budget * 4; len(truncated) > max {
				truncated = truncated[:max]
			}
			sections = append(sections, truncated)
			remaining = 0
		}
	}

	for _, s := range []string{commits, files, touched} {
		if s == "" {
			continue
		}
		cost := tokenLen(s)
		if cost <= remaining {
			sections = append(sections, s)
			remaining -= cost
		}
	}

	if len(sections) == 0 {
		return "No recent activity found.\n", nil
	}

	used := budget - remaining
	var b strings.Builder
	b.WriteString("# Session Resume\n\n")
	b.WriteString(strings.Join(sections, "\n"))
	fmt.Fprintf(&b, "\nBudget used: ~%d of %d tokens\n", used, budget)
	return b.String(), nil
}

func (r *Renderer) renderDecisions(since float64) (string, error) {
	claude, err := r.obs.Since(since, "claude", 0)
	if err != nil {
		return "", fmt.Errorf("resume: decisions (claude): %w", err)
	}
	user, err := r.obs.Since(since, "user", 0)
	if err != nil {
		return "", fmt.Errorf("resume: decisions (user): %w", err)
	}
	merged := mergeNewestFirst(claude, user)
	if len(merged) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("## Decisions & Notes\n\n")
	for _, o := range merged {
		fmt.Fprintf(&b, "- (%s) %s\n", o.Source, o.Content)
	}
	return b.String(), nil
}

func (r *Renderer) renderCommits(since float64) (string, error) {
	commits, err := r.obs.Since(since, "git", 0)
	if err != nil {
		return "", fmt.Errorf("resume: commits: %w", err)
	}
	if len(commits) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("## Recent Commits\n\n")
	for _, o := range commits {
		fmt.Fprintf(&b, "- %s\n", o.Content)
	}
	return b.String(), nil
}

func (r *Renderer) renderRecentFiles(ctx context.Context, since float64, budget int) (string, error) {
	files, err := r.store.ListRecentlyIndexedFiles(since, 0)
	if err != nil {
		return "", fmt.Errorf("resume: recently indexed files: %w", err)
	}
	if len(files) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("## Recently Modified Files\n\n")
	used := 0
	for _, f := range files {
		if used >= budget {
			break
		}
		moduleID := moduleIDFromBasename(f.FilePath)
		doc, err := r.capsule.Render(ctx, moduleID, 1)
		if err == nil {
			cost := tokenLen(doc)
			if used+cost <= budget {
				b.WriteString(doc)
				b.WriteString("\n")
				used += cost
				continue
			}
		}
		ref := fmt.Sprintf("- %s (indexed at %.0f)\n", f.FilePath, f.IndexedAt)
		used += tokenLen(ref)
		b.WriteString(ref)
	}
	return b.String(), nil
}

func (r *Renderer) renderFilesTouched(since float64) (string, error) {
	hooks, err := r.obs.Since(since, "hook", 0)
	if err != nil {
		return "", fmt.Errorf("resume: files touched: %w", err)
	}
	hooks = dedupeHookObservations(hooks)
	if len(hooks) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("## Files Touched\n\n")
	for _, o := range hooks {
		fmt.Fprintf(&b, "- %s\n", o.Content)
	}
	return b.String(), nil
}

// dedupeHookObservations collapses every occurrence of identical content
// across the whole (newest-first) list down to its first — i.e. most
// recent — occurrence, matching the original's deduplicate_hook_observations
// (original_source/src/context_graph/observations.py), which keys purely on
// content across the full list rather than per-node adjacency.
func dedupeHookObservations(obs []store.Observation) []store.Observation {
	seenContent := map[string]bool{}
	var out []store.Observation
	for _, o := range obs {
		if seenContent[o.Content] {
			continue
		}
		seenContent[o.Content] = true
		out = append(out, o)
	}
	return out
}

func mergeNewestFirst(a, b []store.Observation) []store.Observation {
	seen := map[int64]bool{}
	var out []store.Observation
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		var pick store.Observation
		if a[i].CreatedAt >= b[j].CreatedAt {
			pick = a[i]
			i++
		} else {
			pick = b[j]
			j++
		}
		if !seen[pick.ID] {
			seen[pick.ID] = true
			out = append(out, pick)
		}
	}
	for ; i < len(a); i++ {
		if !seen[a[i].ID] {
			seen[a[i].ID] = true
			out = append(out, a[i])
		}
	}
	for ; j < len(b); j++ {
		if !seen[b[j].ID] {
			seen[b[j].ID] = true
			out = append(out, b[j])
		}
	}
	return out
}

func moduleIDFromBasename(path string) string {
	base := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			base = path[i+1:]
			break
		}
	}
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[:i]
	}
	return base
}

func tokenLen(s string) int { return len(s) / 4 }

func nowSeconds() float64 { return float64(time.Now().UnixNano()) / 1e9 }
