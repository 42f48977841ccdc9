package chart

import (
	"log/slog"
	"sort"

	"github.com/ledgerdesk/coa/internal/model"
)

// Build returns the whole forest as a pre-order walk starting from the roots.
func Build(accounts []model.Account) []model.TreeEntry {
	return BuildFrom(accounts, "", 0)
}

// BuildFrom walks the accounts whose parent is rootParentID ("" selects the
// roots), depth first, parent before children. Siblings are ordered by code
// using plain string comparison. Each account appears at most once; an id
// reached a second time is skipped and logged, as a cycle when it is an
// ancestor of itself and as a duplicate otherwise.
func BuildFrom(accounts []model.Account, rootParentID string, level int) []model.TreeEntry {
	if level < 0 {
		level = 0
	}
	w := &walker{
		children: groupByParent(accounts),
		visited:  make(map[string]bool, len(accounts)),
		onPath:   make(map[string]bool),
		out:      make([]model.TreeEntry, 0, len(accounts)),
	}
	w.walk(rootParentID, level)
	return w.out
}

type walker struct {
	children map[string][]model.Account
	visited  map[string]bool
	onPath   map[string]bool
	out      []model.TreeEntry
}

func (w *walker) walk(parentID string, level int) {
	for _, acct := range w.children[parentID] {
		if w.visited[acct.ID] {
			msg := "account revisited in hierarchy"
			if w.onPath[acct.ID] {
				msg = "account hierarchy cycle"
			}
			slog.Warn(msg,
				slog.String("account_id", acct.ID),
				slog.String("parent_id", parentID))
			continue
		}
		w.visited[acct.ID] = true
		w.out = append(w.out, model.TreeEntry{Account: acct, Level: level})
		w.onPath[acct.ID] = true
		w.walk(acct.ID, level+1)
		delete(w.onPath, acct.ID)
	}
}

// groupByParent indexes accounts by parent id, each group sorted by code.
func groupByParent(accounts []model.Account) map[string][]model.Account {
	groups := make(map[string][]model.Account)
	for _, a := range accounts {
		groups[a.ParentID] = append(groups[a.ParentID], a)
	}
	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool {
			return g[i].Code < g[j].Code
		})
	}
	return groups
}
