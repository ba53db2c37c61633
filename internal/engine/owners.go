package engine

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
)

// Owner is a workload controller and the number of pods it currently owns.
type Owner struct {
	domain.OwnerKey
	Count int `json:"count"`
}

// CollectOwners counts pods per owner. The result is sorted by owner name;
// owners sharing a name keep the order in which they were first seen.
func CollectOwners(nodes []domain.Node) []Owner {
	index := map[domain.OwnerKey]int{}
	owners := make([]Owner, 0)
	for _, n := range nodes {
		for _, p := range n.Pods {
			k := p.OwnerKey()
			if i, ok := index[k]; ok {
				owners[i].Count++
				continue
			}
			index[k] = len(owners)
			owners = append(owners, Owner{OwnerKey: k, Count: 1})
		}
	}
	sort.SliceStable(owners, func(i, j int) bool { return owners[i].Name < owners[j].Name })
	return owners
}

// SearchOwners keeps owners whose "kind/name", name or kind contains query,
// ignoring case. A blank query returns owners unchanged.
func SearchOwners(owners []Owner, query string) []Owner {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return owners
	}
	return lo.Filter(owners, func(o Owner, _ int) bool {
		return strings.Contains(strings.ToLower(o.OwnerKey.String()), q) ||
			strings.Contains(strings.ToLower(o.Name), q) ||
			strings.Contains(strings.ToLower(o.Kind), q)
	})
}

// Selection is an insertion-ordered set of owners. Its operations return a
// new Selection and never modify the receiver.
type Selection []domain.OwnerKey

// ParseSelection parses "kind/name" strings, skipping malformed and
// duplicate entries.
func ParseSelection(keys []string) Selection {
	sel := Selection{}
	for _, s := range keys {
		if k, ok := domain.ParseOwnerKey(s); ok && !sel.Contains(k) {
			sel = append(sel, k)
		}
	}
	return sel
}

func (s Selection) Contains(k domain.OwnerKey) bool { return lo.Contains(s, k) }

func (s Selection) Set() map[domain.OwnerKey]struct{} {
	set := make(map[domain.OwnerKey]struct{}, len(s))
	for _, k := range s {
		set[k] = struct{}{}
	}
	return set
}

func (s Selection) Strings() []string {
	return lo.Map(s, func(k domain.OwnerKey, _ int) string { return k.String() })
}

// Toggle removes k when selected and appends it otherwise.
func (s Selection) Toggle(k domain.OwnerKey) Selection {
	if s.Contains(k) {
		return Selection(lo.Without(s, k))
	}
	return append(s[:len(s):len(s)], k)
}

// SelectAllVisible adds every visible owner, keeping prior entries first.
func SelectAllVisible(current Selection, visible []Owner) Selection {
	next := append(Selection{}, current...)
	set := current.Set()
	for _, o := range visible {
		if _, ok := set[o.OwnerKey]; ok {
			continue
		}
		set[o.OwnerKey] = struct{}{}
		next = append(next, o.OwnerKey)
	}
	return next
}

// DeselectVisible clears the selection when query is blank and otherwise
// removes only the visible owners.
func DeselectVisible(current Selection, visible []Owner, query string) Selection {
	if strings.TrimSpace(query) == "" {
		return Selection{}
	}
	remove := map[domain.OwnerKey]struct{}{}
	for _, o := range visible {
		remove[o.OwnerKey] = struct{}{}
	}
	return lo.Filter(current, func(k domain.OwnerKey, _ int) bool {
		_, drop := remove[k]
		return !drop
	})
}
