package naming

import (
	"strings"

	"github.com/pders01/zfs-tools/internal/models"
)

// RogueRules decides which snapshots count as rogue
type RogueRules struct {
	// Schemes lists the conforming name shapes
	Schemes []Scheme
	// IgnoreDatasets are dataset subtrees which are never checked
	IgnoreDatasets []string
	// IgnoreNames are snapshot names which always conform
	IgnoreNames []string
}

// FindRogues returns the snapshots whose names fit none of the rules'
// schemes, in the order given
func FindRogues(snapshots []models.Snapshot, rules RogueRules) []models.Snapshot {
	var out []models.Snapshot
	for _, s := range snapshots {
		if rules.ignoredDataset(s.Dataset) || rules.ignoredName(s.Name) {
			continue
		}
		if !IsConformant(s.Name, rules.Schemes) {
			out = append(out, s)
		}
	}
	return out
}

func (r RogueRules) ignoredDataset(dataset string) bool {
	for _, p := range r.IgnoreDatasets {
		p = strings.TrimSuffix(p, "/")
		if dataset == p || strings.HasPrefix(dataset, p+"/") {
			return true
		}
	}
	return false
}

func (r RogueRules) ignoredName(name string) bool {
	for _, n := range r.IgnoreNames {
		if n == name {
			return true
		}
	}
	return false
}
