// Package reconcile re-derives which journal lines belong in profit-and-loss
// reporting from flags carried on the originating transactions.
package reconcile

import (
	"sort"

	"github.com/cleared-dev/ledgerview/internal/model"
)

// NatureSet is the set of natures observed for one journal-entry id.
type NatureSet uint8

const (
	natureNormal NatureSet = 1 << iota
	natureRevenueOnly
	naturePurchaseOnly
)

func natureBit(n model.Nature) NatureSet {
	switch n {
	case model.NatureRevenueOnly:
		return natureRevenueOnly
	case model.NaturePurchaseOnly:
		return naturePurchaseOnly
	case model.NatureNormal:
		return natureNormal
	}
	return natureNormal
}

// NewNatureSet builds a set from natures.
func NewNatureSet(natures ...model.Nature) NatureSet {
	var s NatureSet
	for _, n := range natures {
		s |= natureBit(n)
	}
	return s
}

// Has reports whether n is in the set.
func (s NatureSet) Has(n model.Nature) bool {
	return s&natureBit(n) != 0
}

// Empty reports whether no nature was observed.
func (s NatureSet) Empty() bool {
	return s == 0
}

// FlagIndex maps journal-entry ids to what their linked transactions say
// about them. One id may be shared by several transactions and several
// journal entries, so every lookup is set-valued.
type FlagIndex struct {
	natures      map[string]NatureSet
	programs     map[string]string
	links        map[string][]string
	live         map[string]bool
	bulkPrograms map[string]struct{}
}

// BuildFlagIndex indexes txns in a single pass. Transactions without a
// journal-entry id only contribute to the bulk-purchase program set.
func BuildFlagIndex(txns []model.Transaction) *FlagIndex {
	ix := &FlagIndex{
		natures:      make(map[string]NatureSet),
		programs:     make(map[string]string),
		links:        make(map[string][]string),
		live:         make(map[string]bool),
		bulkPrograms: make(map[string]struct{}),
	}

	for _, t := range txns {
		natures := t.Natures()

		if !t.IsVoided && t.ProgramID != "" && NewNatureSet(natures...).Has(model.NaturePurchaseOnly) {
			ix.bulkPrograms[t.ProgramID] = struct{}{}
		}

		if t.JournalEntryID == "" {
			continue
		}
		jeID := t.JournalEntryID
		if t.IsVoided {
			if _, seen := ix.live[jeID]; !seen {
				ix.live[jeID] = false
			}
			continue
		}
		ix.live[jeID] = true
		ix.links[jeID] = append(ix.links[jeID], t.ID)
		ix.natures[jeID] |= NewNatureSet(natures...)
		if _, ok := ix.programs[jeID]; !ok && t.ProgramID != "" {
			ix.programs[jeID] = t.ProgramID
		}
	}
	return ix
}

// Natures returns the natures of the live transactions linked to entryID.
func (ix *FlagIndex) Natures(entryID string) NatureSet {
	return ix.natures[entryID]
}

// Program returns the first program id seen among live transactions linked
// to entryID.
func (ix *FlagIndex) Program(entryID string) string {
	return ix.programs[entryID]
}

// Transactions returns the ids of the live transactions referencing entryID,
// in input order.
func (ix *FlagIndex) Transactions(entryID string) []string {
	return ix.links[entryID]
}

// Link is one live transaction's reference to a journal-entry id, resolved
// against the journal.
type Link struct {
	TransactionID string
	EntryID       string
	// Matches is how many journal entries carry EntryID.
	Matches int
}

// Dangling reports whether no journal entry carries the id.
func (l Link) Dangling() bool { return l.Matches == 0 }

// Ambiguous reports whether several journal entries carry the id.
func (l Link) Ambiguous() bool { return l.Matches > 1 }

// Links resolves every live link against entries, ordered by entry id and
// then by transaction input order.
func (ix *FlagIndex) Links(entries []model.JournalEntry) []Link {
	count := make(map[string]int, len(entries))
	for _, e := range entries {
		count[e.ID]++
	}

	ids := make([]string, 0, len(ix.links))
	for entryID := range ix.links {
		ids = append(ids, entryID)
	}
	sort.Strings(ids)

	var out []Link
	for _, entryID := range ids {
		for _, txnID := range ix.Transactions(entryID) {
			out = append(out, Link{TransactionID: txnID, EntryID: entryID, Matches: count[entryID]})
		}
	}
	return out
}

// Voided reports whether entryID is referenced only by voided transactions.
func (ix *FlagIndex) Voided(entryID string) bool {
	live, ok := ix.live[entryID]
	return ok && !live
}

// BulkProgram reports whether programID had any purchase-only transaction.
func (ix *FlagIndex) BulkProgram(programID string) bool {
	if programID == "" {
		return false
	}
	_, ok := ix.bulkPrograms[programID]
	return ok
}

// EntryFlags are the flags resolved for one journal entry.
type EntryFlags struct {
	Natures     NatureSet
	ProgramID   string
	BulkProgram bool
}

// Resolve returns the flags for entry. When no linked transaction names a
// program, the first program id found on the entry's own lines is used.
func (ix *FlagIndex) Resolve(entry model.JournalEntry) EntryFlags {
	program := ix.Program(entry.ID)
	if program == "" {
		for _, l := range entry.Lines {
			if l.ProgramID != "" {
				program = l.ProgramID
				break
			}
		}
	}
	return EntryFlags{
		Natures:     ix.Natures(entry.ID),
		ProgramID:   program,
		BulkProgram: ix.BulkProgram(program),
	}
}
