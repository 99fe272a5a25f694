package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cleared-dev/ledgerview/internal/model"
)

func line(at model.AccountType) model.JournalLine {
	return model.JournalLine{AccountType: at, AccountID: "1"}
}

func TestBuildFlagIndex_OneToManyLinks(t *testing.T) {
	ix := BuildFlagIndex([]model.Transaction{
		{ID: "T1", JournalEntryID: "JE-1", Type: model.TransactionNormal, ProgramID: "P1"},
		{ID: "T2", JournalEntryID: "JE-1", Type: model.TransactionRevenueOnly, ProgramID: "P2"},
		{ID: "T3", JournalEntryID: "JE-2", IsPurchaseOnly: true},
		{ID: "T4"}, // no journal entry; skipped without error
	})

	assert.Equal(t, []string{"T1", "T2"}, ix.Transactions("JE-1"))
	assert.True(t, ix.Natures("JE-1").Has(model.NatureNormal))
	assert.True(t, ix.Natures("JE-1").Has(model.NatureRevenueOnly))
	assert.False(t, ix.Natures("JE-1").Has(model.NaturePurchaseOnly))
	assert.Equal(t, "P1", ix.Program("JE-1"), "first program wins")

	assert.True(t, ix.Natures("JE-2").Has(model.NaturePurchaseOnly), "legacy flag normalized")
	assert.True(t, ix.Natures("JE-404").Empty())
	assert.Empty(t, ix.Transactions("JE-404"))
}

func TestLinks(t *testing.T) {
	ix := BuildFlagIndex([]model.Transaction{
		{ID: "T1", JournalEntryID: "JE-2"},
		{ID: "T2", JournalEntryID: "JE-1"},
		{ID: "T3", JournalEntryID: "JE-9"},
		{ID: "T4", JournalEntryID: "JE-2"},
		{ID: "T5", JournalEntryID: "JE-8", IsVoided: true},
		{ID: "T6"},
	})
	entries := []model.JournalEntry{{ID: "JE-1"}, {ID: "JE-2"}, {ID: "JE-2"}}

	links := ix.Links(entries)
	assert.Equal(t, []Link{
		{TransactionID: "T2", EntryID: "JE-1", Matches: 1},
		{TransactionID: "T1", EntryID: "JE-2", Matches: 2},
		{TransactionID: "T4", EntryID: "JE-2", Matches: 2},
		{TransactionID: "T3", EntryID: "JE-9", Matches: 0},
	}, links)
	assert.False(t, links[0].Ambiguous())
	assert.True(t, links[1].Ambiguous())
	assert.True(t, links[3].Dangling())
	assert.False(t, links[3].Ambiguous())
}

func TestBuildFlagIndex_BulkPrograms(t *testing.T) {
	ix := BuildFlagIndex([]model.Transaction{
		{ID: "T1", Type: model.TransactionPurchaseOnly, ProgramID: "UMRAH-MAR"},
		{ID: "T2", Type: model.TransactionNormal, ProgramID: "HAJJ"},
		{ID: "T3", Type: model.TransactionPurchaseOnly, ProgramID: "VOID", IsVoided: true},
	})

	assert.True(t, ix.BulkProgram("UMRAH-MAR"), "purchase-only without journal link still marks the program")
	assert.False(t, ix.BulkProgram("HAJJ"))
	assert.False(t, ix.BulkProgram("VOID"), "voided transactions do not count")
	assert.False(t, ix.BulkProgram(""))
}

func TestBuildFlagIndex_Voided(t *testing.T) {
	ix := BuildFlagIndex([]model.Transaction{
		{ID: "T1", JournalEntryID: "JE-1", IsVoided: true, Type: model.TransactionPurchaseOnly},
		{ID: "T2", JournalEntryID: "JE-2", IsVoided: true},
		{ID: "T3", JournalEntryID: "JE-2"},
	})

	assert.True(t, ix.Voided("JE-1"))
	assert.True(t, ix.Natures("JE-1").Empty(), "voided natures are ignored")
	assert.False(t, ix.Voided("JE-2"), "one live transaction keeps the entry")
	assert.False(t, ix.Voided("JE-3"), "unlinked entries are not voided")
}

func TestResolve_ProgramFallsBackToLines(t *testing.T) {
	ix := BuildFlagIndex([]model.Transaction{
		{ID: "T1", Type: model.TransactionPurchaseOnly, ProgramID: "P9"},
	})
	entry := model.JournalEntry{ID: "JE-7", Lines: []model.JournalLine{
		{AccountType: model.AccountTypeCustomer},
		{AccountType: model.AccountTypeSupplier, ProgramID: "P9"},
	}}

	f := ix.Resolve(entry)
	assert.Equal(t, "P9", f.ProgramID)
	assert.True(t, f.BulkProgram)
	assert.True(t, f.Natures.Empty())
}

func TestDecide(t *testing.T) {
	purchaseOnly := EntryFlags{Natures: NewNatureSet(model.NaturePurchaseOnly)}
	revenueOnly := EntryFlags{Natures: NewNatureSet(model.NatureRevenueOnly)}
	both := EntryFlags{Natures: NewNatureSet(model.NatureRevenueOnly, model.NaturePurchaseOnly)}
	normal := EntryFlags{Natures: NewNatureSet(model.NatureNormal)}
	bulkBooking := EntryFlags{Natures: NewNatureSet(model.NatureNormal), ProgramID: "P1", BulkProgram: true}
	bulkPurchase := EntryFlags{Natures: NewNatureSet(model.NaturePurchaseOnly), ProgramID: "P1", BulkProgram: true}

	tests := []struct {
		name  string
		at    model.AccountType
		flags EntryFlags
		want  Reason
	}{
		{"purchase-only drops revenue", model.AccountTypeRevenue, purchaseOnly, ReasonPurchaseOnlyRevenue},
		{"purchase-only drops customer", model.AccountTypeCustomer, purchaseOnly, ReasonPurchaseOnlyRevenue},
		{"purchase-only keeps supplier", model.AccountTypeSupplier, purchaseOnly, ReasonKeep},
		{"purchase-only keeps expense", model.AccountTypeExpense, purchaseOnly, ReasonKeep},
		{"revenue-only drops expense", model.AccountTypeExpense, revenueOnly, ReasonRevenueOnlyCost},
		{"revenue-only drops supplier", model.AccountTypeSupplier, revenueOnly, ReasonRevenueOnlyCost},
		{"revenue-only keeps revenue", model.AccountTypeRevenue, revenueOnly, ReasonKeep},
		{"both natures keep revenue", model.AccountTypeRevenue, both, ReasonKeep},
		{"both natures keep supplier", model.AccountTypeSupplier, both, ReasonKeep},
		{"normal keeps everything", model.AccountTypeExpense, normal, ReasonKeep},
		{"bulk program booking drops cost", model.AccountTypeSupplier, bulkBooking, ReasonBulkProgramCost},
		{"bulk program booking keeps revenue", model.AccountTypeRevenue, bulkBooking, ReasonKeep},
		{"bulk purchase itself keeps cost", model.AccountTypeExpense, bulkPurchase, ReasonKeep},
		{"treasury never filtered", model.AccountTypeTreasury, purchaseOnly, ReasonKeep},
		{"partner never filtered", model.AccountTypePartner, revenueOnly, ReasonKeep},
		{"no flags keeps line", model.AccountTypeRevenue, EntryFlags{}, ReasonKeep},
	}
	for _, tt := range tests {
		got := Decide(line(tt.at), tt.flags)
		assert.Equal(t, tt.want, got, tt.name)
		assert.Equal(t, tt.want != ReasonKeep, Exclude(line(tt.at), tt.flags), tt.name)
	}
}
