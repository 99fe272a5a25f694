// Package report is the entry point for every derived report. Each call
// reindexes the dataset from scratch; nothing is cached between calls, so an
// Engine may be shared by concurrent callers as long as the dataset is not
// modified.
package report

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cleared-dev/ledgerview/internal/fx"
	"github.com/cleared-dev/ledgerview/internal/id"
	"github.com/cleared-dev/ledgerview/internal/income"
	"github.com/cleared-dev/ledgerview/internal/ledger"
	"github.com/cleared-dev/ledgerview/internal/model"
	"github.com/cleared-dev/ledgerview/internal/reconcile"
)

var (
	ErrInvalidWindow    = errors.New("from date is after to date")
	ErrNotAgingEligible = errors.New("account type is not aged")
	ErrUnknownAccount   = errors.New("unknown account")
)

// Engine computes reports over one dataset.
type Engine struct {
	ds        *model.Dataset
	logger    *slog.Logger
	rules     income.Rules
	reconcile bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger diagnostics are written to.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRules replaces the default income classification rules.
func WithRules(r income.Rules) Option {
	return func(e *Engine) { e.rules = r }
}

// WithoutReconciliation turns off the reconciliation filter, so every
// posted line counts. Use it to check that the raw journal balances.
func WithoutReconciliation() Option {
	return func(e *Engine) { e.reconcile = false }
}

// NewEngine returns an engine over ds. ds is read, never written.
func NewEngine(ds *model.Dataset, opts ...Option) *Engine {
	e := &Engine{
		ds:        ds,
		logger:    slog.Default(),
		rules:     income.DefaultRules(),
		reconcile: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Diagnostics counts every silent recovery made for one report.
type Diagnostics struct {
	MissingAccounts   int
	DegenerateRates   int
	NegativeRates     int
	AmbiguousLinks    int
	VoidedEntries     int
	ExcludedLines     int
	SyntheticPostings int
	UnclassifiedLines int
}

func fromLedger(d ledger.Diagnostics) Diagnostics {
	return Diagnostics{
		MissingAccounts:   d.MissingAccounts,
		DegenerateRates:   d.DegenerateRates,
		NegativeRates:     d.NegativeRates,
		AmbiguousLinks:    d.AmbiguousLinks,
		VoidedEntries:     d.VoidedEntries,
		ExcludedLines:     d.ExcludedLines,
		SyntheticPostings: d.SyntheticPostings,
	}
}

// LogValue implements slog.LogValuer.
func (d Diagnostics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("missing_accounts", d.MissingAccounts),
		slog.Int("degenerate_rates", d.DegenerateRates),
		slog.Int("negative_rates", d.NegativeRates),
		slog.Int("ambiguous_links", d.AmbiguousLinks),
		slog.Int("voided_entries", d.VoidedEntries),
		slog.Int("excluded_lines", d.ExcludedLines),
		slog.Int("synthetic_postings", d.SyntheticPostings),
		slog.Int("unclassified_lines", d.UnclassifiedLines),
	)
}

// Problems counts the recoveries caused by bad input data.
func (d Diagnostics) Problems() int {
	return d.MissingAccounts + d.DegenerateRates + d.NegativeRates + d.AmbiguousLinks
}

// Clean reports whether no recovery was needed.
func (d Diagnostics) Clean() bool {
	return d == Diagnostics{}
}

// index builds a fresh posting index up to the inclusive date to.
func (e *Engine) index(to time.Time) *ledger.Index {
	rates := fx.NewResolver(e.ds.BaseCurrency, e.ds.Currencies)
	flags := reconcile.BuildFlagIndex(e.ds.Transactions)
	return ledger.BuildIndex(e.ds, to, rates, flags, ledger.Options{Reconcile: e.reconcile})
}

func (e *Engine) logDiagnostics(report string, d Diagnostics) {
	if d.Clean() {
		return
	}
	e.logger.Debug("report recovered from data problems", "report", report, "diagnostics", d)
}

func checkWindow(from, to time.Time) (time.Time, time.Time, error) {
	from, to = id.Day(from), id.Day(to)
	if from.After(to) {
		return from, to, fmt.Errorf("%s > %s: %w", from.Format(id.DateFormat), to.Format(id.DateFormat), ErrInvalidWindow)
	}
	return from, to, nil
}

// TrialBalance returns one row per account with activity up to and
// including to. Period totals count postings dated on or after from.
func (e *Engine) TrialBalance(from, to time.Time) (ledger.TrialBalance, error) {
	from, to, err := checkWindow(from, to)
	if err != nil {
		return ledger.TrialBalance{}, err
	}
	tb := e.index(to).TrialBalance(from)
	e.logDiagnostics("trial_balance", fromLedger(tb.Diagnostics))
	return tb, nil
}

// AccountLedger is a statement of account with the recoveries behind it.
type AccountLedger struct {
	ledger.Statement
	Diagnostics Diagnostics
}

// AccountLedger returns the statement of account for key. Every posted line
// appears, whatever the reconciliation filter says.
func (e *Engine) AccountLedger(key model.AccountKey, from, to time.Time) (AccountLedger, error) {
	from, to, err := checkWindow(from, to)
	if err != nil {
		return AccountLedger{}, err
	}
	ix := e.index(to)
	st, ok := ix.Statement(key, from)
	if !ok {
		return AccountLedger{}, fmt.Errorf("ledger for %s: %w", key, ErrUnknownAccount)
	}
	d := fromLedger(ix.Diagnostics())
	e.logDiagnostics("account_ledger", d)
	return AccountLedger{Statement: st, Diagnostics: d}, nil
}

// IncomeStatement is an income statement with the recoveries behind it.
type IncomeStatement struct {
	income.Statement
	Diagnostics Diagnostics
}

// IncomeStatement rolls revenue and expense postings dated within [from, to]
// into service lines.
func (e *Engine) IncomeStatement(from, to time.Time) (IncomeStatement, error) {
	from, to, err := checkWindow(from, to)
	if err != nil {
		return IncomeStatement{}, err
	}
	if err := e.rules.Validate(); err != nil {
		return IncomeStatement{}, fmt.Errorf("classification rules: %w", err)
	}
	ix := e.index(to)
	st := income.Aggregate(ix.Postings(), from, to, income.NewClassifier(e.rules))

	d := fromLedger(ix.Diagnostics())
	d.UnclassifiedLines = st.Unclassified
	e.logDiagnostics("income_statement", d)
	return IncomeStatement{Statement: st, Diagnostics: d}, nil
}
