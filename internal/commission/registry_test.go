package commission

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestLookupFallsBackToDefaultPlan(t *testing.T) {
	reg := DefaultRegistry()
	plan := reg.Lookup("Unknown Agent")

	assertMoney(t, "70", plan.PrimarySplit.Agent, "agent split")
	assertMoney(t, "30", plan.PrimarySplit.Brokerage, "brokerage split")
	assertMoney(t, "20000", plan.CommissionCap, "cap")
	assertMoney(t, "0", plan.CurrentTowardsCap, "towards cap")
	assertMoney(t, "6", plan.Deductions.FranchiseFeePct, "franchise pct")
	assertMoney(t, "150", plan.Deductions.EOFee, "e&o")
	assertMoney(t, "450", plan.Deductions.TransactionFee, "transaction fee")

	var nilReg *Registry
	assert.Equal(t, DefaultPlan(), nilReg.Lookup("anyone"))

	assert.Zero(t, reg.Len())
	assert.False(t, reg.Has("Unknown Agent"))
	fromEmptyPath, err := LoadRegistryFile("  ")
	require.NoError(t, err)
	assert.Zero(t, fromEmptyPath.Len())
}

func TestLookupNormalizesAgentName(t *testing.T) {
	custom := DefaultPlan()
	custom.PrimarySplit = Split{Agent: d("85"), Brokerage: d("15")}
	reg, err := NewRegistry(map[string]Plan{"Sarah  Johnson": custom})
	require.NoError(t, err)

	got := reg.Lookup("  sarah johnson ")
	assertMoney(t, "85", got.PrimarySplit.Agent, "agent split")
	assert.True(t, reg.Has("SARAH JOHNSON"))
	assert.Equal(t, 1, reg.Len())
}

func TestNewRegistryAggregatesErrors(t *testing.T) {
	bad := DefaultPlan()
	bad.PrimarySplit = Split{Agent: d("60"), Brokerage: d("30")}
	negative := DefaultPlan()
	negative.Deductions.EOFee = d("-1")

	_, err := NewRegistry(map[string]Plan{"A": bad, "B": negative, "C": DefaultPlan()})
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.True(t, errors.Is(err, ErrInvalidPlan))
}

func TestNewRegistryRejectsDuplicateNormalizedNames(t *testing.T) {
	_, err := NewRegistry(map[string]Plan{"Jo Smith": DefaultPlan(), "jo smith": DefaultPlan()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate plan")
}

func TestWithAgentSplitKeepsSumAtHundred(t *testing.T) {
	for _, pct := range []string{"1", "62.5", "90", "100"} {
		plan, err := DefaultPlan().WithAgentSplit(d(pct))
		require.NoError(t, err)
		require.NoError(t, plan.Validate())
		assertMoney(t, "100", plan.PrimarySplit.Agent.Add(plan.PrimarySplit.Brokerage), "split sum")
	}
	for _, pct := range []string{"0", "-10", "100.01"} {
		_, err := DefaultPlan().WithAgentSplit(d(pct))
		assert.ErrorIs(t, err, ErrInvalidPlan, pct)
	}
}

func TestLoadRegistryFile(t *testing.T) {
	reg, err := LoadRegistryFile("")
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Len())

	dir := t.TempDir()
	path := filepath.Join(dir, "plans.json")
	body := `{
  "Mike Chen": {
    "primary_split": {"agent": 80, "brokerage": 20},
    "commission_cap": 18000,
    "current_towards_cap": 4000,
    "deductions": {"franchise_fee_pct": 5, "eo_fee": 100, "transaction_fee": 395}
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	reg, err = LoadRegistryFile(path)
	require.NoError(t, err)
	plan := reg.Lookup("mike chen")
	assertMoney(t, "80", plan.PrimarySplit.Agent, "agent split")
	assertMoney(t, "4000", plan.CurrentTowardsCap, "towards cap")
	assertMoney(t, "395", plan.Deductions.TransactionFee, "transaction fee")

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(strings.Replace(body, `"brokerage": 20`, `"brokerage": 25`, 1)), 0o600))
	_, err = LoadRegistryFile(badPath)
	assert.ErrorIs(t, err, ErrInvalidPlan)

	_, err = LoadRegistryFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
