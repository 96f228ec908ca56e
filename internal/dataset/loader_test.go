package dataset

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"debtlens/pkg/contracts/domain"
)

func TestLoaderLoadCSV(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(nil, nil, testLogger())
	ctx := context.Background()

	t.Run("end to end clean", func(t *testing.T) {
		path := writeCSV(t, dir, "debt.csv",
			"Unnamed: 0, refPeriod ,Value,Country\n"+
				"0,1991,200,LBN\n"+
				"1,1990,100,LBN\n"+
				"2,bad,300,LBN\n")

		ds, err := loader.Load(ctx, path)
		require.NoError(t, err)

		assert.Equal(t, path, ds.Path)
		assert.Equal(t, "refPeriod", ds.YearColumn)
		assert.Equal(t, "Value", ds.DebtColumn)
		assert.Equal(t, []string{"refPeriod", "Value", "Country"}, ds.Columns)
		assert.Equal(t, 3, ds.RawRows)
		assert.Equal(t, []domain.DebtPoint{
			{Year: 1990, Debt: 100},
			{Year: 1991, Debt: 200},
		}, ds.Points)
		assert.False(t, ds.LoadedAt.IsZero())
	})

	t.Run("UTF-8 BOM header resolves", func(t *testing.T) {
		path := writeCSV(t, dir, "bom.csv", "\ufeffYear,External_Debt\n1990,100\n")

		ds, err := loader.Load(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "Year", ds.YearColumn)
		assert.Equal(t, 1, ds.Len())
	})

	t.Run("missing file is a LoadError naming the path", func(t *testing.T) {
		missing := filepath.Join(dir, "nope.csv")
		_, err := loader.Load(ctx, missing)

		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, missing, loadErr.Path)
		assert.Contains(t, err.Error(), missing)
	})

	t.Run("ragged rows are a LoadError", func(t *testing.T) {
		path := writeCSV(t, dir, "ragged.csv", "Year,Value\n1990,1,extra,cells\n")

		_, err := loader.Load(ctx, path)
		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
	})

	t.Run("unresolvable roles are a SchemaError", func(t *testing.T) {
		path := writeCSV(t, dir, "noroles.csv", "foo,bar\n1,2\n")

		_, err := loader.Load(ctx, path)
		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.ElementsMatch(t, []string{RoleYear, RoleDebt}, schemaErr.Missing)
	})

	t.Run("header only file cleans to empty set", func(t *testing.T) {
		path := writeCSV(t, dir, "empty.csv", "Year,Value\n")

		ds, err := loader.Load(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, 0, ds.Len())
	})

	t.Run("cancelled context stops before reading", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		path := writeCSV(t, dir, "ctx.csv", "Year,Value\n1990,1\n")
		_, err := loader.Load(cancelled, path)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLoaderLoadWorkbook(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "debt.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"ref Period", "External Debt"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{1992, 75.5}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{1991, 60}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	loader := NewLoader(nil, nil, testLogger())
	ds, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "ref Period", ds.YearColumn)
	assert.Equal(t, "External Debt", ds.DebtColumn)
	assert.Equal(t, []domain.DebtPoint{
		{Year: 1991, Debt: 60},
		{Year: 1992, Debt: 75.5},
	}, ds.Points)
}

func TestLoaderCustomCandidates(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "custom.csv", "periode,montant\n1990,12\n")

	loader := NewLoader([]string{"periode"}, []string{"montant"}, testLogger())
	ds, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "periode", ds.YearColumn)
	assert.Equal(t, "montant", ds.DebtColumn)
}
