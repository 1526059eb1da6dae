package batch

import (
	"os"
	"path/filepath"
	"testing"

	"ingredient-canonicalizer/internal/core/pipeline"
	"ingredient-canonicalizer/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTrackerCounts(t *testing.T) {
	tracker := NewErrorTracker()

	tracker.Track(&pipeline.Record{
		RecipeID:               "R001",
		IngredientLineNumber:   1,
		IngredientOriginalText: "For the sauce:",
		RejectCode:             common.RejectSectionHeaderRow,
	})
	tracker.Track(&pipeline.Record{
		RecipeID:               "R001",
		IngredientLineNumber:   2,
		IngredientOriginalText: "some flour",
		QtyParseWarnings:       []string{common.WarnNoNumericQuantity},
		LinkMethod:             pipeline.LinkExact,
	})
	tracker.Track(&pipeline.Record{
		RecipeID:               "R001",
		IngredientLineNumber:   3,
		IngredientOriginalText: "2 cups flour",
		LinkMethod:             pipeline.LinkExact,
		BridgeSelectionPath:    pipeline.BridgeH2ExactForm,
	})
	tracker.TrackDuplicate()

	report := tracker.Build("run-1")

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, 3, report.TotalRows)
	assert.Equal(t, 1, report.RejectedRows)
	assert.Equal(t, 2, report.ProcessedRows)
	assert.Equal(t, 1, report.DuplicateRows)

	require.Len(t, report.Rejects, 1)
	assert.Equal(t, common.RejectSectionHeaderRow, report.Rejects[0].Code)
	assert.Equal(t, 1, report.Rejects[0].Count)
	require.Len(t, report.Rejects[0].Examples, 1)
	assert.Equal(t, "R001", report.Rejects[0].Examples[0].RecipeID)

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, common.WarnNoNumericQuantity, report.Warnings[0].Code)
	assert.NotEmpty(t, report.Warnings[0].Remediation)

	assert.Equal(t, 2, report.LinkBreakdown[pipeline.LinkExact])
	assert.Equal(t, 1, report.BridgeBreakdown[pipeline.BridgeH2ExactForm])
}

func TestErrorTrackerExampleCap(t *testing.T) {
	tracker := NewErrorTracker()
	for i := 0; i < 10; i++ {
		tracker.Track(&pipeline.Record{
			RecipeID:             "R001",
			IngredientLineNumber: i + 1,
			RejectCode:           common.RejectMissingRequiredField,
		})
	}

	report := tracker.Build("run-1")
	require.Len(t, report.Rejects, 1)
	assert.Equal(t, 10, report.Rejects[0].Count)
	assert.Len(t, report.Rejects[0].Examples, maxExamplesPerCode)
}

func TestReportWriters(t *testing.T) {
	tracker := NewErrorTracker()
	tracker.Track(&pipeline.Record{
		RecipeID:             "R001",
		IngredientLineNumber: 1,
		RejectCode:           common.RejectSectionHeaderRow,
	})
	tracker.TrackSequenceGap("R001", 3)
	report := tracker.Build("run-1")

	dir := t.TempDir()
	txtPath := filepath.Join(dir, "errors.txt")
	jsonPath := filepath.Join(dir, "errors.json")

	require.NoError(t, report.WriteText(txtPath))
	require.NoError(t, report.WriteJSON(jsonPath))

	txt, err := os.ReadFile(txtPath)
	require.NoError(t, err)
	assert.Contains(t, string(txt), common.RejectSectionHeaderRow)
	assert.Contains(t, string(txt), common.WarnSequenceGap)
	assert.Contains(t, string(txt), "run-1")

	var decoded Report
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	require.NoError(t, common.ParseJSONBytes(data, &decoded))
	assert.Equal(t, report.TotalRows, decoded.TotalRows)
}
