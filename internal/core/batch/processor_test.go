package batch

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"ingredient-canonicalizer/internal/core/pipeline"
	"ingredient-canonicalizer/internal/core/reference"
	"ingredient-canonicalizer/internal/infrastructure/config"
	"ingredient-canonicalizer/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchSnapshot() *reference.Snapshot {
	return &reference.Snapshot{
		Ingredients: []reference.Ingredient{
			{
				IngredientID:  "ING_CHIA",
				PrimaryName:   "chia seeds",
				Category:      "seed",
				DefaultFormID: "FORM_WHOLE",
				FormIDs:       []string{"FORM_WHOLE", "FORM_SEEDS"},
			},
		},
		Forms: []reference.Form{
			{FormID: "FORM_WHOLE", TargetDimension: "auto"},
			{FormID: "FORM_SEEDS", TargetDimension: "auto"},
		},
		MeaningTokens: []string{"chia", "seed"},
	}
}

func batchConfig(t *testing.T, input string) *config.Config {
	t.Helper()
	dir := t.TempDir()

	inputPath := filepath.Join(dir, "input.ndjson")
	require.NoError(t, os.WriteFile(inputPath, []byte(input), 0o644))

	return &config.Config{
		Batch: config.BatchConfig{
			InputFile:     inputPath,
			OutputFile:    filepath.Join(dir, "output.ndjson"),
			ErrorTxtFile:  filepath.Join(dir, "errors.txt"),
			ErrorJSONFile: filepath.Join(dir, "errors.json"),
			Workers:       4,
			MaxQueueSize:  16,
		},
		Pipeline: config.PipelineConfig{
			Today:            "2025-06-01",
			FuzzyAccept:      0.92,
			FuzzyReview:      0.80,
			FuzzyTopK:        5,
			DensitySanityMin: 0.05,
			DensitySanityMax: 2.0,
		},
	}
}

func runBatch(t *testing.T, input string) (*config.Config, []pipeline.Record) {
	t.Helper()

	repo, err := reference.NewRepository(batchSnapshot())
	require.NoError(t, err)

	cfg := batchConfig(t, input)
	store, err := NewIdempotencyStore(&config.IdemConfig{Enabled: true})
	require.NoError(t, err)
	defer store.Close()

	processor := NewProcessor(cfg, repo, store)
	require.NoError(t, processor.Run(context.Background()))

	f, err := os.Open(cfg.Batch.OutputFile)
	require.NoError(t, err)
	defer f.Close()

	var records []pipeline.Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec pipeline.Record
		require.NoError(t, common.ParseJSON(scanner.Text(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())
	return cfg, records
}

func TestProcessorPreservesInputOrder(t *testing.T) {
	var lines []string
	for i := 1; i <= 20; i++ {
		lines = append(lines,
			`{"recipe_id":"R001","ingredient_line_number":`+strconv.Itoa(i)+`,"ingredient_original_text":"1 cup chia seeds","qty_value_original":"1","unit_original":"cup"}`)
	}

	_, records := runBatch(t, strings.Join(lines, "\n")+"\n")
	require.Len(t, records, 20)
	for i, rec := range records {
		assert.Equal(t, i+1, rec.IngredientLineNumber)
	}
}

func TestProcessorHandlesRejectsAndBadLines(t *testing.T) {
	input := strings.Join([]string{
		`{"recipe_id":"R001","ingredient_line_number":1,"ingredient_original_text":"1 cup chia seeds","qty_value_original":"1","unit_original":"cup"}`,
		`{not valid json`,
		`{"recipe_id":"R001","ingredient_line_number":2,"ingredient_original_text":"For the topping:"}`,
	}, "\n") + "\n"

	cfg, records := runBatch(t, input)
	require.Len(t, records, 3)

	assert.Empty(t, records[0].RejectCode)
	assert.Equal(t, common.RejectTypeMismatch, records[1].RejectCode)
	assert.Equal(t, common.RejectSectionHeaderRow, records[2].RejectCode)

	// 報告檔應已寫出
	txt, err := os.ReadFile(cfg.Batch.ErrorTxtFile)
	require.NoError(t, err)
	assert.Contains(t, string(txt), common.RejectSectionHeaderRow)

	var report Report
	data, err := os.ReadFile(cfg.Batch.ErrorJSONFile)
	require.NoError(t, err)
	require.NoError(t, common.ParseJSONBytes(data, &report))
	assert.Equal(t, 3, report.TotalRows)
	assert.Equal(t, 2, report.RejectedRows)
}

func TestProcessorDetectsSequenceGaps(t *testing.T) {
	input := strings.Join([]string{
		`{"recipe_id":"R001","ingredient_line_number":1,"ingredient_original_text":"1 cup chia seeds"}`,
		`{"recipe_id":"R001","ingredient_line_number":4,"ingredient_original_text":"2 cups chia seeds"}`,
	}, "\n") + "\n"

	cfg, _ := runBatch(t, input)

	var report Report
	data, err := os.ReadFile(cfg.Batch.ErrorJSONFile)
	require.NoError(t, err)
	require.NoError(t, common.ParseJSONBytes(data, &report))

	found := false
	for _, w := range report.Warnings {
		if w.Code == common.WarnSequenceGap {
			found = true
			assert.Equal(t, 2, w.Count) // 缺行 2 與 3
		}
	}
	assert.True(t, found)
}

func TestProcessorCountsDuplicates(t *testing.T) {
	line := `{"recipe_id":"R001","ingredient_line_number":1,"ingredient_original_text":"1 cup chia seeds"}`
	input := line + "\n" + line + "\n"

	cfg, records := runBatch(t, input)
	// 第二列冪等鍵已見過，靜默略過
	require.Len(t, records, 1)

	var report Report
	data, err := os.ReadFile(cfg.Batch.ErrorJSONFile)
	require.NoError(t, err)
	require.NoError(t, common.ParseJSONBytes(data, &report))
	assert.Equal(t, 1, report.DuplicateRows)
	assert.Equal(t, 1, report.TotalRows)
}

// 批內重複鍵的去留按輸入順序決定：活下來的永遠是先到的那份，與 worker 排程無關
func TestProcessorDuplicateResolutionDeterministic(t *testing.T) {
	var lines []string
	for i := 1; i <= 15; i++ {
		id := "R" + strconv.Itoa(100+i)
		hash := `"h` + strconv.Itoa(i) + `"`
		lines = append(lines,
			`{"recipe_id":"`+id+`","ingredient_line_number":1,"line_hash":`+hash+`,"ingredient_original_text":"1 cup chia seeds first"}`,
			`{"recipe_id":"`+id+`","ingredient_line_number":1,"line_hash":`+hash+`,"ingredient_original_text":"1 cup chia seeds second"}`)
	}
	input := strings.Join(lines, "\n") + "\n"

	for run := 0; run < 3; run++ {
		_, records := runBatch(t, input)
		require.Len(t, records, 15)
		for _, rec := range records {
			assert.Equal(t, "1 cup chia seeds first", rec.IngredientOriginalText)
		}
	}
}

func TestMemoryIdempotencyStore(t *testing.T) {
	store, err := NewIdempotencyStore(&config.IdemConfig{Enabled: true})
	require.NoError(t, err)
	defer store.Close()

	first, err := store.MarkProcessed(context.Background(), "key-1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := store.MarkProcessed(context.Background(), "key-1")
	require.NoError(t, err)
	assert.False(t, again)
}

func TestNoopIdempotencyStore(t *testing.T) {
	store, err := NewIdempotencyStore(&config.IdemConfig{Enabled: false})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		first, err := store.MarkProcessed(context.Background(), "key-1")
		require.NoError(t, err)
		assert.True(t, first)
	}
}
