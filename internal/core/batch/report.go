package batch

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"ingredient-canonicalizer/internal/core/pipeline"
	"ingredient-canonicalizer/internal/pkg/common"
)

// 錯誤彙總報告：逐代碼計數與樣例，批次結束時輸出文字版與 JSON 版。

const maxExamplesPerCode = 5

// ErrorExample 樣例列
type ErrorExample struct {
	RecipeID   string `json:"recipe_id"`
	LineNumber int    `json:"line_number"`
	Text       string `json:"text"`
}

// CodeSummary 單一代碼的彙總
type CodeSummary struct {
	Code        string         `json:"code"`
	Count       int            `json:"count"`
	Examples    []ErrorExample `json:"examples"`
	Remediation string         `json:"remediation,omitempty"`
}

// Report 批次報告
type Report struct {
	RunID          string        `json:"run_id"`
	GeneratedAt    string        `json:"generated_at"`
	TotalRows      int           `json:"total_rows"`
	RejectedRows   int           `json:"rejected_rows"`
	ProcessedRows  int           `json:"processed_rows"`
	DuplicateRows  int           `json:"duplicate_rows"`
	Rejects        []CodeSummary `json:"rejects"`
	Warnings       []CodeSummary `json:"warnings"`
	LinkBreakdown  map[string]int `json:"link_breakdown"`
	BridgeBreakdown map[string]int `json:"bridge_breakdown"`
}

// 各代碼的修復建議，輸出到文字報告供資料維運參考
var remediations = map[string]string{
	common.RejectMissingRequiredField:  "補齊 recipe_id 與原始文字後重送",
	common.RejectTypeMismatch:          "行號必須為正整數",
	common.RejectSectionHeaderRow:      "節標題不是食材列，從上游匯出中剔除",
	common.RejectUnitInvalidFormat:     "單位欄位含非法字元，檢查上游欄位切分",
	common.WarnNoNumericQuantity:       "數量欄位無法解析為數值，人工複核",
	common.WarnQtyRangeSideInvalid:     "區間其中一側無法解析，人工複核",
	common.WarnMultipleRangeSeparators: "數量字串含多個區間分隔符，取首個分隔符解析",
	common.LinkErrNoMatch:              "主表無對應食材，考慮補充別名",
	common.LinkErrMultiIngredientLine:  "一列含多個食材，上游應先拆列",
	common.LinkErrLowConfidence:        "低信心比對已降級為人工複審，見 link_candidates",
	common.FormErrNoFormMatch:          "無法判定形態，考慮補充食材預設形態",
	common.WarnSequenceGap:             "同食譜行號不連續，確認上游匯出完整",
}

// ErrorTracker 執行期間累積逐列問題，並發安全
type ErrorTracker struct {
	mu        sync.Mutex
	rejects   map[string]*CodeSummary
	warnings  map[string]*CodeSummary
	links     map[string]int
	bridges   map[string]int
	total     int
	rejected  int
	duplicate int
}

// NewErrorTracker 創建追蹤器
func NewErrorTracker() *ErrorTracker {
	return &ErrorTracker{
		rejects:  make(map[string]*CodeSummary),
		warnings: make(map[string]*CodeSummary),
		links:    make(map[string]int),
		bridges:  make(map[string]int),
	}
}

// Track 記錄一列的處理結果
func (t *ErrorTracker) Track(rec *pipeline.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++

	if rec.RejectCode != "" {
		t.rejected++
		t.add(t.rejects, rec.RejectCode, rec)
		return
	}

	for _, code := range rec.QtyParseWarnings {
		t.add(t.warnings, code, rec)
	}
	for _, code := range rec.PackageParseWarnings {
		t.add(t.warnings, code, rec)
	}
	for _, code := range rec.BridgeWarnings {
		t.add(t.warnings, code, rec)
	}
	if rec.LinkReason != "" {
		t.add(t.warnings, rec.LinkReason, rec)
	}
	if rec.FormNotes != "" {
		t.add(t.warnings, rec.FormNotes, rec)
	}

	if rec.LinkMethod != "" {
		t.links[rec.LinkMethod]++
	}
	if rec.BridgeSelectionPath != "" {
		t.bridges[rec.BridgeSelectionPath]++
	}
}

// TrackDuplicate 記錄重複冪等鍵
func (t *ErrorTracker) TrackDuplicate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.duplicate++
}

// TrackSequenceGap 記錄同食譜行號斷檔
func (t *ErrorTracker) TrackSequenceGap(recipeID string, missing int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	summary := t.ensure(t.warnings, common.WarnSequenceGap)
	summary.Count++
	if len(summary.Examples) < maxExamplesPerCode {
		summary.Examples = append(summary.Examples, ErrorExample{
			RecipeID:   recipeID,
			LineNumber: missing,
			Text:       fmt.Sprintf("missing line %d", missing),
		})
	}
}

func (t *ErrorTracker) add(bucket map[string]*CodeSummary, code string, rec *pipeline.Record) {
	summary := t.ensure(bucket, code)
	summary.Count++
	if len(summary.Examples) < maxExamplesPerCode {
		summary.Examples = append(summary.Examples, ErrorExample{
			RecipeID:   rec.RecipeID,
			LineNumber: rec.IngredientLineNumber,
			Text:       rec.IngredientOriginalText,
		})
	}
}

func (t *ErrorTracker) ensure(bucket map[string]*CodeSummary, code string) *CodeSummary {
	summary, ok := bucket[code]
	if !ok {
		summary = &CodeSummary{Code: code, Remediation: remediations[code]}
		bucket[code] = summary
	}
	return summary
}

// Build 產出最終報告
func (t *ErrorTracker) Build(runID string) *Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	report := &Report{
		RunID:           runID,
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
		TotalRows:       t.total,
		RejectedRows:    t.rejected,
		ProcessedRows:   t.total - t.rejected,
		DuplicateRows:   t.duplicate,
		Rejects:         sortedSummaries(t.rejects),
		Warnings:        sortedSummaries(t.warnings),
		LinkBreakdown:   copyCounts(t.links),
		BridgeBreakdown: copyCounts(t.bridges),
	}
	return report
}

// sortedSummaries 依計數降冪、代碼升冪排序，輸出順序確定
func sortedSummaries(bucket map[string]*CodeSummary) []CodeSummary {
	out := make([]CodeSummary, 0, len(bucket))
	for _, summary := range bucket {
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Code < out[j].Code
	})
	return out
}

func copyCounts(src map[string]int) map[string]int {
	out := make(map[string]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// WriteText 輸出人讀文字報告
func (r *Report) WriteText(path string) error {
	var sb strings.Builder
	sb.WriteString("INGREDIENT CANONICALIZATION REPORT\n")
	sb.WriteString(fmt.Sprintf("run_id: %s\n", r.RunID))
	sb.WriteString(fmt.Sprintf("generated_at: %s\n", r.GeneratedAt))
	sb.WriteString(fmt.Sprintf("total=%d processed=%d rejected=%d duplicates=%d\n\n",
		r.TotalRows, r.ProcessedRows, r.RejectedRows, r.DuplicateRows))

	writeSection := func(title string, summaries []CodeSummary) {
		sb.WriteString(title + "\n")
		if len(summaries) == 0 {
			sb.WriteString("  (none)\n")
		}
		for _, s := range summaries {
			sb.WriteString(fmt.Sprintf("  %-28s %6d\n", s.Code, s.Count))
			if s.Remediation != "" {
				sb.WriteString(fmt.Sprintf("    -> %s\n", s.Remediation))
			}
			for _, ex := range s.Examples {
				sb.WriteString(fmt.Sprintf("    e.g. %s#%d: %s\n", ex.RecipeID, ex.LineNumber, ex.Text))
			}
		}
		sb.WriteString("\n")
	}

	writeSection("REJECTS", r.Rejects)
	writeSection("WARNINGS", r.Warnings)

	sb.WriteString("LINK METHODS\n")
	for _, code := range sortedKeys(r.LinkBreakdown) {
		sb.WriteString(fmt.Sprintf("  %-28s %6d\n", code, r.LinkBreakdown[code]))
	}
	sb.WriteString("\nBRIDGE PATHS\n")
	for _, code := range sortedKeys(r.BridgeBreakdown) {
		sb.WriteString(fmt.Sprintf("  %-28s %6d\n", code, r.BridgeBreakdown[code]))
	}

	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

// WriteJSON 輸出機讀 JSON 報告
func (r *Report) WriteJSON(path string) error {
	data, err := common.ToJSON(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return os.WriteFile(path, []byte(data), 0o644)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
