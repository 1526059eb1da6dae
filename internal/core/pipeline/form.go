package pipeline

import (
	"sort"
	"strings"

	"ingredient-canonicalizer/internal/core/reference"
	"ingredient-canonicalizer/internal/pkg/common"
)

// 形態判定（C6）：五層優先序，首個命中即定案。
//   P1 逐食材覆寫表 -> P2 全局 token 表 -> P3 單位偏置 -> P4 食材預設 -> P5 類別預設

// FormResult 形態子記錄
type FormResult struct {
	FormID       *string
	Source       string
	ConflictFlag bool
	Notes        string
}

// FormResolver 形態判定器
type FormResolver struct {
	repo *reference.Repository
}

// NewFormResolver 創建形態判定器
func NewFormResolver(repo *reference.Repository) *FormResolver {
	return &FormResolver{repo: repo}
}

// 單位偏置只對小匙量體積單位成立
var groundBiasUnits = map[string]bool{
	"TSP": true, "TBSP": true,
}

var groundBiasCategories = map[string]bool{
	"spice": true, "herb": true,
}

// Resolve 判定一列的形態。ingredient 可為 nil（未連結列仍可走 P2 全局表）。
func (f *FormResolver) Resolve(row InputRow, unitEnum *string, ingredient *reference.Ingredient) FormResult {
	var res FormResult

	tokens := formTokens(row)

	// P1 逐食材覆寫：食材自帶的 token -> form_id 對照
	if ingredient != nil && len(ingredient.FormOverrides) > 0 {
		if formID, conflict := pickOverride(tokens, ingredient.FormOverrides); formID != "" {
			res.FormID = common.StringPtr(formID)
			res.Source = FormSourceAlias
			res.ConflictFlag = conflict
			return res
		}
	}

	// P2 全局 token 表
	if formID, conflict := pickByPrecedence(tokens, func(tok string) (string, bool) {
		id, ok := reference.FormTokenMap[tok]
		return id, ok
	}); formID != "" {
		res.FormID = common.StringPtr(formID)
		res.Source = FormSourceExplicit
		res.ConflictFlag = conflict
		return res
	}

	// P3 單位偏置：香料以小匙計量且該食材可為粉狀時，推定研磨形態
	if ingredient != nil && unitEnum != nil && groundBiasUnits[*unitEnum] &&
		groundBiasCategories[strings.ToLower(ingredient.Category)] &&
		containsForm(ingredient.FormIDs, "FORM_GROUND") {
		res.FormID = common.StringPtr("FORM_GROUND")
		res.Source = FormSourceUnitBias
		return res
	}

	// P4 食材預設形態
	if ingredient != nil {
		if formID := f.repo.DefaultFormFor(ingredient.IngredientID); formID != "" {
			res.FormID = common.StringPtr(formID)
			res.Source = FormSourceDefault
			return res
		}
	}

	// P5 類別預設
	if ingredient != nil && ingredient.Category != "" {
		if formID := f.repo.CategoryDefault(strings.ToLower(ingredient.Category)); formID != "" {
			res.FormID = common.StringPtr(formID)
			res.Source = FormSourceCategoryDefault
			return res
		}
	}

	res.Notes = common.FormErrNoFormMatch
	return res
}

// formTokens 蒐集可供形態判定的 token：form_hint、modifiers、原始文字
func formTokens(row InputRow) map[string]bool {
	tokens := make(map[string]bool)
	for _, field := range []string{row.FormHintRaw, row.ModifiersRaw, row.IngredientOriginalText} {
		lowered := strings.ToLower(field)
		lowered = strings.NewReplacer(",", " ", ";", " ", "(", " ", ")", " ").Replace(lowered)
		for _, tok := range strings.Fields(lowered) {
			tokens[tok] = true
		}
	}
	return tokens
}

// pickOverride 掃描逐食材覆寫表。覆寫 token 可能不在全局裁決表內，
// 先走裁決順序，剩餘 token 依字典序掃描以保持確定性。
func pickOverride(tokens map[string]bool, overrides map[string]string) (string, bool) {
	seen := make(map[string]bool)
	var picked string
	distinct := make(map[string]bool)

	consider := func(tok string) {
		if seen[tok] || !tokens[tok] {
			return
		}
		seen[tok] = true
		formID, ok := overrides[tok]
		if !ok {
			return
		}
		if picked == "" {
			picked = formID
		}
		distinct[formID] = true
	}

	for _, tok := range reference.FormTokenPrecedence {
		consider(tok)
	}
	rest := make([]string, 0, len(overrides))
	for tok := range overrides {
		rest = append(rest, tok)
	}
	sort.Strings(rest)
	for _, tok := range rest {
		consider(tok)
	}
	return picked, len(distinct) > 1
}

// pickByPrecedence 依固定裁決順序掃描 token；多個 token 對應不同形態時回報衝突
func pickByPrecedence(tokens map[string]bool, lookup func(string) (string, bool)) (string, bool) {
	var picked string
	distinct := make(map[string]bool)
	for _, tok := range reference.FormTokenPrecedence {
		if !tokens[tok] {
			continue
		}
		formID, ok := lookup(tok)
		if !ok {
			continue
		}
		if picked == "" {
			picked = formID
		}
		distinct[formID] = true
	}
	return picked, len(distinct) > 1
}

func containsForm(formIDs []string, formID string) bool {
	for _, id := range formIDs {
		if id == formID {
			return true
		}
	}
	return false
}
