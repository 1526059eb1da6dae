package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"ingredient-canonicalizer/internal/pkg/common"

	"golang.org/x/text/unicode/norm"
)

// 入庫驗證（C1）：正規化、必填檢查、節標題守門、冪等鍵。

var invalidUnitPattern = regexp.MustCompile(`[^a-z.\s]`)

// cleanText NFC 正規化後修剪並壓縮空白；空字串視為 null
func cleanText(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Intake 正規化一列輸入並驗證。回傳正規化後的列與拒絕代碼（空字串表示通過）。
func Intake(row InputRow) (InputRow, string) {
	row.RecipeID = cleanText(row.RecipeID)
	row.IngredientOriginalText = cleanText(row.IngredientOriginalText)
	row.QtyValueOriginal = cleanText(row.QtyValueOriginal)
	row.UnitOriginal = cleanText(row.UnitOriginal)
	row.PackageSizeRaw = cleanText(row.PackageSizeRaw)
	row.FormHintRaw = cleanText(row.FormHintRaw)
	row.ModifiersRaw = cleanText(row.ModifiersRaw)
	row.SizeDescriptorRaw = cleanText(row.SizeDescriptorRaw)
	row.LineHash = cleanText(row.LineHash)

	if row.RecipeID == "" || row.IngredientOriginalText == "" {
		return row, common.RejectMissingRequiredField
	}
	if row.IngredientLineNumber < 1 {
		return row, common.RejectTypeMismatch
	}
	if isSectionHeader(row.IngredientOriginalText) {
		return row, common.RejectSectionHeaderRow
	}
	if row.UnitOriginal != "" && invalidUnitPattern.MatchString(strings.ToLower(row.UnitOriginal)) {
		return row, common.RejectUnitInvalidFormat
	}

	return row, ""
}

// isSectionHeader 判斷是否為節標題列：
// 不含數字的短名詞片語，且以冒號結尾或全為大寫。
func isSectionHeader(text string) bool {
	hasDigit := false
	hasLetter := false
	hasLower := false
	for _, r := range text {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLetter(r):
			hasLetter = true
			if unicode.IsLower(r) {
				hasLower = true
			}
		}
	}
	if hasDigit || !hasLetter {
		return false
	}
	if len(strings.Fields(text)) > 4 {
		return false
	}
	return strings.HasSuffix(text, ":") || !hasLower
}

// IdempotencyKey 計算冪等鍵：H(recipe_id, line_number, line_hash | original_text)
func IdempotencyKey(row InputRow) string {
	payload := row.LineHash
	if payload == "" {
		payload = row.IngredientOriginalText
	}
	fingerprint := fmt.Sprintf("%s\x1f%d\x1f%s", row.RecipeID, row.IngredientLineNumber, payload)
	hash := sha256.Sum256([]byte(fingerprint))
	return hex.EncodeToString(hash[:])
}
