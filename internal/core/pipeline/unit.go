package pipeline

import (
	"regexp"
	"strings"

	"ingredient-canonicalizer/internal/core/reference"
	"ingredient-canonicalizer/internal/pkg/common"
)

// 單位正規化（C3）：自由文字單位 token 對應到封閉枚舉並判定維度。

// UnitResult 單位子記錄
type UnitResult struct {
	UnitEnum          *string
	OriginalDimension *string
	FlagNonstandard   bool
}

// 液量盎司必須先於質量盎司判定
var fluidOuncePattern = regexp.MustCompile(`^(?:fl\.?\s*oz\.?|fluid\s+ounces?)$`)

// NormalizeUnit 正規化單位字串。
// hasQuantity 表示該列有數值數量：空單位此時預設為 EA（計數）。
func NormalizeUnit(raw string, hasQuantity bool) UnitResult {
	var res UnitResult

	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.TrimRight(normalized, ".")
	normalized = strings.Join(strings.Fields(normalized), " ")

	if normalized == "" {
		if hasQuantity {
			res.UnitEnum = common.StringPtr("EA")
			res.OriginalDimension = common.StringPtr(DimCount)
		}
		return res
	}

	if fluidOuncePattern.MatchString(normalized) {
		normalized = "fl oz"
	}

	if enum, ok := reference.UnitSynonyms[normalized]; ok {
		res.UnitEnum = common.StringPtr(enum)
		res.OriginalDimension = common.StringPtr(reference.UnitDimensions[enum])
		return res
	}

	// 去複數後再試一次
	if strings.HasSuffix(normalized, "s") && len(normalized) > 2 {
		if enum, ok := reference.UnitSynonyms[normalized[:len(normalized)-1]]; ok {
			res.UnitEnum = common.StringPtr(enum)
			res.OriginalDimension = common.StringPtr(reference.UnitDimensions[enum])
			return res
		}
	}

	// 未知 token 不再退回 EA：枚舉保持 null，僅設旗標
	res.FlagNonstandard = true
	return res
}
