package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"ingredient-canonicalizer/internal/core/reference"
	"ingredient-canonicalizer/internal/pkg/common"
)

// 包裝與變體解析（C4）。非破壞性：只讀取文字，不動數量與單位欄位。
// 硬性約束：包裝資料絕不進入標準數量運算，僅作為下游中繼資料。

// PackageResult 包裝子記錄
type PackageResult struct {
	Multiplier float64
	SizeValue  *float64
	SizeUnit   *string
	SIValue    *float64
	SIUnit     *string
	Warnings   []string
}

var (
	// 乘數樣式：N x V unit / N × V unit / N (… V unit …)
	multiplierPattern       = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[x×]\s*(\d+(?:\.\d+)?)\s*-?\s*(fl\.?\s?oz|oz|g|kg|ml|l)\b`)
	multiplierParenPattern  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*\([^)]*?(\d+(?:\.\d+)?)\s*-?\s*(fl\.?\s?oz|oz|g|kg|ml|l)\b[^)]*\)`)
	sizePattern             = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*-?\s*(fl\.?\s?oz|oz|g|kg|ml|l)\b`)
	liquidContextPattern    = regexp.MustCompile(`\b(juice|milk|broth|stock|sauce|oil|water|cream|syrup|vinegar|wine|beer|puree|liquid)\b`)
)

// 包裝尺寸單位 token 正規化
func packageUnitEnum(tok string) string {
	tok = strings.Join(strings.Fields(strings.ReplaceAll(strings.ToLower(tok), ".", "")), " ")
	switch tok {
	case "fl oz", "floz":
		return "FLOZ"
	case "oz":
		return "OZ"
	case "g":
		return "G"
	case "kg":
		return "KG"
	case "ml":
		return "ML"
	case "l":
		return "L"
	}
	return ""
}

// ParsePackage 從 package_size_raw 與原始文字萃取包裝乘數與尺寸
func ParsePackage(packageSizeRaw, originalText string) PackageResult {
	res := PackageResult{Multiplier: 1.0}

	searchText := strings.ToLower(strings.TrimSpace(packageSizeRaw + " " + originalText))
	searchText = strings.Join(strings.Fields(searchText), " ")
	if searchText == "" {
		return res
	}

	var sizeStr, unitTok string

	// 乘數樣式先行，首個命中為準
	if m := multiplierPattern.FindStringSubmatch(searchText); m != nil {
		if mult, err := strconv.ParseFloat(m[1], 64); err == nil && mult > 0 {
			res.Multiplier = mult
			res.Warnings = append(res.Warnings, common.WarnMultiplierFound)
		}
		sizeStr, unitTok = m[2], m[3]
	} else if m := multiplierParenPattern.FindStringSubmatch(searchText); m != nil {
		if mult, err := strconv.ParseFloat(m[1], 64); err == nil && mult > 0 {
			res.Multiplier = mult
			res.Warnings = append(res.Warnings, common.WarnMultiplierFound)
		}
		sizeStr, unitTok = m[2], m[3]
	} else if m := sizePattern.FindStringSubmatch(searchText); m != nil {
		sizeStr, unitTok = m[1], m[2]
	}

	if sizeStr == "" {
		if packageSizeRaw != "" {
			res.Warnings = append(res.Warnings, common.WarnNoPackageSizeFound)
		}
		return res
	}

	value, err := strconv.ParseFloat(sizeStr, 64)
	if err != nil || value <= 0 {
		if packageSizeRaw != "" {
			res.Warnings = append(res.Warnings, common.WarnNoPackageSizeFound)
		}
		return res
	}

	enum := packageUnitEnum(unitTok)
	if enum == "" {
		return res
	}

	// 裸 oz 出現在疑似液體語境時標記歧義
	if enum == "OZ" && liquidContextPattern.MatchString(searchText) {
		res.Warnings = append(res.Warnings, common.WarnAmbiguousOzLiquid)
	}

	res.SizeValue = common.Float64Ptr(value)
	res.SizeUnit = common.StringPtr(enum)

	si := reference.PackageSizeToSI[enum]
	res.SIValue = common.Float64Ptr(snapResidue(value * si.Factor))
	res.SIUnit = common.StringPtr(si.Unit)

	return res
}
