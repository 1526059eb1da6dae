package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"ingredient-canonicalizer/internal/core/reference"
	"ingredient-canonicalizer/internal/pkg/common"
)

// 數量解析（C2）：把人寫的數量字串轉為 {min, max, is_range, approx, precision}。

// QuantityResult 數量子記錄
type QuantityResult struct {
	Min       *float64
	Max       *float64
	IsRange   bool
	Approx    bool
	Precision string
	Warnings  []string
}

var (
	leadingApproxPattern  = regexp.MustCompile(`(?i)^(about|approx(?:imately)?|around|circa|c\.)\s+`)
	embeddedApproxPattern = regexp.MustCompile(`[~≈]\s*`)
	trailingPlusPattern   = regexp.MustCompile(`\s*\+$`)
	thousandsPattern      = regexp.MustCompile(`(\d),(\d{3})([^\d]|$)`)

	intPattern         = regexp.MustCompile(`^\d+$`)
	decimalPattern     = regexp.MustCompile(`^(?:\d+\.\d+|\.\d+)$`)
	fractionPattern    = regexp.MustCompile(`^(\d+)/(\d+)$`)
	mixedPattern       = regexp.MustCompile(`^(\d+)[\s-](\d+)/(\d+)$`)
	mixedRightPattern  = regexp.MustCompile(`^\d+/\d+`)
	rangeSepPattern    = regexp.MustCompile(`\s+[tT][oO]\s+|\s*-\s*`)
)

// 與原始管線一致：這些字若出現在數量欄位，留給單位階段處理
var specialQuantityWords = map[string]bool{
	"pinch": true, "dash": true, "handful": true, "splash": true, "drizzle": true,
}

// ParseQuantity 解析數量字串。空輸入為合法，全部欄位為 null。
func ParseQuantity(raw string) QuantityResult {
	var res QuantityResult

	s := strings.TrimSpace(raw)
	if s == "" {
		return res
	}

	// 近似記號：前置詞、內嵌 ~ / ≈、尾隨 +
	for {
		next := leadingApproxPattern.ReplaceAllString(s, "")
		next = embeddedApproxPattern.ReplaceAllString(next, "")
		next = trailingPlusPattern.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == s {
			break
		}
		res.Approx = true
		s = next
	}
	if s == "" {
		return res
	}

	lower := strings.ToLower(s)
	if specialQuantityWords[lower] {
		return res
	}

	// 千分位逗號：僅當其後恰為三位數字時剝除
	for thousandsPattern.MatchString(s) {
		s = thousandsPattern.ReplaceAllString(s, "$1$2$3")
	}

	// Unicode 分數展開為 ASCII 分數
	s = expandUnicodeFractions(s)
	s = strings.Join(strings.Fields(s), " ")

	// 整串先當單一數值解析（混合數的連字號不是區間分隔符）
	if v, prec, ok := parseSingleNumber(s); ok {
		res.Min = common.Float64Ptr(v)
		res.Max = common.Float64Ptr(v)
		res.Precision = prec
		return res
	}

	// 區間：A (-|–|—|to) B，兩側都必須可解析
	s = strings.NewReplacer("–", "-", "—", "-", "--", "-").Replace(s)
	if done := parseRange(s, &res); done {
		return res
	}

	// 文字數詞後備
	if v, ok := reference.TextNumbers[strings.ToLower(s)]; ok {
		res.Min = common.Float64Ptr(v)
		res.Max = common.Float64Ptr(v)
		res.Precision = PrecisionText
		return res
	}

	res.Warnings = append(res.Warnings, common.WarnNoNumericQuantity)
	return res
}

// parseRange 嘗試把 s 解析為區間；有處理結果（成功或側邊無效）時回傳 true
func parseRange(s string, res *QuantityResult) bool {
	locs := rangeSepPattern.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return false
	}

	// 排除混合數內部的連字號（如 1-1/2）
	var seps [][]int
	for _, loc := range locs {
		if s[loc[0]:loc[1]] == "-" && loc[0] > 0 && isDigit(s[loc[0]-1]) && mixedRightPattern.MatchString(s[loc[1]:]) {
			continue
		}
		seps = append(seps, loc)
	}
	if len(seps) == 0 {
		return false
	}
	if len(seps) > 1 {
		res.Warnings = append(res.Warnings, common.WarnMultipleRangeSeparators)
	}

	loc := seps[0]
	left := strings.TrimSpace(s[:loc[0]])
	right := strings.TrimSpace(s[loc[1]:])

	lo, _, okL := parseSingleNumber(left)
	hi, _, okR := parseSingleNumber(right)
	if !okL || !okR {
		res.Warnings = append(res.Warnings, common.WarnQtyRangeSideInvalid)
		return true
	}

	// 不變量：qty_min ≤ qty_max
	if lo > hi {
		lo, hi = hi, lo
	}
	res.Min = common.Float64Ptr(lo)
	res.Max = common.Float64Ptr(hi)
	res.IsRange = true
	res.Precision = PrecisionRange
	return true
}

// parseSingleNumber 解析單一數值（整數、小數、分數、混合數）
func parseSingleNumber(s string) (float64, string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "", false
	}

	if m := mixedPattern.FindStringSubmatch(s); m != nil {
		whole, _ := strconv.Atoi(m[1])
		num, _ := strconv.Atoi(m[2])
		den, _ := strconv.Atoi(m[3])
		if den == 0 {
			return 0, "", false
		}
		return float64(whole) + float64(num)/float64(den), PrecisionMixed, true
	}

	if m := fractionPattern.FindStringSubmatch(s); m != nil {
		num, _ := strconv.Atoi(m[1])
		den, _ := strconv.Atoi(m[2])
		if den == 0 {
			return 0, "", false
		}
		return float64(num) / float64(den), PrecisionFraction, true
	}

	if intPattern.MatchString(s) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, "", false
		}
		return v, PrecisionInteger, true
	}

	if decimalPattern.MatchString(s) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, "", false
		}
		return v, PrecisionDecimal, true
	}

	return 0, "", false
}

// expandUnicodeFractions 把 ½ 等字元展開為帶空白的 ASCII 分數
func expandUnicodeFractions(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if frac, ok := reference.UnicodeFractions[r]; ok {
			sb.WriteString(" " + frac + " ")
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
