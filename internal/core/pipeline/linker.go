package pipeline

import (
	"regexp"
	"strings"

	"ingredient-canonicalizer/internal/core/reference"
	"ingredient-canonicalizer/internal/pkg/common"
)

// 食材連結（C5）：從原始文字萃取候選名稱，對主表做四層比對。

// LinkResult 連結子記錄
type LinkResult struct {
	IngredientID  *string
	CanonicalName *string
	Confidence    float64
	Method        string
	Reason        string
	Candidates    []LinkCandidate
}

// Linker 食材連結器
type Linker struct {
	repo   *reference.Repository
	accept float64
	review float64
	topK   int
}

// NewLinker 創建連結器
func NewLinker(repo *reference.Repository, accept, review float64, topK int) *Linker {
	return &Linker{repo: repo, accept: accept, review: review, topK: topK}
}

var (
	ofPrefixPattern     = regexp.MustCompile(`(?i)^of\s+`)
	toTasteTailPattern  = regexp.MustCompile(`(?i)\s*,?\s*(to\s+taste|as\s+needed)\s*$`)
	tasteTailPattern    = regexp.MustCompile(`(?i)\s+taste\s*$`)
	qtyNotePattern      = regexp.MustCompile(`(?i)(^|\s)(heaping|scant|rounded|generous)\s+`)
	parenSizePattern    = regexp.MustCompile(`(?i)\([^)]*(?:inch|cm)[^)]*\)\s*`)
	inlineSizePattern   = regexp.MustCompile(`(?i)\b[\d½¼¾⅓⅔⅛⅜⅝⅞]+(?:/\d+)?\s*-?\s*(?:inch|cm)\b\s*`)
	packageParenPattern = regexp.MustCompile(`\([^)]*\d[^)]*\)`)
	juiceOfPattern      = regexp.MustCompile(`(?i)^juice\s+of\s+[\d½¼¾⅓⅔⅛⅜⅝⅞]*\s*(.+)$`)
	prepTailPatterns    = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\s+peeled\s+and\s+\w+$`),
		regexp.MustCompile(`(?i)\s+cut\s+into\s+\w+$`),
		regexp.MustCompile(`(?i)\s+and\s+(minced|diced|chopped|sliced)$`),
	}
	andPairPattern = regexp.MustCompile(`(?i)(\w+)\s+and\s+(\w+)`)
	orWordPattern  = regexp.MustCompile(`(?i)\bor\b`)
	commaHeadPattern = regexp.MustCompile(`,\s*\p{L}`)
)

// 不能識別食材身份的修飾詞，正規化時移除
var removeModifiers = []string{
	"fresh", "organic", "large", "small", "medium",
	"chopped", "diced", "minced", "sliced", "shredded", "grated",
	"finely", "coarsely", "roughly", "thinly", "thickly",
	"ripe", "unripe", "raw", "cooked",
	"peeled", "unpeeled", "pitted", "seeded",
	"trimmed", "cleaned", "rinsed", "drained",
	"thawed", "frozen",
	"room temperature", "cold", "warm",
	"cut into pieces", "cut into", "pieces",
	"plus more", "as needed", "to taste",
	"thin", "thick", "toasted",
}

// 連接詞兩側若是備料動詞則不算多食材
var prepWords = map[string]bool{
	"peeled": true, "minced": true, "chopped": true, "diced": true,
	"sliced": true, "cut": true, "trimmed": true,
}

var modifierPatterns = buildModifierPatterns()

func buildModifierPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(removeModifiers))
	for _, mod := range removeModifiers {
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(mod)+`\b`))
	}
	return patterns
}

// ExtractCandidate 從原始行剝除數量、單位、包裝與尺寸 token，留下候選食材片語
func ExtractCandidate(text, qtyStr, unitStr string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if qtyStr = strings.TrimSpace(qtyStr); qtyStr != "" {
		re := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(qtyStr) + `\s*`)
		text = re.ReplaceAllString(text, "")
	}
	if unitStr = strings.TrimSpace(unitStr); unitStr != "" {
		quoted := regexp.QuoteMeta(unitStr)
		text = regexp.MustCompile(`(?i)^`+quoted+`\s*`).ReplaceAllString(text, "")
		text = regexp.MustCompile(`(?i)\s+`+quoted+`(\s+|$)`).ReplaceAllString(text, " ")
	}

	text = ofPrefixPattern.ReplaceAllString(text, "")
	text = toTasteTailPattern.ReplaceAllString(text, "")
	text = tasteTailPattern.ReplaceAllString(text, "")
	text = qtyNotePattern.ReplaceAllString(text, "$1")
	text = parenSizePattern.ReplaceAllString(text, "")
	text = inlineSizePattern.ReplaceAllString(text, "")
	text = packageParenPattern.ReplaceAllString(text, "")

	// "juice of 2 oranges" -> "orange juice"
	if m := juiceOfPattern.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
		text = strings.TrimSpace(m[1]) + " juice"
	}

	for _, pat := range prepTailPatterns {
		text = pat.ReplaceAllString(text, "")
	}

	return strings.Join(strings.Fields(text), " ")
}

// normalizeCandidate 候選名稱比對正規化：移除修飾詞、逐詞去複數
func normalizeCandidate(text string) string {
	for _, pat := range modifierPatterns {
		text = pat.ReplaceAllString(text, "")
	}
	// 修飾詞移除後殘留的尾端 and
	text = regexp.MustCompile(`(?i)\s+and\s*$`).ReplaceAllString(text, "")
	return reference.NormalizeForMatching(text)
}

// multiIngredientSeparator 檢查候選片語是否指向多個食材
func multiIngredientSeparator(text string) bool {
	if orWordPattern.MatchString(text) {
		return true
	}
	if strings.Contains(text, "/") {
		return true
	}
	if commaHeadPattern.MatchString(text) {
		return true
	}
	for _, m := range andPairPattern.FindAllStringSubmatch(text, -1) {
		if !prepWords[strings.ToLower(m[1])] && !prepWords[strings.ToLower(m[2])] {
			return true
		}
	}
	return false
}

// Link 對一列輸入執行四層比對，首個命中為準
func (l *Linker) Link(row InputRow) LinkResult {
	var res LinkResult

	candidate := ExtractCandidate(row.IngredientOriginalText, row.QtyValueOriginal, row.UnitOriginal)
	norm := normalizeCandidate(candidate)

	if norm == "" {
		res.Method = LinkUnresolved
		res.Reason = common.LinkErrNoMatch
		return res
	}

	// L0 主名稱精確比對
	if ing := l.repo.ByPrimary(norm); ing != nil {
		return linked(ing, 1.00, LinkExact)
	}

	// L1 別名比對
	if ing := l.repo.ByAlias(norm); ing != nil {
		return linked(ing, 0.99, LinkAlias)
	}

	// L2 僅保留語義 token 的比對
	tokens := l.repo.FilterMeaningTokens(strings.Fields(norm))
	if ing := l.repo.ByKeepTokens(tokens); ing != nil {
		return linked(ing, 0.97, LinkNormalized)
	}

	// L3 模糊比對：語義 token 集的 Jaccard 相似度
	fuzzyTokens := tokens
	if len(fuzzyTokens) == 0 {
		fuzzyTokens = strings.Fields(norm)
	}
	matches := l.repo.FuzzyTopK(fuzzyTokens, l.topK)

	if len(matches) > 0 && matches[0].Score >= l.accept {
		return linked(matches[0].Ingredient, matches[0].Score, LinkFuzzy)
	}

	if len(matches) > 0 && matches[0].Score >= l.review {
		res.Method = LinkReview
		res.Reason = common.LinkErrLowConfidence
		n := len(matches)
		if n > 3 {
			n = 3
		}
		for _, m := range matches[:n] {
			res.Candidates = append(res.Candidates, LinkCandidate{
				IngredientID: m.Ingredient.IngredientID,
				PrimaryName:  m.Ingredient.PrimaryName,
				Score:        m.Score,
			})
		}
		return res
	}

	res.Method = LinkUnresolved
	if multiIngredientSeparator(candidate) {
		res.Reason = common.LinkErrMultiIngredientLine
	} else {
		res.Reason = common.LinkErrNoMatch
	}
	return res
}

func linked(ing *reference.Ingredient, score float64, method string) LinkResult {
	return LinkResult{
		IngredientID:  common.StringPtr(ing.IngredientID),
		CanonicalName: common.StringPtr(ing.PrimaryName),
		Confidence:    score,
		Method:        method,
	}
}
