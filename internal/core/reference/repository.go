package reference

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Repository 載入後不可變的參照資料存取層。
// 索引於建構時建立一次，之後可被多個 worker 無鎖並發查詢。
type Repository struct {
	ingredients map[string]*Ingredient // ingredient_id -> 條目
	byPrimary   map[string]*Ingredient // 正規化主名稱 -> 條目
	byAlias     map[string]*Ingredient // 正規化別名 -> 條目
	byKeepToken map[string]*Ingredient // 僅保留語義 token 的鍵 -> 條目

	fuzzyEntries []fuzzyEntry // 依 ingredient_id 排序

	forms      map[string]*Form
	formGroups map[string][]string // group -> form_ids（排序後）

	densities []Density // 依 density_id 排序

	meaningTokens    map[string]bool
	categoryDefaults map[string]string
}

// fuzzyEntry 模糊比對索引條目
type fuzzyEntry struct {
	ingredient *Ingredient
	tokens     map[string]bool
	aliasCount int
}

// Match 模糊比對結果
type Match struct {
	Ingredient *Ingredient
	Score      float64
}

var punctPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// NormalizeName 名稱比對用正規化：小寫、摺疊標點、壓縮空白
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = punctPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// 不規則複數。-ves 結尾不能套通則：cloves、olives、chives 都是規則的 -s 複數
var irregularPlurals = map[string]string{
	"leaves": "leaf",
	"halves": "half",
	"loaves": "loaf",
	"knives": "knife",
}

// SingularizeWord 單詞去複數。索引與候選兩側使用同一套規則，否則永遠對不上。
func SingularizeWord(word string) string {
	if singular, ok := irregularPlurals[word]; ok {
		return singular
	}
	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 4:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "sses") || strings.HasSuffix(word, "shes") || strings.HasSuffix(word, "ches"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "oes"):
		return word[:len(word)-2] // tomatoes -> tomato
	case strings.HasSuffix(word, "es") && len(word) > 3:
		if c := word[len(word)-3]; c == 's' || c == 'x' || c == 'z' {
			return word[:len(word)-2]
		}
		if len(word) > 4 {
			if two := word[len(word)-4 : len(word)-2]; two == "ch" || two == "sh" {
				return word[:len(word)-2]
			}
		}
		return word[:len(word)-1]
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") && len(word) > 2:
		return word[:len(word)-1]
	}
	return word
}

// NormalizeForMatching 比對鍵正規化：NormalizeName 後逐詞去複數
func NormalizeForMatching(s string) string {
	words := strings.Fields(NormalizeName(s))
	for i, w := range words {
		words[i] = SingularizeWord(w)
	}
	return strings.Join(words, " ")
}

// NewRepository 由快照建構索引
func NewRepository(snap *Snapshot) (*Repository, error) {
	r := &Repository{
		ingredients:      make(map[string]*Ingredient, len(snap.Ingredients)),
		byPrimary:        make(map[string]*Ingredient, len(snap.Ingredients)),
		byAlias:          make(map[string]*Ingredient),
		byKeepToken:      make(map[string]*Ingredient),
		forms:            make(map[string]*Form, len(snap.Forms)),
		formGroups:       make(map[string][]string),
		meaningTokens:    make(map[string]bool, len(snap.MeaningTokens)),
		categoryDefaults: snap.CategoryDefaults,
	}

	for _, tok := range snap.MeaningTokens {
		r.meaningTokens[strings.ToLower(tok)] = true
	}

	for i := range snap.Forms {
		form := &snap.Forms[i]
		if form.FormID == "" {
			return nil, fmt.Errorf("form table row %d missing form_id", i)
		}
		r.forms[form.FormID] = form
		if form.Group != "" {
			r.formGroups[form.Group] = append(r.formGroups[form.Group], form.FormID)
		}
	}
	for group := range r.formGroups {
		sort.Strings(r.formGroups[group])
	}

	// 食材索引需要確定性：同名衝突時取字典序較小的 ingredient_id
	ings := make([]*Ingredient, 0, len(snap.Ingredients))
	for i := range snap.Ingredients {
		ing := &snap.Ingredients[i]
		if ing.IngredientID == "" || ing.PrimaryName == "" {
			continue // 與原始載入器一致：缺主鍵的列直接跳過
		}
		ings = append(ings, ing)
	}
	sort.Slice(ings, func(i, j int) bool { return ings[i].IngredientID < ings[j].IngredientID })

	for _, ing := range ings {
		if _, exists := r.ingredients[ing.IngredientID]; exists {
			return nil, fmt.Errorf("duplicate ingredient_id: %s", ing.IngredientID)
		}
		r.ingredients[ing.IngredientID] = ing

		norm := NormalizeForMatching(ing.PrimaryName)
		if _, taken := r.byPrimary[norm]; !taken {
			r.byPrimary[norm] = ing
		}

		for _, alias := range ing.Aliases {
			aliasNorm := NormalizeForMatching(alias)
			if aliasNorm == "" {
				continue
			}
			if _, taken := r.byAlias[aliasNorm]; !taken {
				r.byAlias[aliasNorm] = ing
			}
		}

		tokens := r.FilterMeaningTokens(strings.Fields(norm))
		if key := keepTokenKey(tokens); key != "" {
			if _, taken := r.byKeepToken[key]; !taken {
				r.byKeepToken[key] = ing
			}
		}

		tokenSet := make(map[string]bool)
		for _, tok := range tokens {
			tokenSet[tok] = true
		}
		// 語義 token 全被過濾時退回完整 token 集，避免索引空洞
		if len(tokenSet) == 0 {
			for _, tok := range strings.Fields(norm) {
				tokenSet[tok] = true
			}
		}
		r.fuzzyEntries = append(r.fuzzyEntries, fuzzyEntry{
			ingredient: ing,
			tokens:     tokenSet,
			aliasCount: len(ing.Aliases),
		})
	}

	r.densities = make([]Density, len(snap.Densities))
	copy(r.densities, snap.Densities)
	sort.Slice(r.densities, func(i, j int) bool { return r.densities[i].DensityID < r.densities[j].DensityID })

	return r, nil
}

// keepTokenKey 將語義 token 排序後組成索引鍵
func keepTokenKey(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	sorted := make([]string, len(tokens))
	copy(sorted, tokens)
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}

// Stats 索引規模，供健康檢查回報
type Stats struct {
	Ingredients int `json:"ingredients"`
	Forms       int `json:"forms"`
	Densities   int `json:"densities"`
}

// Stats 回報索引規模
func (r *Repository) Stats() Stats {
	return Stats{
		Ingredients: len(r.ingredients),
		Forms:       len(r.forms),
		Densities:   len(r.densities),
	}
}

// Get 依 ingredient_id 取得食材
func (r *Repository) Get(ingredientID string) *Ingredient {
	return r.ingredients[ingredientID]
}

// ByPrimary 依正規化主名稱查找
func (r *Repository) ByPrimary(norm string) *Ingredient {
	return r.byPrimary[norm]
}

// ByAlias 依正規化別名查找
func (r *Repository) ByAlias(norm string) *Ingredient {
	return r.byAlias[norm]
}

// ByKeepTokens 依語義 token 鍵查找
func (r *Repository) ByKeepTokens(tokens []string) *Ingredient {
	return r.byKeepToken[keepTokenKey(tokens)]
}

// FuzzyTopK 以 Jaccard 相似度取前 K 名。
// 平手裁決：別名數多者優先，再依 ingredient_id 字典序——與插入順序無關。
func (r *Repository) FuzzyTopK(tokens []string, k int) []Match {
	if len(tokens) == 0 || k <= 0 {
		return nil
	}

	candSet := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		candSet[tok] = true
	}

	matches := make([]Match, 0, len(r.fuzzyEntries))
	for i := range r.fuzzyEntries {
		entry := &r.fuzzyEntries[i]
		inter := 0
		for tok := range candSet {
			if entry.tokens[tok] {
				inter++
			}
		}
		union := len(candSet) + len(entry.tokens) - inter
		if union == 0 || inter == 0 {
			continue
		}
		matches = append(matches, Match{Ingredient: entry.ingredient, Score: float64(inter) / float64(union)})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		ai := len(matches[i].Ingredient.Aliases)
		aj := len(matches[j].Ingredient.Aliases)
		if ai != aj {
			return ai > aj
		}
		return matches[i].Ingredient.IngredientID < matches[j].Ingredient.IngredientID
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// FormGet 依 form_id 取得形態
func (r *Repository) FormGet(formID string) *Form {
	return r.forms[formID]
}

// FormGroup 取得與指定形態同群組的所有 form_id（排序後）
func (r *Repository) FormGroup(formID string) []string {
	form := r.forms[formID]
	if form == nil || form.Group == "" {
		return nil
	}
	return r.formGroups[form.Group]
}

// DefaultFormFor 取得食材的預設形態
func (r *Repository) DefaultFormFor(ingredientID string) string {
	if ing := r.ingredients[ingredientID]; ing != nil {
		return ing.DefaultFormID
	}
	return ""
}

// FindDensities 依條件過濾密度列；迭代順序依 density_id 確定
func (r *Repository) FindDensities(pred func(*Density) bool) []*Density {
	var out []*Density
	for i := range r.densities {
		if pred(&r.densities[i]) {
			out = append(out, &r.densities[i])
		}
	}
	return out
}

// IsMeaningToken 檢查 token 是否在允許清單中
func (r *Repository) IsMeaningToken(tok string) bool {
	return r.meaningTokens[strings.ToLower(tok)]
}

// FilterMeaningTokens 僅保留允許清單內的 token（保序）
func (r *Repository) FilterMeaningTokens(tokens []string) []string {
	var out []string
	for _, tok := range tokens {
		if r.meaningTokens[strings.ToLower(tok)] {
			out = append(out, strings.ToLower(tok))
		}
	}
	return out
}

// CategoryDefault 取得類別預設形態
func (r *Repository) CategoryDefault(category string) string {
	return r.categoryDefaults[category]
}
