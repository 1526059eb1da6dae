package pipeline

import (
	"math"
	"sort"
	"strings"

	"ingredient-canonicalizer/internal/core/reference"
	"ingredient-canonicalizer/internal/pkg/common"
)

// 密度橋接（C8）：體積↔質量換算所需密度的五層回退查找。
//   H1 精確形態+壓實狀態 -> H2 精確形態 -> H3 同形態群組 -> H4 預設形態 -> H5 任一形態

// DensityResult 密度子記錄
type DensityResult struct {
	DensityID     *string
	GPerML        *float64
	SelectionPath string
	Warnings      []string
	NeedsLookup   bool
	InputsReady   bool
}

// DensityBridge 密度查找器
type DensityBridge struct {
	repo      *reference.Repository
	today     string // YYYY-MM-DD，整批固定
	sanityMin float64
	sanityMax float64
}

// NewDensityBridge 創建密度查找器
func NewDensityBridge(repo *reference.Repository, today string, sanityMin, sanityMax float64) *DensityBridge {
	return &DensityBridge{repo: repo, today: today, sanityMin: sanityMin, sanityMax: sanityMax}
}

// packedStateHint 從原始文字讀取壓實狀態提示。loosely packed 必須先於 packed 判定。
func packedStateHint(text string) string {
	lowered := strings.ToLower(text)
	if strings.Contains(lowered, "loosely packed") {
		return "loosely_packed"
	}
	if strings.Contains(lowered, "packed") {
		return "packed"
	}
	return ""
}

// Lookup 為已連結食材查找密度。formID 可為 nil（此時略過 H1 與 H2）。
func (b *DensityBridge) Lookup(ingredient *reference.Ingredient, formID *string, originalText string) DensityResult {
	var res DensityResult
	res.SelectionPath = BridgeH0NoDensity
	res.NeedsLookup = true

	if ingredient == nil {
		return res
	}

	packedHint := packedStateHint(originalText)

	type tier struct {
		path string
		pred func(*reference.Density) bool
	}
	var tiers []tier

	if formID != nil && packedHint != "" {
		tiers = append(tiers, tier{BridgeH1ExactFormPack, func(d *reference.Density) bool {
			return d.FormID == *formID && d.PackedState == packedHint
		}})
	}
	if formID != nil {
		tiers = append(tiers, tier{BridgeH2ExactForm, func(d *reference.Density) bool {
			return d.FormID == *formID
		}})
		if group := b.repo.FormGroup(*formID); len(group) > 0 {
			groupSet := make(map[string]bool, len(group))
			for _, id := range group {
				groupSet[id] = true
			}
			tiers = append(tiers, tier{BridgeH3FormGroup, func(d *reference.Density) bool {
				return groupSet[d.FormID]
			}})
		}
	}
	if defaultForm := ingredient.DefaultFormID; defaultForm != "" {
		tiers = append(tiers, tier{BridgeH4DefaultForm, func(d *reference.Density) bool {
			return d.FormID == defaultForm
		}})
	}
	tiers = append(tiers, tier{BridgeH5AnyForm, func(d *reference.Density) bool {
		return true
	}})

	for _, t := range tiers {
		candidates := b.repo.FindDensities(func(d *reference.Density) bool {
			return d.IngredientID == ingredient.IngredientID && b.usable(d) && t.pred(d)
		})
		if len(candidates) == 0 {
			continue
		}

		chosen := rankDensities(candidates)[0]
		res.DensityID = common.StringPtr(chosen.DensityID)
		res.GPerML = common.Float64Ptr(chosen.GPerML)
		res.SelectionPath = t.path
		res.NeedsLookup = false
		res.InputsReady = true

		// 健全帶檢查作用在中選列上，不得讓越界列落到較低層改拿別的形態
		if chosen.GPerML < b.sanityMin || chosen.GPerML > b.sanityMax {
			res.Warnings = append(res.Warnings, common.BridgeWarnSanityRangeEdge)
			res.InputsReady = false
		} else if chosen.GPerML == b.sanityMin || chosen.GPerML == b.sanityMax {
			res.Warnings = append(res.Warnings, common.BridgeWarnSanityRangeEdge)
		}
		if packedHint != "" && chosen.PackedState != packedHint {
			res.Warnings = append(res.Warnings, common.BridgeWarnPackedStateMismatch)
		}
		if chosen.TempC != nil && math.Abs(*chosen.TempC-20) > 10 {
			res.Warnings = append(res.Warnings, common.BridgeWarnTempMismatch)
		}
		return res
	}

	return res
}

// usable 候選列必須啟用、密度為正且在生效窗內
func (b *DensityBridge) usable(d *reference.Density) bool {
	if !d.IsActive || d.GPerML <= 0 {
		return false
	}
	if d.EffectiveFrom != "" && d.EffectiveFrom > b.today {
		return false
	}
	if d.EffectiveTo != "" && d.EffectiveTo < b.today {
		return false
	}
	return true
}

// rankDensities 排序：來源優先級降冪、生效日期新者優先、品質分數降冪、density_id 升冪
func rankDensities(candidates []*reference.Density) []*reference.Density {
	sorted := make([]*reference.Density, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.SourcePriority != b.SourcePriority {
			return a.SourcePriority > b.SourcePriority
		}
		if a.EffectiveFrom != b.EffectiveFrom {
			return a.EffectiveFrom > b.EffectiveFrom
		}
		if a.QualityScore != b.QualityScore {
			return a.QualityScore > b.QualityScore
		}
		return a.DensityID < b.DensityID
	})
	return sorted
}
