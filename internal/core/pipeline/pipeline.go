package pipeline

import (
	"ingredient-canonicalizer/internal/core/reference"
	"ingredient-canonicalizer/internal/infrastructure/config"
)

// Pipeline 單列標準化管線。無內部狀態，可被多個 worker 並發呼叫。
type Pipeline struct {
	repo   *reference.Repository
	linker *Linker
	forms  *FormResolver
	bridge *DensityBridge
}

// New 組裝管線
func New(repo *reference.Repository, cfg config.PipelineConfig) *Pipeline {
	return &Pipeline{
		repo:   repo,
		linker: NewLinker(repo, cfg.FuzzyAccept, cfg.FuzzyReview, cfg.FuzzyTopK),
		forms:  NewFormResolver(repo),
		bridge: NewDensityBridge(repo, cfg.Today, cfg.DensitySanityMin, cfg.DensitySanityMax),
	}
}

// Process 處理單列輸入，回傳完整標準化記錄。
// 冪等：同一輸入列必然產出位元相同的記錄。
// 拒絕列只帶身份欄位與拒絕代碼，不經後續階段。
func (p *Pipeline) Process(input InputRow) Record {
	row, rejectCode := Intake(input)

	rec := Record{
		RecipeID:               row.RecipeID,
		IngredientLineNumber:   row.IngredientLineNumber,
		IngredientOriginalText: row.IngredientOriginalText,
		LineHash:               row.LineHash,
		IdempotencyKey:         IdempotencyKey(row),
		QtyValueOriginal:       row.QtyValueOriginal,
		UnitOriginal:           row.UnitOriginal,
		PackageSizeRaw:         row.PackageSizeRaw,
		FormHintRaw:            row.FormHintRaw,
		ModifiersRaw:           row.ModifiersRaw,
		SizeDescriptorRaw:      row.SizeDescriptorRaw,
		PackageMultiplier:      1.0,
		BridgeRequired:         BridgeNone,
	}

	if rejectCode != "" {
		rec.RejectCode = rejectCode
		return rec
	}

	// C2 數量
	qty := ParseQuantity(row.QtyValueOriginal)
	rec.QtyMin = qty.Min
	rec.QtyMax = qty.Max
	rec.QtyIsRange = qty.IsRange
	rec.QtyApproxFlag = qty.Approx
	rec.QtyPrecisionCode = qty.Precision
	rec.QtyParseWarnings = qty.Warnings

	// C3 單位
	unit := NormalizeUnit(row.UnitOriginal, qty.Min != nil)
	rec.UnitEnum = unit.UnitEnum
	rec.OriginalDimension = unit.OriginalDimension
	rec.FlagNonstandardUnit = unit.FlagNonstandard

	// C4 包裝（只讀原始文字，不碰數量欄位）
	pkg := ParsePackage(row.PackageSizeRaw, row.IngredientOriginalText)
	rec.PackageMultiplier = pkg.Multiplier
	rec.PackageSizeValue = pkg.SizeValue
	rec.PackageSizeUnit = pkg.SizeUnit
	rec.PackageSizeSIValue = pkg.SIValue
	rec.PackageSizeSIUnit = pkg.SIUnit
	rec.PackageParseWarnings = pkg.Warnings

	// C5 食材連結
	link := p.linker.Link(row)
	rec.IngredientID = link.IngredientID
	rec.IngredientCanonicalName = link.CanonicalName
	rec.LinkConfidence = link.Confidence
	rec.LinkMethod = link.Method
	rec.LinkReason = link.Reason
	rec.LinkCandidates = link.Candidates

	var ingredient *reference.Ingredient
	if link.IngredientID != nil {
		ingredient = p.repo.Get(*link.IngredientID)
	}

	// 未連結列（含複審列）到此終止：標準數值保持 null
	if ingredient == nil {
		return rec
	}

	// C6 形態
	form := p.forms.Resolve(row, unit.UnitEnum, ingredient)
	rec.ResolvedFormID = form.FormID
	rec.FormSource = form.Source
	rec.FormConflictFlag = form.ConflictFlag
	rec.FormNotes = form.Notes

	var formEntry *reference.Form
	if form.FormID != nil {
		formEntry = p.repo.FormGet(*form.FormID)
	}

	// C7 標準維度
	dim := SelectDimension(unit.OriginalDimension, formEntry)
	rec.CanonicalUnit = dim.CanonicalUnit
	rec.CanonicalDimensionSelected = dim.DimensionSelected
	rec.BridgeRequired = dim.BridgeRequired

	// C8 密度：僅在需要橋接時查找
	var densityGPerML *float64
	if dim.BridgeRequired != BridgeNone {
		dens := p.bridge.Lookup(ingredient, form.FormID, row.IngredientOriginalText)
		rec.DensityID = dens.DensityID
		rec.DensityGPerML = dens.GPerML
		rec.BridgeSelectionPath = dens.SelectionPath
		rec.BridgeWarnings = dens.Warnings
		rec.FlagNeedsDensityLookup = dens.NeedsLookup
		rec.BridgeInputsReady = dens.InputsReady
		if dens.InputsReady {
			densityGPerML = dens.GPerML
		}
	} else {
		rec.BridgeInputsReady = dim.CanonicalUnit != nil
	}

	// C9 換算
	conv := Convert(qty.Min, qty.Max, unit.UnitEnum, dim, densityGPerML)
	rec.CanonicalQtyMin = conv.Min
	rec.CanonicalQtyMax = conv.Max
	rec.CanonicalQty = conv.Mid
	rec.ConversionPath = conv.Path

	return rec
}
