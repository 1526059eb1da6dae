package pipeline

// InputRow Stage-1 輸入資料列
type InputRow struct {
	RecipeID               string `json:"recipe_id"`
	IngredientLineNumber   int    `json:"ingredient_line_number"`
	IngredientOriginalText string `json:"ingredient_original_text"`
	QtyValueOriginal       string `json:"qty_value_original,omitempty"`
	UnitOriginal           string `json:"unit_original,omitempty"`
	PackageSizeRaw         string `json:"package_size_raw,omitempty"`
	FormHintRaw            string `json:"form_hint_raw,omitempty"`
	ModifiersRaw           string `json:"modifiers_raw,omitempty"`
	SizeDescriptorRaw      string `json:"size_descriptor_raw,omitempty"`
	LineHash               string `json:"line_hash,omitempty"`
}

// 維度
const (
	DimMass    = "mass"
	DimVolume  = "volume"
	DimCount   = "count"
	DimSpecial = "special"
)

// 精度代碼
const (
	PrecisionInteger  = "integer"
	PrecisionDecimal  = "decimal"
	PrecisionFraction = "fraction"
	PrecisionMixed    = "mixed"
	PrecisionRange    = "range"
	PrecisionText     = "text"
)

// 連結方法
const (
	LinkExact      = "exact"
	LinkAlias      = "alias"
	LinkNormalized = "normalized"
	LinkFuzzy      = "fuzzy"
	LinkReview     = "review"
	LinkUnresolved = "unresolved"
)

// 形態來源
const (
	FormSourceAlias           = "alias" // 逐食材覆寫表
	FormSourceExplicit        = "explicit"
	FormSourceUnitBias        = "unit_bias"
	FormSourceDefault         = "default"
	FormSourceCategoryDefault = "category_default"
)

// 標準單位
const (
	CanonicalG  = "g"
	CanonicalML = "mL"
	CanonicalEA = "ea"
)

// 橋接需求
const (
	BridgeNone      = "none"
	BridgeVolToMass = "vol→mass"
	BridgeMassToVol = "mass→vol"
)

// 橋接選擇路徑
const (
	BridgeH0NoDensity      = "H0_NO_DENSITY"
	BridgeH1ExactFormPack  = "H1_EXACT_FORM_PACKED"
	BridgeH2ExactForm      = "H2_EXACT_FORM"
	BridgeH3FormGroup      = "H3_FORM_GROUP"
	BridgeH4DefaultForm    = "H4_DEFAULT_FORM"
	BridgeH5AnyForm        = "H5_ANY_FORM"
)

// 換算路徑
const (
	PathCount          = "count"
	PathMassToMass     = "mass→mass"
	PathVolToVol       = "vol→vol"
	PathVolToMassDens  = "vol→mass via density"
	PathMassToVolDens  = "mass→vol via density"
)

// LinkCandidate 連結複審候選
type LinkCandidate struct {
	IngredientID string  `json:"ingredient_id"`
	PrimaryName  string  `json:"primary_name"`
	Score        float64 `json:"score"`
}

// Record 標準化輸出資料列。欄位按階段逐步補齊，後階段不改寫前階段欄位。
type Record struct {
	// 身份與來源
	RecipeID               string `json:"recipe_id"`
	IngredientLineNumber   int    `json:"ingredient_line_number"`
	IngredientOriginalText string `json:"ingredient_original_text"`
	LineHash               string `json:"line_hash,omitempty"`
	IdempotencyKey         string `json:"idempotency_key"`

	// 輸入欄位透傳
	QtyValueOriginal  string `json:"qty_value_original,omitempty"`
	UnitOriginal      string `json:"unit_original,omitempty"`
	PackageSizeRaw    string `json:"package_size_raw,omitempty"`
	FormHintRaw       string `json:"form_hint_raw,omitempty"`
	ModifiersRaw      string `json:"modifiers_raw,omitempty"`
	SizeDescriptorRaw string `json:"size_descriptor_raw,omitempty"`

	// 入庫拒絕（僅拒絕列設置；拒絕列不再經後續階段）
	RejectCode string `json:"reject_code,omitempty"`

	// C2 數量
	QtyMin           *float64 `json:"qty_min"`
	QtyMax           *float64 `json:"qty_max"`
	QtyIsRange       bool     `json:"qty_is_range"`
	QtyApproxFlag    bool     `json:"qty_approx_flag"`
	QtyPrecisionCode string   `json:"qty_precision_code,omitempty"`
	QtyParseWarnings []string `json:"qty_parse_warnings,omitempty"`

	// C3 單位
	UnitEnum            *string `json:"unit_enum"`
	OriginalDimension   *string `json:"original_dimension"`
	FlagNonstandardUnit bool    `json:"flag_nonstandard_unit"`

	// C4 包裝
	PackageMultiplier    float64  `json:"package_multiplier"`
	PackageSizeValue     *float64 `json:"package_size_value"`
	PackageSizeUnit      *string  `json:"package_size_unit"`
	PackageSizeSIValue   *float64 `json:"package_size_si_value"`
	PackageSizeSIUnit    *string  `json:"package_size_si_unit"`
	PackageParseWarnings []string `json:"package_parse_warnings,omitempty"`

	// C5 食材連結
	IngredientID            *string         `json:"ingredient_id"`
	IngredientCanonicalName *string         `json:"ingredient_canonical_name"`
	LinkConfidence          float64         `json:"link_confidence"`
	LinkMethod              string          `json:"link_method,omitempty"`
	LinkReason              string          `json:"link_reason,omitempty"`
	LinkCandidates          []LinkCandidate `json:"link_candidates,omitempty"`

	// C6 形態
	ResolvedFormID   *string `json:"resolved_form_id"`
	FormSource       string  `json:"form_source,omitempty"`
	FormConflictFlag bool    `json:"form_conflict_flag"`
	FormNotes        string  `json:"form_notes,omitempty"`

	// C7 標準維度
	CanonicalUnit              *string `json:"canonical_unit"`
	CanonicalDimensionSelected *string `json:"canonical_dimension_selected"`
	BridgeRequired             string  `json:"bridge_required"`
	BridgeInputsReady          bool    `json:"bridge_inputs_ready"`

	// C8 密度
	DensityID              *string  `json:"density_id"`
	DensityGPerML          *float64 `json:"density_g_per_ml"`
	BridgeSelectionPath    string   `json:"bridge_selection_path,omitempty"`
	BridgeWarnings         []string `json:"bridge_warning,omitempty"`
	FlagNeedsDensityLookup bool     `json:"flag_needs_density_lookup"`

	// C9 換算
	CanonicalQtyMin *float64 `json:"canonical_qty_min"`
	CanonicalQtyMax *float64 `json:"canonical_qty_max"`
	CanonicalQty    *float64 `json:"canonical_qty"`
	ConversionPath  string   `json:"conversion_path,omitempty"`
	ConversionNotes string   `json:"conversion_notes,omitempty"`
}
