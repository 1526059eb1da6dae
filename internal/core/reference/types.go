package reference

import "encoding/json"

// Ingredient 食材主表條目
type Ingredient struct {
	IngredientID  string            `json:"ingredient_id"`
	PrimaryName   string            `json:"primary_name"`
	Aliases       []string          `json:"aliases,omitempty"`
	AliasesRaw    string            `json:"aliases_raw,omitempty"` // 分號分隔的別名欄位（舊版快照格式）
	Category      string            `json:"category,omitempty"`
	DefaultFormID string            `json:"default_form_id,omitempty"`
	FormIDs       []string          `json:"form_ids,omitempty"`       // 此食材可用的形態集合
	FormOverrides map[string]string `json:"form_overrides,omitempty"` // token -> form_id 的逐食材覆寫
}

// Form 形態表條目
type Form struct {
	FormID             string `json:"form_id"`
	Name               string `json:"name"`
	Group              string `json:"group,omitempty"`
	TargetDimension    string `json:"target_dimension"` // g | mL | auto
	DisplayRuleDefault string `json:"display_rule_default,omitempty"`
}

// Density 密度表條目
type Density struct {
	DensityID      string   `json:"density_id"`
	IngredientID   string   `json:"ingredient_id"`
	FormID         string   `json:"form_id"`
	GPerML         float64  `json:"g_per_ml"`
	PackedState    string   `json:"packed_state,omitempty"` // packed | loosely_packed | 空
	TempC          *float64 `json:"temp_c,omitempty"`
	SourcePriority int      `json:"source_priority,omitempty"`
	QualityScore   float64  `json:"quality_score,omitempty"`
	EffectiveFrom  string   `json:"effective_from,omitempty"` // YYYY-MM-DD
	EffectiveTo    string   `json:"effective_to,omitempty"`
	IsActive       bool     `json:"is_active"`
}

// UnmarshalJSON 快照未帶 is_active 欄位時視為啟用
func (d *Density) UnmarshalJSON(data []byte) error {
	type density Density
	row := density{IsActive: true}
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}
	*d = Density(row)
	return nil
}

// Snapshot 啟動時載入的全部參照資料
type Snapshot struct {
	Ingredients      []Ingredient      `json:"ingredients"`
	Forms            []Form            `json:"forms"`
	Densities        []Density         `json:"densities"`
	MeaningTokens    []string          `json:"meaning_tokens"`
	CategoryDefaults map[string]string `json:"category_defaults,omitempty"` // category -> form_id
}
