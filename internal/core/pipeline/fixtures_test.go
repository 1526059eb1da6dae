package pipeline

import (
	"testing"

	"ingredient-canonicalizer/internal/core/reference"
	"ingredient-canonicalizer/internal/infrastructure/config"

	"github.com/stretchr/testify/require"
)

// 測試用參照資料快照：涵蓋連結、形態、密度各層所需的代表性條目。

func testSnapshot() *reference.Snapshot {
	return &reference.Snapshot{
		Ingredients: []reference.Ingredient{
			{
				IngredientID:  "ING_CHIA",
				PrimaryName:   "chia seeds",
				Aliases:       []string{"chia"},
				Category:      "seed",
				DefaultFormID: "FORM_WHOLE",
				FormIDs:       []string{"FORM_WHOLE", "FORM_GROUND", "FORM_SEEDS"},
			},
			{
				IngredientID:  "ING_FLOUR_AP",
				PrimaryName:   "all-purpose flour",
				Aliases:       []string{"plain flour", "ap flour"},
				Category:      "baking",
				DefaultFormID: "FORM_POWDER",
				FormIDs:       []string{"FORM_POWDER"},
			},
			{
				IngredientID:  "ING_CUMIN",
				PrimaryName:   "cumin",
				Category:      "spice",
				DefaultFormID: "FORM_WHOLE",
				FormIDs:       []string{"FORM_WHOLE", "FORM_GROUND"},
			},
			{
				IngredientID: "ING_PAPRIKA",
				PrimaryName:  "paprika",
				Category:     "spice",
				FormIDs:      []string{"FORM_GROUND"},
			},
			{
				IngredientID:  "ING_SUGAR_BROWN",
				PrimaryName:   "brown sugar",
				Category:      "sweetener",
				DefaultFormID: "FORM_GRANULAR",
				FormIDs:       []string{"FORM_GRANULAR"},
			},
			{
				IngredientID:  "ING_HONEY",
				PrimaryName:   "honey",
				Category:      "sweetener",
				DefaultFormID: "FORM_LIQUID",
				FormIDs:       []string{"FORM_LIQUID"},
			},
			{
				IngredientID:  "ING_GARLIC",
				PrimaryName:   "garlic",
				Aliases:       []string{"garlic cloves"},
				Category:      "vegetable",
				DefaultFormID: "FORM_WHOLE",
				FormIDs:       []string{"FORM_WHOLE", "FORM_CHOPPED"},
				FormOverrides: map[string]string{"smashed": "FORM_CHOPPED"},
			},
			{
				IngredientID:  "ING_JAM",
				PrimaryName:   "mixed berry jam spread",
				Category:      "sweetener",
				DefaultFormID: "FORM_LIQUID",
				FormIDs:       []string{"FORM_LIQUID"},
			},
			{
				IngredientID:  "ING_SALT",
				PrimaryName:   "salt",
				Category:      "seasoning",
				DefaultFormID: "FORM_GRANULAR",
				FormIDs:       []string{"FORM_GRANULAR"},
			},
			{
				IngredientID:  "ING_BEEF",
				PrimaryName:   "ground beef",
				Category:      "meat",
				DefaultFormID: "FORM_GROUND",
				FormIDs:       []string{"FORM_GROUND"},
			},
			{
				IngredientID:  "ING_OIL",
				PrimaryName:   "olive oil",
				Category:      "oil",
				DefaultFormID: "FORM_LIQUID",
				FormIDs:       []string{"FORM_LIQUID", "FORM_WHOLE"},
			},
		},
		Forms: []reference.Form{
			{FormID: "FORM_WHOLE", Name: "whole", TargetDimension: "auto"},
			{FormID: "FORM_GROUND", Name: "ground", TargetDimension: "g"},
			{FormID: "FORM_POWDER", Name: "powder", Group: "powder", TargetDimension: "g"},
			{FormID: "FORM_GRANULAR", Name: "granular", Group: "powder", TargetDimension: "g"},
			{FormID: "FORM_LIQUID", Name: "liquid", TargetDimension: "mL"},
			{FormID: "FORM_CHOPPED", Name: "chopped", TargetDimension: "auto"},
			{FormID: "FORM_SEEDS", Name: "seeds", TargetDimension: "auto"},
		},
		Densities: []reference.Density{
			{DensityID: "DEN_001", IngredientID: "ING_FLOUR_AP", FormID: "FORM_POWDER", GPerML: 0.53, SourcePriority: 10, QualityScore: 0.9, EffectiveFrom: "2020-01-01", IsActive: true},
			{DensityID: "DEN_002", IngredientID: "ING_FLOUR_AP", FormID: "FORM_POWDER", GPerML: 0.55, SourcePriority: 5, QualityScore: 0.9, EffectiveFrom: "2021-01-01", IsActive: true},
			{DensityID: "DEN_003", IngredientID: "ING_SUGAR_BROWN", FormID: "FORM_GRANULAR", GPerML: 0.93, PackedState: "packed", SourcePriority: 10, QualityScore: 0.9, EffectiveFrom: "2020-01-01", IsActive: true},
			{DensityID: "DEN_004", IngredientID: "ING_SUGAR_BROWN", FormID: "FORM_GRANULAR", GPerML: 0.72, PackedState: "loosely_packed", SourcePriority: 10, QualityScore: 0.9, EffectiveFrom: "2020-01-01", IsActive: true},
			{DensityID: "DEN_005", IngredientID: "ING_HONEY", FormID: "FORM_LIQUID", GPerML: 1.42, SourcePriority: 10, QualityScore: 0.95, EffectiveFrom: "2020-01-01", IsActive: true},
			{DensityID: "DEN_006", IngredientID: "ING_CUMIN", FormID: "FORM_GROUND", GPerML: 0.47, SourcePriority: 10, QualityScore: 0.9, EffectiveFrom: "2020-01-01", IsActive: true},
			// 已停用與過期列不得中選
			{DensityID: "DEN_007", IngredientID: "ING_FLOUR_AP", FormID: "FORM_POWDER", GPerML: 0.99, SourcePriority: 99, QualityScore: 1.0, EffectiveFrom: "2020-01-01", IsActive: false},
			{DensityID: "DEN_008", IngredientID: "ING_FLOUR_AP", FormID: "FORM_POWDER", GPerML: 0.98, SourcePriority: 99, QualityScore: 1.0, EffectiveFrom: "2020-01-01", EffectiveTo: "2021-12-31", IsActive: true},
			// 正確層級但密度越界（橄欖油不可能 3.5 g/mL），另備一條在帶內的他形態列
			{DensityID: "DEN_009", IngredientID: "ING_OIL", FormID: "FORM_LIQUID", GPerML: 3.5, SourcePriority: 10, QualityScore: 0.9, EffectiveFrom: "2020-01-01", IsActive: true},
			{DensityID: "DEN_010", IngredientID: "ING_OIL", FormID: "FORM_WHOLE", GPerML: 0.91, SourcePriority: 10, QualityScore: 0.9, EffectiveFrom: "2020-01-01", IsActive: true},
		},
		MeaningTokens: []string{
			"chia", "seed", "flour", "purpose", "cumin", "paprika",
			"sugar", "brown", "honey", "garlic", "clove",
			"mixed", "berry", "jam", "spread", "sauce",
		},
		CategoryDefaults: map[string]string{
			"spice": "FORM_GROUND",
		},
	}
}

func testRepo(t *testing.T) *reference.Repository {
	t.Helper()
	repo, err := reference.NewRepository(testSnapshot())
	require.NoError(t, err)
	return repo
}

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		Today:            "2025-06-01",
		FuzzyAccept:      0.92,
		FuzzyReview:      0.80,
		FuzzyTopK:        5,
		DensitySanityMin: 0.05,
		DensitySanityMax: 2.0,
	}
}

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	return New(testRepo(t), testPipelineConfig())
}
