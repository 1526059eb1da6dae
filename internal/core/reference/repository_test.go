package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"All-Purpose Flour", "all purpose flour"},
		{"  Chia   Seeds ", "chia seeds"},
		{"olive oil (extra virgin)", "olive oil extra virgin"},
		{"crème fraîche", "crème fraîche"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.input), "input %q", tt.input)
	}
}

func TestSingularizeWord(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"seeds", "seed"},
		{"tomatoes", "tomato"},
		{"berries", "berry"},
		{"leaves", "leaf"},
		{"knives", "knife"},
		{"cloves", "clove"},
		{"olives", "olive"},
		{"bunches", "bunch"},
		{"radishes", "radish"},
		{"glasses", "glass"},
		{"flour", "flour"},
		{"couscous", "couscou"}, // 已知限制：去複數是啟發式，兩側一致即可
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SingularizeWord(tt.input), "input %q", tt.input)
	}
}

func TestNormalizeForMatching(t *testing.T) {
	assert.Equal(t, "chia seed", NormalizeForMatching("Chia Seeds"))
	assert.Equal(t, "all purpose flour", NormalizeForMatching("all-purpose flour"))
}

func minimalSnapshot() *Snapshot {
	return &Snapshot{
		Ingredients: []Ingredient{
			{IngredientID: "ING_B", PrimaryName: "chia seeds", Aliases: []string{"chia"}},
			{IngredientID: "ING_A", PrimaryName: "flax seeds"},
		},
		Forms: []Form{
			{FormID: "FORM_WHOLE", TargetDimension: "auto"},
		},
		Densities: []Density{
			{DensityID: "DEN_B", IngredientID: "ING_B", FormID: "FORM_WHOLE", GPerML: 0.6, IsActive: true},
			{DensityID: "DEN_A", IngredientID: "ING_A", FormID: "FORM_WHOLE", GPerML: 0.7, IsActive: true},
		},
		MeaningTokens: []string{"chia", "flax", "seed"},
	}
}

func TestRepositoryLookups(t *testing.T) {
	repo, err := NewRepository(minimalSnapshot())
	require.NoError(t, err)

	assert.NotNil(t, repo.Get("ING_A"))
	assert.Nil(t, repo.Get("ING_X"))

	// 索引鍵經過去複數正規化
	ing := repo.ByPrimary("chia seed")
	require.NotNil(t, ing)
	assert.Equal(t, "ING_B", ing.IngredientID)

	assert.NotNil(t, repo.ByAlias("chia"))
	assert.Nil(t, repo.ByPrimary("chia seeds"))
}

func TestRepositoryDuplicateID(t *testing.T) {
	snap := minimalSnapshot()
	snap.Ingredients = append(snap.Ingredients, Ingredient{IngredientID: "ING_A", PrimaryName: "dup"})
	_, err := NewRepository(snap)
	assert.Error(t, err)
}

// 同名衝突時取字典序較小的 ingredient_id，與輸入順序無關
func TestRepositoryCollisionDeterminism(t *testing.T) {
	snap := &Snapshot{
		Ingredients: []Ingredient{
			{IngredientID: "ING_Z", PrimaryName: "sugar"},
			{IngredientID: "ING_A", PrimaryName: "sugar"},
		},
		MeaningTokens: []string{"sugar"},
	}
	repo, err := NewRepository(snap)
	require.NoError(t, err)

	ing := repo.ByPrimary("sugar")
	require.NotNil(t, ing)
	assert.Equal(t, "ING_A", ing.IngredientID)
}

func TestFuzzyTopK(t *testing.T) {
	repo, err := NewRepository(minimalSnapshot())
	require.NoError(t, err)

	matches := repo.FuzzyTopK([]string{"chia", "seed"}, 5)
	require.NotEmpty(t, matches)
	assert.Equal(t, "ING_B", matches[0].Ingredient.IngredientID)
	assert.Equal(t, 1.0, matches[0].Score)

	// {seed} 對兩個條目同分：別名多者優先
	matches = repo.FuzzyTopK([]string{"seed"}, 5)
	require.Len(t, matches, 2)
	assert.Equal(t, matches[0].Score, matches[1].Score)
	assert.Equal(t, "ING_B", matches[0].Ingredient.IngredientID)
}

func TestFuzzyTopKLimit(t *testing.T) {
	repo, err := NewRepository(minimalSnapshot())
	require.NoError(t, err)

	assert.Len(t, repo.FuzzyTopK([]string{"seed"}, 1), 1)
	assert.Empty(t, repo.FuzzyTopK(nil, 5))
	assert.Empty(t, repo.FuzzyTopK([]string{"seed"}, 0))
}

func TestFindDensitiesDeterministicOrder(t *testing.T) {
	repo, err := NewRepository(minimalSnapshot())
	require.NoError(t, err)

	all := repo.FindDensities(func(*Density) bool { return true })
	require.Len(t, all, 2)
	assert.Equal(t, "DEN_A", all[0].DensityID)
	assert.Equal(t, "DEN_B", all[1].DensityID)
}

func TestFilterMeaningTokens(t *testing.T) {
	repo, err := NewRepository(minimalSnapshot())
	require.NoError(t, err)

	assert.Equal(t, []string{"chia", "seed"}, repo.FilterMeaningTokens([]string{"organic", "chia", "seed"}))
	assert.True(t, repo.IsMeaningToken("flax"))
	assert.False(t, repo.IsMeaningToken("organic"))
}
