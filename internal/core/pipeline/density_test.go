package pipeline

import (
	"testing"

	"ingredient-canonicalizer/internal/core/reference"
	"ingredient-canonicalizer/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBridge(t *testing.T) (*DensityBridge, *reference.Repository) {
	t.Helper()
	repo := testRepo(t)
	cfg := testPipelineConfig()
	return NewDensityBridge(repo, cfg.Today, cfg.DensitySanityMin, cfg.DensitySanityMax), repo
}

func TestDensityExactForm(t *testing.T) {
	bridge, repo := testBridge(t)

	res := bridge.Lookup(repo.Get("ING_FLOUR_AP"), common.StringPtr("FORM_POWDER"), "2 cups all-purpose flour")
	require.NotNil(t, res.DensityID)
	assert.Equal(t, "DEN_001", *res.DensityID)
	assert.Equal(t, 0.53, *res.GPerML)
	assert.Equal(t, BridgeH2ExactForm, res.SelectionPath)
	assert.False(t, res.NeedsLookup)
	assert.True(t, res.InputsReady)
}

// 中選列越界：記錄該列並標記不可換算，不得落層改拿他形態的密度
func TestDensitySanityBandOnChosen(t *testing.T) {
	bridge, repo := testBridge(t)

	// FORM_LIQUID 層的 DEN_009 越界；帶內的 DEN_010 屬他形態，不得被撿走
	res := bridge.Lookup(repo.Get("ING_OIL"), common.StringPtr("FORM_LIQUID"), "")
	require.NotNil(t, res.DensityID)
	assert.Equal(t, "DEN_009", *res.DensityID)
	assert.Equal(t, BridgeH2ExactForm, res.SelectionPath)
	assert.Contains(t, res.Warnings, common.BridgeWarnSanityRangeEdge)
	assert.False(t, res.InputsReady)
	assert.False(t, res.NeedsLookup)
}

// 同一食材形態多列時依來源優先級裁決
func TestDensityRankingBySourcePriority(t *testing.T) {
	bridge, repo := testBridge(t)

	// DEN_002 priority 5 較 DEN_001 priority 10 低，即使生效日期較新
	res := bridge.Lookup(repo.Get("ING_FLOUR_AP"), common.StringPtr("FORM_POWDER"), "")
	assert.Equal(t, "DEN_001", *res.DensityID)
}

func TestDensityPackedState(t *testing.T) {
	bridge, repo := testBridge(t)
	sugar := repo.Get("ING_SUGAR_BROWN")

	res := bridge.Lookup(sugar, common.StringPtr("FORM_GRANULAR"), "1 cup packed brown sugar")
	require.NotNil(t, res.DensityID)
	assert.Equal(t, "DEN_003", *res.DensityID)
	assert.Equal(t, 0.93, *res.GPerML)
	assert.Equal(t, BridgeH1ExactFormPack, res.SelectionPath)

	// loosely packed 必須先於 packed 判定
	res = bridge.Lookup(sugar, common.StringPtr("FORM_GRANULAR"), "1 cup loosely packed brown sugar")
	assert.Equal(t, "DEN_004", *res.DensityID)
	assert.Equal(t, 0.72, *res.GPerML)
	assert.Equal(t, BridgeH1ExactFormPack, res.SelectionPath)
}

// 形態無密度列時沿群組回退
func TestDensityFormGroupFallback(t *testing.T) {
	bridge, repo := testBridge(t)

	// brown sugar 只有 FORM_GRANULAR 列；以同群組的 FORM_POWDER 查找應回退到群組層
	res := bridge.Lookup(repo.Get("ING_SUGAR_BROWN"), common.StringPtr("FORM_POWDER"), "")
	require.NotNil(t, res.DensityID)
	assert.Equal(t, BridgeH3FormGroup, res.SelectionPath)
}

func TestDensityDefaultFormFallback(t *testing.T) {
	bridge, repo := testBridge(t)

	// 無形態可用時回退到食材預設形態
	res := bridge.Lookup(repo.Get("ING_HONEY"), nil, "")
	require.NotNil(t, res.DensityID)
	assert.Equal(t, "DEN_005", *res.DensityID)
	assert.Equal(t, BridgeH4DefaultForm, res.SelectionPath)
}

func TestDensityAnyFormFallback(t *testing.T) {
	bridge, repo := testBridge(t)

	// cumin 預設形態 FORM_WHOLE 無密度列，任一形態層撿到 FORM_GROUND 列
	res := bridge.Lookup(repo.Get("ING_CUMIN"), nil, "")
	require.NotNil(t, res.DensityID)
	assert.Equal(t, "DEN_006", *res.DensityID)
	assert.Equal(t, BridgeH5AnyForm, res.SelectionPath)
}

func TestDensityNotFound(t *testing.T) {
	bridge, repo := testBridge(t)

	res := bridge.Lookup(repo.Get("ING_GARLIC"), common.StringPtr("FORM_WHOLE"), "")
	assert.Nil(t, res.DensityID)
	assert.Nil(t, res.GPerML)
	assert.Equal(t, BridgeH0NoDensity, res.SelectionPath)
	assert.True(t, res.NeedsLookup)
	assert.False(t, res.InputsReady)
}

func TestDensityNilIngredient(t *testing.T) {
	bridge, _ := testBridge(t)

	res := bridge.Lookup(nil, nil, "")
	assert.Nil(t, res.DensityID)
	assert.True(t, res.NeedsLookup)
}

// 停用與過期列不得中選，即使優先級更高
func TestDensityWindowAndActiveFiltering(t *testing.T) {
	bridge, repo := testBridge(t)

	// DEN_007（inactive）與 DEN_008（過期）priority 99，但應選 DEN_001
	res := bridge.Lookup(repo.Get("ING_FLOUR_AP"), common.StringPtr("FORM_POWDER"), "")
	assert.Equal(t, "DEN_001", *res.DensityID)
}

func TestDensityPackedMismatchWarning(t *testing.T) {
	bridge, repo := testBridge(t)

	// flour 無 packed 列：提示 packed 但選到非 packed 列時要留警告
	res := bridge.Lookup(repo.Get("ING_FLOUR_AP"), common.StringPtr("FORM_POWDER"), "1 cup packed flour")
	require.NotNil(t, res.DensityID)
	assert.Contains(t, res.Warnings, common.BridgeWarnPackedStateMismatch)
}
