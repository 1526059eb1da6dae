package pipeline

import (
	"testing"

	"ingredient-canonicalizer/internal/pkg/common"

	"github.com/stretchr/testify/assert"
)

func validRow() InputRow {
	return InputRow{
		RecipeID:               "R001",
		IngredientLineNumber:   1,
		IngredientOriginalText: "1/2 cup chia seeds",
		QtyValueOriginal:       "1/2",
		UnitOriginal:           "cup",
	}
}

func TestIntakeValid(t *testing.T) {
	row, reject := Intake(validRow())
	assert.Empty(t, reject)
	assert.Equal(t, "R001", row.RecipeID)
}

func TestIntakeNormalizesWhitespace(t *testing.T) {
	in := validRow()
	in.IngredientOriginalText = "  1/2   cup\tchia seeds "
	row, reject := Intake(in)
	assert.Empty(t, reject)
	assert.Equal(t, "1/2 cup chia seeds", row.IngredientOriginalText)
}

func TestIntakeRejects(t *testing.T) {
	t.Run("缺 recipe_id", func(t *testing.T) {
		in := validRow()
		in.RecipeID = ""
		_, reject := Intake(in)
		assert.Equal(t, common.RejectMissingRequiredField, reject)
	})

	t.Run("缺原始文字", func(t *testing.T) {
		in := validRow()
		in.IngredientOriginalText = "   "
		_, reject := Intake(in)
		assert.Equal(t, common.RejectMissingRequiredField, reject)
	})

	t.Run("行號非正", func(t *testing.T) {
		in := validRow()
		in.IngredientLineNumber = 0
		_, reject := Intake(in)
		assert.Equal(t, common.RejectTypeMismatch, reject)
	})

	t.Run("節標題列", func(t *testing.T) {
		in := validRow()
		in.IngredientOriginalText = "For the sauce:"
		_, reject := Intake(in)
		assert.Equal(t, common.RejectSectionHeaderRow, reject)
	})

	t.Run("全大寫節標題", func(t *testing.T) {
		in := validRow()
		in.IngredientOriginalText = "TOPPING"
		_, reject := Intake(in)
		assert.Equal(t, common.RejectSectionHeaderRow, reject)
	})

	t.Run("單位含非法字元", func(t *testing.T) {
		in := validRow()
		in.UnitOriginal = "cup#2"
		_, reject := Intake(in)
		assert.Equal(t, common.RejectUnitInvalidFormat, reject)
	})
}

func TestIntakeDoesNotFlagNormalLines(t *testing.T) {
	// 含數字的列即使簡短也不是節標題
	in := validRow()
	in.IngredientOriginalText = "2 eggs"
	in.QtyValueOriginal = "2"
	in.UnitOriginal = ""
	_, reject := Intake(in)
	assert.Empty(t, reject)
}

func TestIdempotencyKey(t *testing.T) {
	row, _ := Intake(validRow())
	key1 := IdempotencyKey(row)
	key2 := IdempotencyKey(row)
	assert.Equal(t, key1, key2)
	assert.Len(t, key1, 64)

	// line_hash 存在時優先於原始文字
	withHash := row
	withHash.LineHash = "abc123"
	assert.NotEqual(t, key1, IdempotencyKey(withHash))

	// 不同行號產生不同鍵
	other := row
	other.IngredientLineNumber = 2
	assert.NotEqual(t, key1, IdempotencyKey(other))
}
