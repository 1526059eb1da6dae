package pipeline

import (
	"ingredient-canonicalizer/internal/core/reference"
	"ingredient-canonicalizer/internal/pkg/common"
)

// 標準維度決策（C7）：由原始維度與形態目標維度查表決定標準單位與橋接需求。

// DimensionResult 維度子記錄
type DimensionResult struct {
	CanonicalUnit     *string
	DimensionSelected *string
	BridgeRequired    string
}

// SelectDimension 決策表。
// 形態的 target_dimension 為 auto 時保留原始維度，不觸發橋接。
// special 維度在此終結：不產生標準單位，也不進入後續換算。
func SelectDimension(originalDimension *string, form *reference.Form) DimensionResult {
	res := DimensionResult{BridgeRequired: BridgeNone}

	if originalDimension == nil {
		return res
	}

	target := "auto"
	if form != nil && form.TargetDimension != "" {
		target = form.TargetDimension
	}

	switch *originalDimension {
	case DimCount:
		res.CanonicalUnit = common.StringPtr(CanonicalEA)
		res.DimensionSelected = common.StringPtr(DimCount)

	case DimMass:
		switch target {
		case "mL":
			res.CanonicalUnit = common.StringPtr(CanonicalML)
			res.DimensionSelected = common.StringPtr(DimVolume)
			res.BridgeRequired = BridgeMassToVol
		default: // g 或 auto 皆落在質量
			res.CanonicalUnit = common.StringPtr(CanonicalG)
			res.DimensionSelected = common.StringPtr(DimMass)
		}

	case DimVolume:
		switch target {
		case "g":
			res.CanonicalUnit = common.StringPtr(CanonicalG)
			res.DimensionSelected = common.StringPtr(DimMass)
			res.BridgeRequired = BridgeVolToMass
		default: // mL 或 auto 皆落在體積
			res.CanonicalUnit = common.StringPtr(CanonicalML)
			res.DimensionSelected = common.StringPtr(DimVolume)
		}

	case DimSpecial:
		res.DimensionSelected = common.StringPtr(DimSpecial)
	}

	return res
}
