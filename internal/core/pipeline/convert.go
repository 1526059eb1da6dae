package pipeline

import (
	"math"

	"ingredient-canonicalizer/internal/core/reference"
	"ingredient-canonicalizer/internal/pkg/common"
)

// 標準換算（C9）：把原始數量換算為標準單位數值。
// 全程 float64；換算常數屬對外契約，不得提前捨入。

// ConvertResult 換算子記錄
type ConvertResult struct {
	Min  *float64
	Max  *float64
	Mid  *float64
	Path string
}

// snapResidue 吸附浮點殘差：與百萬分位格點差距小於 1e-9 時貼齊格點，
// 其餘數值原樣保留。這不是捨入，合法的長尾小數不受影響。
func snapResidue(v float64) float64 {
	r := math.Round(v*1e6) / 1e6
	if math.Abs(v-r) < 1e-9 {
		return r
	}
	return v
}

// Convert 執行標準換算。
// 橋接需要密度但 density 為 nil 時不產生任何標準數值。
func Convert(qtyMin, qtyMax *float64, unitEnum *string, dim DimensionResult, densityGPerML *float64) ConvertResult {
	var res ConvertResult

	if qtyMin == nil || qtyMax == nil || unitEnum == nil || dim.CanonicalUnit == nil {
		return res
	}

	var factor float64
	switch dim.BridgeRequired {
	case BridgeNone:
		switch *dim.CanonicalUnit {
		case CanonicalEA:
			factor = 1.0
			res.Path = PathCount
		case CanonicalG:
			f, ok := reference.MassToG[*unitEnum]
			if !ok {
				return res
			}
			factor = f
			res.Path = PathMassToMass
		case CanonicalML:
			f, ok := reference.VolumeToML[*unitEnum]
			if !ok {
				return res
			}
			factor = f
			res.Path = PathVolToVol
		default:
			return res
		}

	case BridgeVolToMass:
		f, ok := reference.VolumeToML[*unitEnum]
		if !ok || densityGPerML == nil || *densityGPerML <= 0 {
			return res
		}
		factor = f * *densityGPerML
		res.Path = PathVolToMassDens

	case BridgeMassToVol:
		f, ok := reference.MassToG[*unitEnum]
		if !ok || densityGPerML == nil || *densityGPerML <= 0 {
			return res
		}
		factor = f / *densityGPerML
		res.Path = PathMassToVolDens

	default:
		return res
	}

	lo := snapResidue(*qtyMin * factor)
	hi := snapResidue(*qtyMax * factor)
	res.Min = common.Float64Ptr(lo)
	res.Max = common.Float64Ptr(hi)
	res.Mid = common.Float64Ptr(snapResidue((lo + hi) / 2))
	return res
}
