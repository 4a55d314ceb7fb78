package health

import (
	"fmt"
	"math"
)

const (
	DefaultTargetMargin     = 30.0
	DefaultTargetDailySales = 5.0

	MarginMax    = 40.0
	InventoryMax = 30.0
	VolumeMax    = 30.0
)

type Input struct {
	MarginPercent    float64
	TargetMargin     float64
	LowStockCount    int
	TotalIngredients int
	AvgDailySales    float64
	TargetDailySales float64
}

type Metric struct {
	Value  float64 `json:"value"`
	Target float64 `json:"target"`
	Score  float64 `json:"score"`
	Max    float64 `json:"max"`
}

type Tip struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Score struct {
	Total     int    `json:"total"`
	Margin    Metric `json:"margin"`
	Inventory Metric `json:"inventory"`
	Volume    Metric `json:"volume"`
	Tips      []Tip  `json:"tips"`
}

// Compose weighs margin, inventory and volume into a 0-100 score and emits
// tips in a fixed order: margin, stock, volume.
func Compose(in Input) Score {
	if in.TargetMargin <= 0 {
		in.TargetMargin = DefaultTargetMargin
	}
	if in.TargetDailySales <= 0 {
		in.TargetDailySales = DefaultTargetDailySales
	}

	margin := Metric{
		Value:  in.MarginPercent,
		Target: in.TargetMargin,
		Score:  ratioScore(in.MarginPercent, in.TargetMargin, MarginMax),
		Max:    MarginMax,
	}

	inventoryScore := InventoryMax
	if in.TotalIngredients > 0 {
		healthy := 1 - float64(in.LowStockCount)/float64(in.TotalIngredients)
		inventoryScore = clamp(healthy, 0, 1) * InventoryMax
	}
	inventory := Metric{
		Value:  float64(in.LowStockCount),
		Target: 0,
		Score:  round2(inventoryScore),
		Max:    InventoryMax,
	}

	volume := Metric{
		Value:  round2(in.AvgDailySales),
		Target: in.TargetDailySales,
		Score:  ratioScore(in.AvgDailySales, in.TargetDailySales, VolumeMax),
		Max:    VolumeMax,
	}

	total := int(math.Round(margin.Score + inventory.Score + volume.Score))
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	return Score{
		Total:     total,
		Margin:    margin,
		Inventory: inventory,
		Volume:    volume,
		Tips:      tips(in),
	}
}

func tips(in Input) []Tip {
	var out []Tip
	if in.MarginPercent < in.TargetMargin {
		out = append(out, Tip{
			Code:    "margin",
			Message: fmt.Sprintf("Margin is %.1f%%, below the %.0f%% target. Review recipe costs, platform commissions and menu prices.", in.MarginPercent, in.TargetMargin),
		})
	}
	if in.LowStockCount > 0 {
		out = append(out, Tip{
			Code:    "stock",
			Message: fmt.Sprintf("%d ingredient(s) are below their minimum stock. Restock before the next service.", in.LowStockCount),
		})
	}
	if in.AvgDailySales < in.TargetDailySales {
		out = append(out, Tip{
			Code:    "volume",
			Message: fmt.Sprintf("Averaging %.1f sales per day against a target of %.0f. Consider promotions or delivery channel visibility.", in.AvgDailySales, in.TargetDailySales),
		})
	}
	if len(out) == 0 {
		out = append(out, Tip{Code: "healthy", Message: "All indicators are healthy. Keep it up."})
	}
	return out
}

func ratioScore(value, target, max float64) float64 {
	return round2(clamp(value/target, 0, 1) * max)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
