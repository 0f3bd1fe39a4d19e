package stageview

import "github.com/supremetuning/tuningcalc/internal/models"

// Chart scale floors. Small engines still get a bar scale of at least
// these values so their bars do not fill the whole chart.
const (
	hpFloor = 400
	nmFloor = 500

	// headroom leaves 10% of empty space above the tallest bar
	headroom = 1.1
)

// BarPair describes one stock/tuned bar pair on the comparison chart.
// Widths are percentages of the chart area.
type BarPair struct {
	Stock      int     `json:"stock"`
	Tuned      int     `json:"tuned"`
	Gain       int     `json:"gain"`
	Ceiling    float64 `json:"ceiling"`
	StockWidth float64 `json:"stockWidth"`
	TunedWidth float64 `json:"tunedWidth"`
}

// Comparison is the rendered view of a stage's power and torque figures
type Comparison struct {
	Power  BarPair `json:"power"`
	Torque BarPair `json:"torque"`
}

// Compare computes the bar chart values for a stage. Gains may be
// negative for economy tunes that trade power for consumption.
func Compare(stage models.Stage) Comparison {
	return Comparison{
		Power:  barPair(stage.StockHp, stage.TunedHp, hpFloor),
		Torque: barPair(stage.StockNm, stage.TunedNm, nmFloor),
	}
}

func barPair(stock, tuned, floor int) BarPair {
	ceiling := float64(maxOf(stock, tuned, floor)) * headroom
	return BarPair{
		Stock:      stock,
		Tuned:      tuned,
		Gain:       tuned - stock,
		Ceiling:    ceiling,
		StockWidth: width(stock, ceiling),
		TunedWidth: width(tuned, ceiling),
	}
}

func width(value int, ceiling float64) float64 {
	if ceiling <= 0 {
		return 0
	}
	w := float64(value) / ceiling * 100
	if w < 0 {
		return 0
	}
	return w
}

func maxOf(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
