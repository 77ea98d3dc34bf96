// Package calc derives post-transfer vote shares from the fixed 2020
// baseline distribution.
package calc

import "math"

// Baseline vote shares in percentage points. They come straight from the
// source data and intentionally do not sum to 100.
const (
	BaseNDA    = 41.40
	BaseMGB    = 38.75
	BaseOthers = 19.85
)

// Shares is the derived outcome for one prediction.
type Shares struct {
	NDA    float64
	MGB    float64
	Others float64
	JSP    float64
}

// Results maps the three transfer percentages (0-100, pre-validated by the
// caller) to the four resulting shares. Each bloc retains base*(1-t/100);
// JSP receives everything transferred away. The four outputs are rounded
// independently to 2 decimals; intermediate sums are not rounded.
func Results(ndaTransfer, mgbTransfer, othersTransfer float64) Shares {
	return Shares{
		NDA:    round2(BaseNDA * (1 - ndaTransfer/100)),
		MGB:    round2(BaseMGB * (1 - mgbTransfer/100)),
		Others: round2(BaseOthers * (1 - othersTransfer/100)),
		JSP: round2(BaseNDA*(ndaTransfer/100) +
			BaseMGB*(mgbTransfer/100) +
			BaseOthers*(othersTransfer/100)),
	}
}

// round2 rounds half away from zero to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
