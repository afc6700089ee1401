// Package advisor implements the deterministic portfolio calculator. It
// produces an asset allocation from an investor profile, growth projections
// for that allocation, and curated fund picks per sleeve. The calculator is
// network-free and complements the remote advisory fetch: consumers show
// both side by side, or fall back to it when the remote side is
// unavailable.
package advisor

import (
	"fmt"
	"math"
	"strings"
)

// PlanType is the investment vehicle.
type PlanType string

const (
	PlanSIP     PlanType = "SIP"
	PlanLumpsum PlanType = "Lumpsum"
	PlanSWP     PlanType = "SWP"
)

// RiskLevel is the investor's risk tolerance.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ParsePlanType normalizes a plan type string.
func ParsePlanType(s string) (PlanType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sip":
		return PlanSIP, nil
	case "lumpsum":
		return PlanLumpsum, nil
	case "swp":
		return PlanSWP, nil
	default:
		return "", fmt.Errorf("unknown plan type %q", s)
	}
}

// ParseRiskLevel normalizes a risk level string.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskLow, nil
	case "medium":
		return RiskMedium, nil
	case "high":
		return RiskHigh, nil
	default:
		return "", fmt.Errorf("unknown risk level %q", s)
	}
}

// Allocation is a recommended portfolio split with its return expectations.
// Percentages sum to 100.
type Allocation struct {
	EquityPercent float64 `json:"equity_percent"`
	DebtPercent   float64 `json:"debt_percent"`
	GoldPercent   float64 `json:"gold_percent"`

	// ExpectedReturn is the blended nominal annual return in percent.
	ExpectedReturn float64 `json:"expected_return"`

	// RealReturn is ExpectedReturn less assumed inflation.
	RealReturn float64 `json:"real_return"`

	// RiskScore is a short label and description, comma separated.
	RiskScore string `json:"risk_score"`
}

// Projections are portfolio values at fixed horizons, in rupees.
type Projections struct {
	Year5  float64 `json:"year_5"`
	Year10 float64 `json:"year_10"`
	Year15 float64 `json:"year_15"`
	Year20 float64 `json:"year_20"`
}

// Recommendations lists curated funds per sleeve. A sleeve with zero
// allocation gets no funds.
type Recommendations struct {
	EquityFunds []string `json:"equity_funds"`
	DebtFunds   []string `json:"debt_funds"`
	GoldFunds   []string `json:"gold_funds"`
}

// Calculator computes allocations and projections from fixed return
// assumptions. The zero value is not usable; use NewCalculator.
type Calculator struct {
	// Assumed nominal annual returns per asset class, in percent.
	EquityReturn float64
	DebtReturn   float64
	GoldReturn   float64

	// Assumed annual inflation, in percent.
	Inflation float64
}

// NewCalculator returns a calculator with the standard Indian-market
// assumptions: 12% equity, 7% debt, 8% gold, 6% inflation.
func NewCalculator() *Calculator {
	return &Calculator{
		EquityReturn: 12.0,
		DebtReturn:   7.0,
		GoldReturn:   8.0,
		Inflation:    6.0,
	}
}

const (
	minEquityPercent = 10.0
	maxEquityPercent = 90.0
)

// riskMultiplier scales the age-based equity allocation.
var riskMultiplier = map[RiskLevel]float64{
	RiskLow:    0.7,
	RiskMedium: 1.0,
	RiskHigh:   1.3,
}

// planAdjustment shifts the equity allocation by vehicle: accumulation
// plans lean into equity, withdrawal plans away from it.
var planAdjustment = map[PlanType]float64{
	PlanSIP:     5.0,
	PlanLumpsum: 0.0,
	PlanSWP:     -15.0,
}

// Allocate computes the recommended split for an investor. The equity base
// follows the 110-minus-age rule clamped to [10,90], scaled by the risk
// multiplier and shifted by the plan adjustment, then clamped again. Growth
// allocations carve a gold sleeve out of debt.
func (c *Calculator) Allocate(age int, plan PlanType, risk RiskLevel) (Allocation, error) {
	if age < 18 || age > 80 {
		return Allocation{}, fmt.Errorf("age %d out of range [18, 80]", age)
	}
	mult, ok := riskMultiplier[risk]
	if !ok {
		return Allocation{}, fmt.Errorf("unknown risk level %q", risk)
	}
	adj, ok := planAdjustment[plan]
	if !ok {
		return Allocation{}, fmt.Errorf("unknown plan type %q", plan)
	}

	base := clamp(float64(110-age), minEquityPercent, maxEquityPercent)
	equity := clamp(base*mult+adj, minEquityPercent, maxEquityPercent)
	gold := goldSleeve(equity)
	debt := 100 - equity - gold

	expected := (equity*c.EquityReturn + debt*c.DebtReturn + gold*c.GoldReturn) / 100

	return Allocation{
		EquityPercent:  equity,
		DebtPercent:    debt,
		GoldPercent:    gold,
		ExpectedReturn: expected,
		RealReturn:     expected - c.Inflation,
		RiskScore:      riskScore(equity),
	}, nil
}

// goldSleeve sizes the gold allocation from the equity share. Defensive
// portfolios hold no gold; growth portfolios take the sleeve from debt.
func goldSleeve(equity float64) float64 {
	switch {
	case equity >= 60:
		return 10
	case equity >= 40:
		return 5
	default:
		return 0
	}
}

func riskScore(equity float64) string {
	switch {
	case equity >= 75:
		return "Aggressive, maximum growth orientation"
	case equity >= 55:
		return "Growth, equity-led with a stability cushion"
	case equity >= 35:
		return "Balanced, even split between growth and safety"
	default:
		return "Conservative, capital preservation first"
	}
}

// Project computes portfolio values at the 5/10/15/20 year horizons for
// the given annual return (in percent). SIP amounts are monthly
// contributions compounded as an annuity due; lumpsum and SWP amounts
// compound as a single principal.
func (c *Calculator) Project(amount float64, annualReturn float64, plan PlanType) Projections {
	value := func(years int) float64 {
		if plan == PlanSIP {
			return sipFutureValue(amount, annualReturn, years)
		}
		return amount * math.Pow(1+annualReturn/100, float64(years))
	}
	return Projections{
		Year5:  value(5),
		Year10: value(10),
		Year15: value(15),
		Year20: value(20),
	}
}

// sipFutureValue is the future value of a monthly annuity due: each
// installment earns from the start of its month.
func sipFutureValue(monthly, annualReturn float64, years int) float64 {
	m := annualReturn / 100 / 12
	n := float64(years * 12)
	if m == 0 {
		return monthly * n
	}
	return monthly * (math.Pow(1+m, n) - 1) / m * (1 + m)
}

// RecommendFunds returns the curated fund list for each allocated sleeve.
func (c *Calculator) RecommendFunds(a Allocation, plan PlanType) Recommendations {
	var rec Recommendations
	if a.EquityPercent > 0 {
		rec.EquityFunds = []string{
			"Nifty 50 Index Fund - Direct Growth",
			"Parag Parikh Flexi Cap Fund - Direct Growth",
			"HDFC Mid-Cap Opportunities Fund - Direct Growth",
		}
		if a.EquityPercent < 55 {
			// Defensive portfolios skip the mid-cap sleeve.
			rec.EquityFunds = rec.EquityFunds[:2]
		}
	}
	if a.DebtPercent > 0 {
		rec.DebtFunds = []string{
			"ICICI Prudential Short Term Fund - Direct Growth",
			"HDFC Corporate Bond Fund - Direct Growth",
		}
		if plan == PlanSWP {
			rec.DebtFunds = append(rec.DebtFunds, "SBI Magnum Gilt Fund - Direct Growth")
		}
	}
	if a.GoldPercent > 0 {
		rec.GoldFunds = []string{
			"Nippon India Gold Savings Fund - Direct Growth",
			"SBI Gold ETF",
		}
	}
	return rec
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
