// Package generator produces synthetic bonds, yield curves and credit
// spreads for seeding a development environment.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/udiptgupta/Risk-lab/pkg/models"
)

var (
	issuers     = []string{"Alpha Capital", "BlueStone Corp", "Zenith Bank", "Aurora Finance"}
	frequencies = []int{1, 2}
	faceValues  = []float64{1000, 5000, 10000}
	ratings     = []string{"AAA", "AA", "A", "BBB"}
)

// Default spreads by rating, in decimal form (150 bps -> 0.0150).
var defaultSpreads = models.CreditSpreads{
	"AAA": 0.0050,
	"AA":  0.0080,
	"A":   0.0110,
	"BBB": 0.0150,
}

// Config controls the shape of the generated universe.
type Config struct {
	Seed       int64
	Bonds      int
	CurveDays  int
	MaxTenor   int
	BaseYield  float64
	YieldSlope float64
}

// Generator produces reproducible synthetic market data from a seed.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

func New(cfg Config) *Generator {
	if cfg.Bonds <= 0 {
		cfg.Bonds = 100
	}
	if cfg.CurveDays <= 0 {
		cfg.CurveDays = 30
	}
	if cfg.MaxTenor <= 0 {
		cfg.MaxTenor = 30
	}
	if cfg.BaseYield == 0 {
		cfg.BaseYield = 0.05
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Bonds generates the configured number of random bonds.
func (g *Generator) Bonds() []models.BondTerms {
	bonds := make([]models.BondTerms, 0, g.cfg.Bonds)
	for i := 0; i < g.cfg.Bonds; i++ {
		bonds = append(bonds, g.randomBond())
	}
	return bonds
}

// Curves generates one upward-sloping curve per day, ending at asOf and
// walking backwards one day at a time.
func (g *Generator) Curves(asOf time.Time) []models.TermStructure {
	curves := make([]models.TermStructure, 0, g.cfg.CurveDays)
	for d := g.cfg.CurveDays - 1; d >= 0; d-- {
		curveDate := asOf.AddDate(0, 0, -d)
		level := g.cfg.BaseYield + (g.rng.Float64()-0.5)*0.004

		points := make([]models.CurvePoint, 0, g.cfg.MaxTenor)
		for tenor := 1; tenor <= g.cfg.MaxTenor; tenor++ {
			yield := level + g.cfg.YieldSlope*math.Log1p(float64(tenor))
			points = append(points, models.CurvePoint{
				TenorYears: tenor,
				Yield:      math.Round(yield*1e6) / 1e6,
			})
		}
		curves = append(curves, models.TermStructure{
			CurveDate: curveDate,
			Points:    points,
		})
	}
	return curves
}

// Spreads returns the default rating-to-spread table.
func (g *Generator) Spreads() models.CreditSpreads {
	spreads := make(models.CreditSpreads, len(defaultSpreads))
	for rating, spread := range defaultSpreads {
		spreads[rating] = spread
	}
	return spreads
}

func (g *Generator) randomBond() models.BondTerms {
	issueDate := g.randomDate(2015, 2024)
	return models.BondTerms{
		ISIN:            g.randomISIN(),
		Issuer:          issuers[g.rng.Intn(len(issuers))],
		IssueDate:       issueDate,
		MaturityDate:    g.randomMaturity(issueDate, 5, 20),
		CouponRate:      math.Round(g.uniform(0.03, 0.08)*1e4) / 1e4,
		CouponFrequency: frequencies[g.rng.Intn(len(frequencies))],
		FaceValue:       faceValues[g.rng.Intn(len(faceValues))],
		CreditRating:    ratings[g.rng.Intn(len(ratings))],
	}
}

// ISIN: 2 letters + 10 digits (simplified)
func (g *Generator) randomISIN() string {
	digits := make([]byte, 10)
	for i := range digits {
		digits[i] = byte('0' + g.rng.Intn(10))
	}
	return fmt.Sprintf("IN%s", digits)
}

func (g *Generator) randomDate(startYear, endYear int) time.Time {
	start := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(endYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	days := int(end.Sub(start).Hours() / 24)
	return start.AddDate(0, 0, g.rng.Intn(days+1))
}

// Adds a random whole number of years to the issue date. Days past the
// 28th are stepped down so Feb 29 issues land on a valid date.
func (g *Generator) randomMaturity(issueDate time.Time, minYears, maxYears int) time.Time {
	years := minYears + g.rng.Intn(maxYears-minYears+1)
	day := issueDate.Day()
	if day > 28 && issueDate.Month() == time.February {
		day = 28
	}
	return time.Date(issueDate.Year()+years, issueDate.Month(), day, 0, 0, 0, 0, time.UTC)
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}
