package optimizer

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/ppc-optimizer/internal/config"
)

// Dayparting calcula o multiplicador de lance para a hora local do marketplace.
type Dayparting struct {
	enabled           bool
	peak              []config.HourRange
	peakMultiplier    decimal.Decimal
	offPeakMultiplier decimal.Decimal
}

func NewDayparting(rules config.Rules) (*Dayparting, error) {
	peak, err := config.ParseHourRanges(rules.PeakHours)
	if err != nil {
		return nil, err
	}

	return &Dayparting{
		enabled:           rules.DaypartingEnabled,
		peak:              peak,
		peakMultiplier:    decimal.NewFromFloat(rules.PeakMultiplier),
		offPeakMultiplier: decimal.NewFromFloat(rules.OffPeakMultiplier),
	}, nil
}

// IsPeak informa se a hora de now, no fuso loc, cai em algum intervalo de pico.
func (d *Dayparting) IsPeak(now time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	hour := now.In(loc).Hour()

	for _, r := range d.peak {
		if r.Contains(hour) {
			return true
		}
	}
	return false
}

// Multiplier retorna 1 quando o dayparting está desligado.
func (d *Dayparting) Multiplier(now time.Time, loc *time.Location) decimal.Decimal {
	if !d.enabled {
		return decimal.NewFromInt(1)
	}
	if d.IsPeak(now, loc) {
		return d.peakMultiplier
	}
	return d.offPeakMultiplier
}

func (d *Dayparting) Enabled() bool {
	return d.enabled
}
