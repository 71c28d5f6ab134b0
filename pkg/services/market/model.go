package market

import (
	"context"
	"sort"
	"time"

	"github.com/de-tools/gbb-board/pkg/models/domain"
	"github.com/de-tools/gbb-board/pkg/services/report"
	"github.com/rs/zerolog"
)

// Point is one gas day of the supply/demand model.
type Point struct {
	GasDay    time.Time
	Demand    float64
	Available float64
	Shortfall float64
}

// Model derives a daily supply/demand balance for the WA market from the
// flows, nameplate, and medium term outlook reports. Demand comes from
// positive flow records summed per gas day; supply comes from the outlook,
// falling back to nameplate ratings when no outlook rows exist.
type Model struct {
	controller report.Controller
}

func NewModel(controller report.Controller) *Model {
	return &Model{controller: controller}
}

// Build assembles the model across the demand date range. Supply gaps are
// carried forward from the previous observed day; days before the first
// observation carry the first one back.
func (m *Model) Build(ctx context.Context) ([]Point, error) {
	logger := zerolog.Ctx(ctx)

	flows, err := m.controller.GetTable(ctx, "flows", domain.TableQuery{}, false)
	if err != nil {
		return nil, err
	}

	demand := demandByDay(flows)
	if len(demand) == 0 {
		return nil, nil
	}

	supply := make(map[time.Time]float64)
	if mto, err := m.controller.GetTable(ctx, "mto", domain.TableQuery{}, false); err != nil {
		logger.Warn().Err(err).Msg("outlook unavailable, falling back to nameplate")
	} else {
		supply = supplyByDay(mto)
	}

	nameplateTotal := 0.0
	if nameplate, err := m.controller.GetTable(ctx, "nameplate", domain.TableQuery{}, false); err != nil {
		logger.Warn().Err(err).Msg("nameplate unavailable")
	} else {
		for _, row := range nameplate.Rows {
			if v, ok := row["nameplaterating"].(float64); ok {
				nameplateTotal += v
			}
		}
	}

	days := make([]time.Time, 0, len(demand))
	for day := range demand {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	points := make([]Point, 0, len(days))
	last, haveLast := firstSupply(supply)
	for _, day := range days {
		available := 0.0
		switch {
		case len(supply) > 0:
			if v, ok := supply[day]; ok {
				last = v
			}
			if haveLast {
				available = last
			}
		default:
			available = nameplateTotal
		}
		points = append(points, Point{
			GasDay:    day,
			Demand:    demand[day],
			Available: available,
			Shortfall: available - demand[day],
		})
	}
	return points, nil
}

func demandByDay(flows *domain.Table) map[time.Time]float64 {
	out := make(map[time.Time]float64)
	for _, row := range flows.Rows {
		ts, ok := row["gasday"].(time.Time)
		if !ok {
			continue
		}
		v, ok := row["demand"].(float64)
		if !ok || v <= 0 {
			continue
		}
		out[truncateDay(ts)] += v
	}
	return out
}

func supplyByDay(mto *domain.Table) map[time.Time]float64 {
	out := make(map[time.Time]float64)
	for _, row := range mto.Rows {
		ts, ok := row["gasday"].(time.Time)
		if !ok {
			continue
		}
		v, ok := row["capacity"].(float64)
		if !ok {
			continue
		}
		out[truncateDay(ts)] += v
	}
	return out
}

// firstSupply seeds the forward-fill with the earliest observed supply so
// demand days before the outlook window still get a value.
func firstSupply(supply map[time.Time]float64) (float64, bool) {
	if len(supply) == 0 {
		return 0, false
	}
	var (
		first    time.Time
		haveDate bool
	)
	for day := range supply {
		if !haveDate || day.Before(first) {
			first = day
			haveDate = true
		}
	}
	return supply[first], true
}

func truncateDay(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}
