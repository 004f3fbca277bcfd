package seating

import (
	"errors"
	"sort"
	"strings"

	"grabyourtickets/internal/models"
)

const (
	MinGroupSize     = 1
	MaxGroupSize     = 20
	DefaultGroupSize = 2
	BestModeLimit    = 5
)

type Mode string

const (
	ModeRow  Mode = "row"
	ModeBest Mode = "best"
)

var (
	ErrNoAvailableSeats            = errors.New("no available seats")
	ErrNoConsecutiveSeatsAvailable = errors.New("no consecutive seats available")
	ErrNoConsecutiveSeatsFound     = errors.New("no consecutive seats found")
)

// ClampGroupSize maps a requested group size into [MinGroupSize, MaxGroupSize].
// Zero means "not given" and yields DefaultGroupSize.
func ClampGroupSize(n int) int {
	switch {
	case n == 0:
		return DefaultGroupSize
	case n < MinGroupSize:
		return MinGroupSize
	case n > MaxGroupSize:
		return MaxGroupSize
	}
	return n
}

func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeBest)) {
		return ModeBest
	}
	return ModeRow
}

// Group is a run of consecutive available seats in one row.
type Group struct {
	Row   string
	Score int
	Seats []models.Seat
}

// Score sums the quality points of the given seats.
func (sc Scoring) Score(seats []models.Seat) int {
	total := 0
	for _, s := range seats {
		if s.IsBestRow {
			total += sc.BestRowPoints
		}
		if s.IsCenterSeat {
			total += sc.CenterSeatPoints
		}
	}
	return total
}

// Recommend proposes groups of size seats from a hall snapshot. Booked
// seats are ignored and break contiguity.
func Recommend(seats []models.Seat, size int, mode Mode, scoring Scoring) ([]Group, error) {
	size = ClampGroupSize(size)

	rows := availableByRow(seats)
	if len(rows) == 0 {
		return nil, ErrNoAvailableSeats
	}

	rowNames := make([]string, 0, len(rows))
	for r := range rows {
		rowNames = append(rowNames, r)
	}
	sort.Strings(rowNames)

	if mode == ModeBest {
		var all []Group
		for _, r := range rowNames {
			all = append(all, RowGroups(rows[r], size, scoring)...)
		}
		if len(all) == 0 {
			return nil, ErrNoConsecutiveSeatsFound
		}
		sort.SliceStable(all, func(i, j int) bool {
			return all[i].Score > all[j].Score
		})
		if len(all) > BestModeLimit {
			all = all[:BestModeLimit]
		}
		return all, nil
	}

	var best []Group
	for _, r := range rowNames {
		groups := RowGroups(rows[r], size, scoring)
		if len(groups) == 0 {
			continue
		}
		top := groups[0]
		for _, g := range groups[1:] {
			if g.Score > top.Score {
				top = g
			}
		}
		best = append(best, top)
	}
	if len(best) == 0 {
		return nil, ErrNoConsecutiveSeatsAvailable
	}
	return best, nil
}

// RowGroups slides a window of size over one row's seats, which must be
// sorted by column, and returns every window whose columns are consecutive.
func RowGroups(rowSeats []models.Seat, size int, scoring Scoring) []Group {
	var groups []Group
	for i := 0; i+size <= len(rowSeats); i++ {
		if !consecutive(rowSeats[i : i+size]) {
			continue
		}
		window := make([]models.Seat, size)
		copy(window, rowSeats[i:i+size])
		groups = append(groups, Group{
			Row:   window[0].Row,
			Score: scoring.Score(window),
			Seats: window,
		})
	}
	return groups
}

func consecutive(window []models.Seat) bool {
	for j := 1; j < len(window); j++ {
		if window[j].Column != window[0].Column+j {
			return false
		}
	}
	return true
}

func availableByRow(seats []models.Seat) map[string][]models.Seat {
	rows := make(map[string][]models.Seat)
	for _, s := range seats {
		if !s.Available() {
			continue
		}
		rows[s.Row] = append(rows[s.Row], s)
	}
	for r := range rows {
		sort.SliceStable(rows[r], func(i, j int) bool {
			return rows[r][i].Column < rows[r][j].Column
		})
	}
	return rows
}

// ToRecommended converts groups into the reduced response shape.
func ToRecommended(groups []Group) []models.RecommendedGroup {
	out := make([]models.RecommendedGroup, 0, len(groups))
	for _, g := range groups {
		rg := models.RecommendedGroup{
			Row:   g.Row,
			Score: g.Score,
			Seats: make([]models.RecommendedSeat, 0, len(g.Seats)),
		}
		for _, s := range g.Seats {
			rg.Seats = append(rg.Seats, models.RecommendedSeat{
				SeatID: s.ID,
				Label:  s.SeatNumber,
				Row:    s.Row,
				Column: s.Column,
			})
		}
		out = append(out, rg)
	}
	return out
}
