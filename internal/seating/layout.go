// Package seating holds the hall layout and recommendation algorithms. It
// has no I/O; services feed it seat snapshots and persist its results.
package seating

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	apperrors "grabyourtickets/internal/errors"
)

// MaxRows is the number of row letters available (A..Z).
const MaxRows = 26

// Scoring holds the knobs for seat quality flags and group scores.
type Scoring struct {
	BestRowWindow    int
	CenterTolerance  int
	BestRowPoints    int
	CenterSeatPoints int
}

func DefaultScoring() Scoring {
	return Scoring{
		BestRowWindow:    3,
		CenterTolerance:  1,
		BestRowPoints:    10,
		CenterSeatPoints: 5,
	}
}

// Position is a raw seat position as supplied by an admin. Row may be any
// identifier ("1", "b", "10").
type Position struct {
	Row    string
	Column int
}

// PlacedSeat is a position after row normalisation and quality tagging.
type PlacedSeat struct {
	Row          string
	Column       int
	SeatNumber   string
	IsBestRow    bool
	IsCenterSeat bool
}

// GridPositions synthesises a full rows x columns grid with numeric rows.
func GridPositions(rows, columns int) []Position {
	if rows <= 0 || columns <= 0 {
		return nil
	}
	positions := make([]Position, 0, rows*columns)
	for r := 1; r <= rows; r++ {
		for c := 1; c <= columns; c++ {
			positions = append(positions, Position{Row: strconv.Itoa(r), Column: c})
		}
	}
	return positions
}

// RowLetter maps a sorted row index to its letter.
func RowLetter(index int) string {
	return string(rune('A' + index))
}

// SeatLabel is the human readable seat number, e.g. "A7".
func SeatLabel(row string, column int) string {
	return fmt.Sprintf("%s%d", row, column)
}

// GenerateLayout normalises rows to letters and tags each seat with its
// best-row and center-seat flags. Duplicate positions are kept; the store's
// uniqueness constraint rejects them individually.
func GenerateLayout(positions []Position, scoring Scoring) ([]PlacedSeat, error) {
	if len(positions) == 0 {
		return nil, apperrors.Validation("seats", "at least one seat is required")
	}

	for _, p := range positions {
		if strings.TrimSpace(p.Row) == "" {
			return nil, apperrors.Validation("row", "row is required for every seat")
		}
		if p.Column <= 0 {
			return nil, apperrors.Validation("column", "column must be a positive integer")
		}
	}

	rows := distinctRows(positions)
	if len(rows) > MaxRows {
		return nil, apperrors.Validation("seats", fmt.Sprintf("at most %d rows are supported", MaxRows))
	}
	columns := distinctColumns(positions)

	rowIndex := make(map[string]int, len(rows))
	for i, r := range rows {
		rowIndex[r] = i
	}

	bestFrom, bestTo := bestRowRange(len(rows), scoring.BestRowWindow)
	centerColumn := columns[len(columns)/2]

	placed := make([]PlacedSeat, 0, len(positions))
	for _, p := range positions {
		idx := rowIndex[normalizeRow(p.Row)]
		letter := RowLetter(idx)
		placed = append(placed, PlacedSeat{
			Row:          letter,
			Column:       p.Column,
			SeatNumber:   SeatLabel(letter, p.Column),
			IsBestRow:    idx >= bestFrom && idx <= bestTo,
			IsCenterSeat: abs(p.Column-centerColumn) <= scoring.CenterTolerance,
		})
	}
	return placed, nil
}

// bestRowRange returns the inclusive index range of the rows centred on
// floor(rowCount/2). Indices outside [0, rowCount) simply never match.
func bestRowRange(rowCount, window int) (int, int) {
	if window <= 0 {
		return 1, 0
	}
	center := rowCount / 2
	from := center - window/2
	return from, from + window - 1
}

func normalizeRow(row string) string {
	return strings.TrimSpace(row)
}

// distinctRows sorts numerically when every row is an integer, otherwise
// lexicographically.
func distinctRows(positions []Position) []string {
	seen := make(map[string]struct{}, len(positions))
	rows := make([]string, 0)
	numeric := true
	for _, p := range positions {
		r := normalizeRow(p.Row)
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		rows = append(rows, r)
		if _, err := strconv.Atoi(r); err != nil {
			numeric = false
		}
	}

	if numeric {
		sort.Slice(rows, func(i, j int) bool {
			a, _ := strconv.Atoi(rows[i])
			b, _ := strconv.Atoi(rows[j])
			return a < b
		})
	} else {
		sort.Strings(rows)
	}
	return rows
}

func distinctColumns(positions []Position) []int {
	seen := make(map[int]struct{}, len(positions))
	columns := make([]int, 0)
	for _, p := range positions {
		if _, ok := seen[p.Column]; ok {
			continue
		}
		seen[p.Column] = struct{}{}
		columns = append(columns, p.Column)
	}
	sort.Ints(columns)
	return columns
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
