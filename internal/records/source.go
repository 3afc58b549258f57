// Package records reads batch job input files. Mutation jobs take their
// work lists from CSV so operators can hand-edit them or export them from a
// spreadsheet; the package keeps that boundary away from the engine, which
// only ever sees typed pairs and specs.
package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/eventops/fienta-codectl/internal/fienta"
)

// ReadRenamePairs parses a two-column CSV of old,new code pairs. A header
// row whose first cell is literally "old" is skipped. Blank lines are
// ignored; a row with fewer than two cells is an error, since silently
// dropping half a rename is worse than failing the run.
func ReadRenamePairs(path string) ([]fienta.RenamePair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rename input: %w", err)
	}
	defer f.Close()

	pairs, err := ParseRenamePairs(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return pairs, nil
}

// ParseRenamePairs reads old,new pairs from r.
func ParseRenamePairs(r io.Reader) ([]fienta.RenamePair, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var pairs []fienta.RenamePair
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if isBlank(rec) {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "old") {
			continue
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("line %d: expected old,new but got %d column(s)", line, len(rec))
		}
		pairs = append(pairs, fienta.RenamePair{
			Old: strings.TrimSpace(rec[0]),
			New: strings.TrimSpace(rec[1]),
		})
	}
	return pairs, nil
}

// ReadCreateSpecs parses a CSV of codes to create. The first row must be a
// header; recognized columns are code, amount, unit, order_limit,
// ticket_limit and description, in any order. Only code is required; the
// remaining columns fall back to the given defaults.
func ReadCreateSpecs(path string, defaults fienta.CreateSpec) ([]fienta.CreateSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open create input: %w", err)
	}
	defer f.Close()

	specs, err := ParseCreateSpecs(f, defaults)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return specs, nil
}

// ParseCreateSpecs reads create specs from r, applying defaults for absent
// columns.
func ParseCreateSpecs(r io.Reader, defaults fienta.CreateSpec) ([]fienta.CreateSpec, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["code"]; !ok {
		return nil, fmt.Errorf("header row has no code column")
	}

	cell := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var specs []fienta.CreateSpec
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if isBlank(rec) {
			continue
		}

		spec := defaults
		spec.Code = cell(rec, "code")
		if spec.Code == "" {
			return nil, fmt.Errorf("line %d: empty code", line)
		}
		if v := cell(rec, "amount"); v != "" {
			amount, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad amount %q", line, v)
			}
			spec.Amount = amount
		}
		if v := cell(rec, "unit"); v != "" {
			unit, err := parseUnit(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			spec.Unit = unit
		}
		if v := cell(rec, "order_limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad order_limit %q", line, v)
			}
			spec.OrderLimit = n
		}
		if v := cell(rec, "ticket_limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad ticket_limit %q", line, v)
			}
			spec.TicketLimit = n
		}
		if v := cell(rec, "description"); v != "" {
			spec.Description = v
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func parseUnit(v string) (fienta.DiscountUnit, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "%", "percent", "percentage":
		return fienta.UnitPercent, nil
	case "eur", "€", "absolute", "fixed":
		return fienta.UnitAbsolute, nil
	default:
		return "", fmt.Errorf("unknown unit %q", v)
	}
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
