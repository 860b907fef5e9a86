package nflscrapr

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/tyler180/fantasy-market-share/internal/marketshare"
)

// ErrMissingColumns is returned when an input table lacks a consumed column.
var ErrMissingColumns = errors.New("required columns missing")

// checkHeader reads the first record of b and reports every required column
// that is absent from it.
func checkHeader(b []byte, required []string) error {
	r := csv.NewReader(bytes.NewReader(b))
	r.FieldsPerRecord = -1
	hdr, err := r.Read()
	if err == io.EOF {
		return fmt.Errorf("%w (empty table, need %s)", ErrMissingColumns, strings.Join(required, ", "))
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	have := make(map[string]struct{}, len(hdr))
	for _, h := range hdr {
		have[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = struct{}{}
	}
	var missing []string
	for _, c := range required {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// decode validates the header then unmarshals every row of b into out.
func decode(b []byte, required []string, out any) error {
	if err := checkHeader(b, required); err != nil {
		return err
	}
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(b, []byte("\ufeff"))))
	r.FieldsPerRecord = -1
	if err := gocsv.UnmarshalCSV(r, out); err != nil {
		return fmt.Errorf("decode rows: %w", err)
	}
	return nil
}

// DecodePlays parses a play-by-play CSV.
func DecodePlays(b []byte) ([]marketshare.Play, error) {
	var recs []*playRecord
	if err := decode(b, playColumns, &recs); err != nil {
		return nil, fmt.Errorf("plays: %w", err)
	}
	out := make([]marketshare.Play, 0, len(recs))
	for i, r := range recs {
		p, err := r.play()
		if err != nil {
			return nil, fmt.Errorf("plays row %d complete_pass=%q: %w", i+2, r.CompletePass, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// DecodeRoster parses a roster CSV. Columns beyond gsis_id, team and position
// are ignored.
func DecodeRoster(b []byte) ([]marketshare.RosterEntry, error) {
	var recs []*rosterRecord
	if err := decode(b, rosterColumns, &recs); err != nil {
		return nil, fmt.Errorf("roster: %w", err)
	}
	out := make([]marketshare.RosterEntry, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.entry())
	}
	return out, nil
}

// DecodeGames parses a games CSV.
func DecodeGames(b []byte) ([]marketshare.Game, error) {
	var recs []*gameRecord
	if err := decode(b, gameColumns, &recs); err != nil {
		return nil, fmt.Errorf("games: %w", err)
	}
	out := make([]marketshare.Game, 0, len(recs))
	for i, r := range recs {
		g, err := r.game()
		if err != nil {
			return nil, fmt.Errorf("games row %d: %w", i+2, err)
		}
		out = append(out, g)
	}
	return out, nil
}
