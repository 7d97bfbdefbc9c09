// Package report turns raw card data into filtered, aggregated time
// totals. Everything in it is pure: a board snapshot goes in, tables of
// hours come out, and malformed data degrades to zero entries instead of
// failing the run.
package report

import (
	"go.uber.org/zap"

	"github.com/mkessler/ttr/internal/model"
	"github.com/mkessler/ttr/internal/payload"
	"github.com/mkessler/ttr/internal/timecalc"
)

// BuildProcessedCards normalizes every card's raw time payload into
// ProcessedCard form. Cards with malformed payloads are logged and kept
// with zero entries; individual entries without a parseable date are
// dropped silently.
func BuildProcessedCards(cards []model.Card, logger *zap.Logger) []model.ProcessedCard {
	if logger == nil {
		logger = zap.NewNop()
	}

	processed := make([]model.ProcessedCard, 0, len(cards))
	for _, card := range cards {
		p, err := payload.FromCard(card)
		if err != nil {
			logger.Warn("skipping malformed card time payload",
				zap.String("card_id", card.ID),
				zap.String("raw", payload.RawValue(card)),
				zap.Error(err))
		}

		url := card.URL
		if url == "" {
			url = card.ShortURL
		}

		processed = append(processed, model.ProcessedCard{
			CardID:         card.ID,
			CardName:       card.Name,
			CardURL:        url,
			ListID:         card.ListID,
			MemberIDs:      card.MemberIDs,
			Labels:         card.Labels,
			EstimatedHours: estimatedHours(p.EstimatedTime),
			Entries:        normalizeEntries(p.TimeEntries),
		})
	}
	return processed
}

// estimatedHours converts stored estimate minutes to decimal hours.
// Anything but a positive value means no estimate.
func estimatedHours(minutes int) float64 {
	if minutes <= 0 {
		return 0
	}
	return float64(minutes) / 60
}

// normalizeEntries converts raw entries to the normalized shape, dropping
// entries whose date is absent or unparseable.
func normalizeEntries(raw []model.TimeEntry) []model.Entry {
	entries := make([]model.Entry, 0, len(raw))
	for _, r := range raw {
		if r.Date == "" {
			continue
		}
		date, err := timecalc.ParseEntryDate(r.Date)
		if err != nil {
			continue
		}
		entries = append(entries, model.Entry{
			MemberID: r.MemberID,
			Date:     date,
			Hours:    timecalc.DecimalHours(r.Hours, r.Minutes),
			Comment:  r.Description,
		})
	}
	return entries
}
