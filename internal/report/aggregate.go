package report

import (
	"sort"
	"strings"

	"github.com/mkessler/ttr/internal/model"
)

// Total is one aggregate row: a grouping key (list, card, or member id),
// its resolved display name, and the summed hours. Estimated is only
// populated for per-card rows.
type Total struct {
	Key       string
	Name      string
	Hours     float64
	Estimated float64
}

// Totals holds the three groupings a report is built from.
type Totals struct {
	PerList   []Total
	PerCard   []Total
	PerMember []Total
}

// GrandTotal sums all card hours.
func (t Totals) GrandTotal() float64 {
	var sum float64
	for _, row := range t.PerCard {
		sum += row.Hours
	}
	return sum
}

// Aggregate sums the filtered entry set by list, by card, and by member.
// Entries without a member id land in a synthetic "unassigned" bucket.
// List rows sort by name (case-insensitive, ascending); card and member
// rows sort by descending hours, ties broken by name.
func Aggregate(cards []model.ProcessedCard, snap model.BoardSnapshot) Totals {
	listHours := map[string]float64{}
	memberHours := map[string]float64{}
	var perCard []Total

	for _, card := range cards {
		total := card.TotalHours()
		listHours[card.ListID] += total
		perCard = append(perCard, Total{
			Key:       card.CardID,
			Name:      card.CardName,
			Hours:     total,
			Estimated: card.EstimatedHours,
		})
		for _, e := range card.Entries {
			memberHours[e.MemberID] += e.Hours
		}
	}

	perList := make([]Total, 0, len(listHours))
	for id, hours := range listHours {
		perList = append(perList, Total{Key: id, Name: snap.ListName(id), Hours: hours})
	}
	perMember := make([]Total, 0, len(memberHours))
	for id, hours := range memberHours {
		perMember = append(perMember, Total{Key: id, Name: snap.MemberName(id), Hours: hours})
	}

	sortByName(perList)
	sortByHours(perCard)
	sortByHours(perMember)

	return Totals{PerList: perList, PerCard: perCard, PerMember: perMember}
}

func sortByName(rows []Total) {
	sort.Slice(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})
}

func sortByHours(rows []Total) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Hours != rows[j].Hours {
			return rows[i].Hours > rows[j].Hours
		}
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})
}
