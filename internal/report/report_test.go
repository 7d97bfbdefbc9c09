package report_test

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkessler/ttr/internal/model"
	"github.com/mkessler/ttr/internal/report"
	"github.com/mkessler/ttr/internal/timecalc"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func rawCard(id, listID, value string) model.Card {
	card := model.Card{ID: id, Name: "Card " + id, ListID: listID}
	if value != "" {
		card.PluginData = []model.PluginData{{ID: "pd-" + id, Value: value}}
	}
	return card
}

func TestBuildProcessedCardsNormalizesHours(t *testing.T) {
	tests := []struct {
		hours   int
		minutes int
		want    float64
	}{
		{2, 30, 2.5},
		{0, 59, 59.0 / 60},
		{1, 0, 1},
		{0, 0, 0},
		{-2, 30, 0.5},
	}
	for _, tt := range tests {
		value := fmt.Sprintf(`{"timeEntries":[{"date":"2024-01-05","hours":%d,"minutes":%d}]}`, tt.hours, tt.minutes)
		cards := report.BuildProcessedCards([]model.Card{rawCard("c1", "l1", value)}, nil)

		require.Len(t, cards, 1)
		require.Len(t, cards[0].Entries, 1)
		assert.InDelta(t, tt.want, cards[0].Entries[0].Hours, 1e-9,
			"hours=%d minutes=%d", tt.hours, tt.minutes)
	}
}

func TestBuildProcessedCardsDropsUndatedEntries(t *testing.T) {
	value := `{"timeEntries":[
		{"date":"2024-01-05","hours":1,"minutes":0},
		{"hours":2,"minutes":0},
		{"date":"garbage","hours":3,"minutes":0}
	]}`
	cards := report.BuildProcessedCards([]model.Card{rawCard("c1", "l1", value)}, nil)

	require.Len(t, cards, 1)
	require.Len(t, cards[0].Entries, 1)
	assert.InDelta(t, 1.0, cards[0].Entries[0].Hours, 1e-9)

	// The dropped entries must also be absent from every aggregation.
	totals := report.Aggregate(cards, model.BoardSnapshot{})
	assert.InDelta(t, 1.0, totals.GrandTotal(), 1e-9)
}

func TestBuildProcessedCardsMalformedPayload(t *testing.T) {
	cards := report.BuildProcessedCards([]model.Card{rawCard("c1", "l1", "{broken")}, nil)

	require.Len(t, cards, 1)
	assert.Empty(t, cards[0].Entries)
	assert.Zero(t, cards[0].EstimatedHours)
}

func TestBuildProcessedCardsEstimate(t *testing.T) {
	tests := []struct {
		value string
		want  float64
	}{
		{`{"timeEntries":[],"estimatedTime":90}`, 1.5},
		{`{"timeEntries":[],"estimatedTime":0}`, 0},
		{`{"timeEntries":[],"estimatedTime":-30}`, 0},
		{`{"timeEntries":[]}`, 0},
	}
	for _, tt := range tests {
		cards := report.BuildProcessedCards([]model.Card{rawCard("c1", "l1", tt.value)}, nil)
		require.Len(t, cards, 1)
		assert.InDelta(t, tt.want, cards[0].EstimatedHours, 1e-9, "value=%s", tt.value)
	}
}

func TestBuildProcessedCardsCommentDefault(t *testing.T) {
	value := `{"timeEntries":[{"date":"2024-01-05","hours":1,"minutes":0}]}`
	cards := report.BuildProcessedCards([]model.Card{rawCard("c1", "l1", value)}, nil)

	require.Len(t, cards, 1)
	require.Len(t, cards[0].Entries, 1)
	assert.Equal(t, "", cards[0].Entries[0].Comment)
}

// Scenario: absent plugin data yields an empty card that no filtered
// result may contain.
func TestEmptyPayloadCardExcludedAfterFilter(t *testing.T) {
	cards := report.BuildProcessedCards([]model.Card{rawCard("c1", "l1", "")}, nil)

	require.Len(t, cards, 1)
	assert.Empty(t, cards[0].Entries)
	assert.Zero(t, cards[0].EstimatedHours)

	filtered := report.Filter(cards, report.FilterSpec{})
	assert.Empty(t, filtered)
}

// Scenario: two entries, only the one inside the date range survives.
func TestFilterDateRange(t *testing.T) {
	value := `{"timeEntries":[
		{"date":"2024-01-05","hours":2,"minutes":30},
		{"date":"2024-01-10","hours":1,"minutes":0}
	]}`
	cards := report.BuildProcessedCards([]model.Card{rawCard("c1", "l1", value)}, nil)

	filtered := report.Filter(cards, report.FilterSpec{
		Start: dayPtr("2024-01-01"),
		End:   dayPtr("2024-01-07"),
	})

	require.Len(t, filtered, 1)
	require.Len(t, filtered[0].Entries, 1)
	assert.InDelta(t, 2.5, filtered[0].Entries[0].Hours, 1e-9)
}

func TestFilterStartDayInclusive(t *testing.T) {
	entries := []model.Entry{
		{Date: day("2024-01-04"), Hours: 1},
		{Date: day("2024-01-05"), Hours: 2},
	}
	cards := []model.ProcessedCard{{CardID: "c1", ListID: "l1", Entries: entries}}

	filtered := report.Filter(cards, report.FilterSpec{Start: dayPtr("2024-01-05")})
	require.Len(t, filtered, 1)
	require.Len(t, filtered[0].Entries, 1)
	assert.InDelta(t, 2.0, filtered[0].Entries[0].Hours, 1e-9)
}

func TestFilterExcludeStartDay(t *testing.T) {
	entries := []model.Entry{
		{Date: day("2024-01-05"), Hours: 2},
		{Date: day("2024-01-06"), Hours: 3},
	}
	cards := []model.ProcessedCard{{CardID: "c1", ListID: "l1", Entries: entries}}

	filtered := report.Filter(cards, report.FilterSpec{
		Start:           dayPtr("2024-01-05"),
		ExcludeStartDay: true,
	})
	require.Len(t, filtered, 1)
	require.Len(t, filtered[0].Entries, 1)
	assert.InDelta(t, 3.0, filtered[0].Entries[0].Hours, 1e-9)
}

// A Monday entry must survive its own week's filter no matter which
// timezone the report is run from.
func TestFilterWeekBoundsWestOfUTC(t *testing.T) {
	lima := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, lima) // Wednesday of week 2
	from, to := timecalc.WeekRange(now.UTC())

	value := `{"timeEntries":[{"date":"2024-01-08","hours":1,"minutes":0}]}`
	cards := report.BuildProcessedCards([]model.Card{rawCard("c1", "l1", value)}, nil)

	filtered := report.Filter(cards, report.FilterSpec{Start: &from, End: &to})
	require.Len(t, filtered, 1)
	require.Len(t, filtered[0].Entries, 1)
}

// Timer entries carry the writer's local offset; one stopped Monday
// evening in UTC-5 stays inside a --to Monday bound.
func TestFilterOffsetEntryAgainstEndBound(t *testing.T) {
	value := `{"timeEntries":[{"date":"2024-01-08T20:00:00-05:00","hours":2,"minutes":0}]}`
	cards := report.BuildProcessedCards([]model.Card{rawCard("c1", "l1", value)}, nil)

	filtered := report.Filter(cards, report.FilterSpec{End: dayPtr("2024-01-08")})
	require.Len(t, filtered, 1)
	require.Len(t, filtered[0].Entries, 1)
	assert.InDelta(t, 2.0, filtered[0].Entries[0].Hours, 1e-9)
}

func TestFilterEndDayBoundary(t *testing.T) {
	endOfDay := time.Date(2024, 1, 7, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	cards := []model.ProcessedCard{
		{CardID: "c1", ListID: "l1", Entries: []model.Entry{{Date: day("2024-01-07"), Hours: 1}}},
		{CardID: "c2", ListID: "l1", Entries: []model.Entry{{Date: endOfDay, Hours: 1}}},
		{CardID: "c3", ListID: "l1", Entries: []model.Entry{{Date: endOfDay.Add(time.Millisecond), Hours: 1}}},
	}

	filtered := report.Filter(cards, report.FilterSpec{End: dayPtr("2024-01-07")})

	require.Len(t, filtered, 2)
	assert.Equal(t, "c1", filtered[0].CardID)
	assert.Equal(t, "c2", filtered[1].CardID)
}

// Scenario: member filter keeps only that member's entries and totals.
func TestFilterMember(t *testing.T) {
	entries := []model.Entry{
		{MemberID: "U1", Date: day("2024-01-05"), Hours: 1},
		{MemberID: "U2", Date: day("2024-01-05"), Hours: 2},
	}
	cards := []model.ProcessedCard{{CardID: "c1", ListID: "l1", Entries: entries}}

	filtered := report.Filter(cards, report.FilterSpec{MemberID: "U1"})
	require.Len(t, filtered, 1)
	require.Len(t, filtered[0].Entries, 1)

	totals := report.Aggregate(filtered, model.BoardSnapshot{})
	require.Len(t, totals.PerMember, 1)
	assert.Equal(t, "U1", totals.PerMember[0].Key)
	assert.InDelta(t, 1.0, totals.PerMember[0].Hours, 1e-9)
}

// Scenario: an unlabelled card is excluded by a label filter regardless
// of its entries.
func TestFilterLabelExcludesUnlabelledCard(t *testing.T) {
	cards := []model.ProcessedCard{
		{CardID: "c1", ListID: "l1", Entries: []model.Entry{{Date: day("2024-01-05"), Hours: 4}}},
		{
			CardID:  "c2",
			ListID:  "l1",
			Labels:  []model.Label{{ID: "L1", Name: "Bug", Color: "red"}},
			Entries: []model.Entry{{Date: day("2024-01-05"), Hours: 1}},
		},
	}

	filtered := report.Filter(cards, report.FilterSpec{LabelID: "L1"})
	require.Len(t, filtered, 1)
	assert.Equal(t, "c2", filtered[0].CardID)
}

func TestFilterIdempotent(t *testing.T) {
	value := `{"timeEntries":[
		{"date":"2024-01-05","hours":2,"minutes":30,"memberId":"U1"},
		{"date":"2024-01-10","hours":1,"minutes":0,"memberId":"U2"}
	]}`
	cards := report.BuildProcessedCards([]model.Card{
		rawCard("c1", "l1", value),
		rawCard("c2", "l2", value),
	}, nil)

	spec := report.FilterSpec{
		Start:    dayPtr("2024-01-01"),
		End:      dayPtr("2024-01-07"),
		MemberID: "U1",
	}
	once := report.Filter(cards, spec)
	twice := report.Filter(once, spec)
	assert.Equal(t, once, twice)
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	cards := []model.ProcessedCard{{
		CardID: "c1",
		ListID: "l1",
		Entries: []model.Entry{
			{Date: day("2024-01-05"), Hours: 1},
			{Date: day("2024-02-05"), Hours: 2},
		},
	}}

	_ = report.Filter(cards, report.FilterSpec{End: dayPtr("2024-01-31")})
	assert.Len(t, cards[0].Entries, 2)
}

func TestFilterEmptyResultIsNotAnError(t *testing.T) {
	cards := []model.ProcessedCard{{
		CardID:  "c1",
		ListID:  "l1",
		Entries: []model.Entry{{Date: day("2024-01-05"), Hours: 1}},
	}}

	filtered := report.Filter(cards, report.FilterSpec{Start: dayPtr("2030-01-01")})
	assert.Empty(t, filtered)
}

func TestAggregateGroupings(t *testing.T) {
	snap := model.BoardSnapshot{
		Lists: []model.List{
			{ID: "l1", Name: "Doing"},
			{ID: "l2", Name: "backlog"},
		},
		Members: []model.Member{
			{ID: "U1", Username: "alice", FullName: "Alice"},
			{ID: "U2", Username: "bob", FullName: "Bob"},
		},
	}
	cards := []model.ProcessedCard{
		{CardID: "c1", CardName: "Alpha", ListID: "l1", EstimatedHours: 3, Entries: []model.Entry{
			{MemberID: "U1", Date: day("2024-01-05"), Hours: 2.5},
			{MemberID: "", Date: day("2024-01-06"), Hours: 0.5},
		}},
		{CardID: "c2", CardName: "beta", ListID: "l2", Entries: []model.Entry{
			{MemberID: "U2", Date: day("2024-01-05"), Hours: 4},
		}},
	}

	totals := report.Aggregate(cards, snap)

	// Lists sort by name, case-insensitive ascending.
	require.Len(t, totals.PerList, 2)
	assert.Equal(t, "backlog", totals.PerList[0].Name)
	assert.InDelta(t, 4.0, totals.PerList[0].Hours, 1e-9)
	assert.Equal(t, "Doing", totals.PerList[1].Name)
	assert.InDelta(t, 3.0, totals.PerList[1].Hours, 1e-9)

	// Cards sort by descending hours.
	require.Len(t, totals.PerCard, 2)
	assert.Equal(t, "beta", totals.PerCard[0].Name)
	assert.Equal(t, "Alpha", totals.PerCard[1].Name)
	assert.InDelta(t, 3.0, totals.PerCard[1].Estimated, 1e-9)

	// Members include the synthetic unassigned bucket.
	require.Len(t, totals.PerMember, 3)
	assert.Equal(t, "Bob", totals.PerMember[0].Name)
	names := []string{totals.PerMember[0].Name, totals.PerMember[1].Name, totals.PerMember[2].Name}
	assert.Contains(t, names, "unassigned")

	assert.InDelta(t, 7.0, totals.GrandTotal(), 1e-9)
}

// Per-list totals must equal the sum of per-card totals of that list's
// cards, whatever the input.
func TestAggregateListCardConsistency(t *testing.T) {
	cards := []model.ProcessedCard{
		{CardID: "c1", CardName: "A", ListID: "l1", Entries: []model.Entry{
			{Date: day("2024-01-05"), Hours: 1.25},
			{Date: day("2024-01-06"), Hours: 2},
		}},
		{CardID: "c2", CardName: "B", ListID: "l1", Entries: []model.Entry{
			{Date: day("2024-01-05"), Hours: 0.5},
		}},
		{CardID: "c3", CardName: "C", ListID: "l2", Entries: []model.Entry{
			{Date: day("2024-01-05"), Hours: 3},
		}},
	}

	totals := report.Aggregate(cards, model.BoardSnapshot{})

	cardHoursByList := map[string]float64{}
	for _, card := range cards {
		var sum float64
		for _, e := range card.Entries {
			sum += e.Hours
		}
		cardHoursByList[card.ListID] += sum
	}
	for _, row := range totals.PerList {
		diff := math.Abs(row.Hours - cardHoursByList[row.Key])
		assert.Less(t, diff, 1e-9, "list %s", row.Key)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	totals := report.Aggregate(nil, model.BoardSnapshot{})
	assert.Empty(t, totals.PerList)
	assert.Empty(t, totals.PerCard)
	assert.Empty(t, totals.PerMember)
	assert.Zero(t, totals.GrandTotal())
}
