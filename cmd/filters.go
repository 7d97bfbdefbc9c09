package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkessler/ttr/internal/config"
	"github.com/mkessler/ttr/internal/model"
	"github.com/mkessler/ttr/internal/report"
	"github.com/mkessler/ttr/internal/timecalc"
)

// filterFlags are the filter options shared by report and export.
type filterFlags struct {
	from            string
	to              string
	member          string
	label           string
	week            bool
	excludeStartDay bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "Include entries from this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Include entries up to this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.member, "member", "", "Only entries logged by this member (id or username)")
	cmd.Flags().StringVar(&f.label, "label", "", "Only cards carrying this label (id or name)")
	cmd.Flags().BoolVar(&f.week, "week", false, "Restrict to the current ISO week")
	cmd.Flags().BoolVar(&f.excludeStartDay, "exclude-start-day", false, "Exclude entries dated exactly on the --from day")
}

// spec turns the flags into a FilterSpec, resolving member/label names
// against the snapshot. The config default for start-day semantics
// applies unless the flag was set explicitly.
func (f *filterFlags) spec(cmd *cobra.Command, cfg config.Config, snap model.BoardSnapshot) (report.FilterSpec, error) {
	var spec report.FilterSpec

	if f.week {
		// Day semantics are UTC throughout: entry dates normalize to UTC
		// wall-clock, so the bounds must come from a UTC instant too.
		from, to := timecalc.WeekRange(time.Now().UTC())
		spec.Start = &from
		spec.End = &to
	}
	if f.from != "" {
		t, err := timecalc.ParseDay(f.from)
		if err != nil {
			return spec, err
		}
		spec.Start = &t
	}
	if f.to != "" {
		t, err := timecalc.ParseDay(f.to)
		if err != nil {
			return spec, err
		}
		spec.End = &t
	}

	spec.MemberID = resolveMember(f.member, snap.Members)
	spec.LabelID = resolveLabel(f.label, snap.Labels)

	spec.ExcludeStartDay = cfg.Report.ExcludeStartDay
	if cmd.Flags().Changed("exclude-start-day") {
		spec.ExcludeStartDay = f.excludeStartDay
	}
	return spec, nil
}

// resolveMember maps a username or full name to a member id; unknown
// values pass through unchanged (they may be ids of former members).
func resolveMember(value string, members []model.Member) string {
	if value == "" {
		return ""
	}
	for _, m := range members {
		if m.ID == value || strings.EqualFold(m.Username, value) || strings.EqualFold(m.FullName, value) {
			return m.ID
		}
	}
	return value
}

// resolveLabel maps a label name to its id; unknown values pass through.
func resolveLabel(value string, labels []model.Label) string {
	if value == "" {
		return ""
	}
	for _, l := range labels {
		if l.ID == value || strings.EqualFold(l.Name, value) {
			return l.ID
		}
	}
	return value
}
