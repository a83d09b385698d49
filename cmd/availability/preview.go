package availability

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coachbook/coachbook_backend/pkg/slotengine"
)

// previewFile is the on-disk shape accepted by `availability preview`.
type previewFile struct {
	TimeZone            string `yaml:"time_zone"`
	SlotDurationMinutes int    `yaml:"slot_duration_minutes"`
	WindowDays          int    `yaml:"window_days"`
	Rules               []struct {
		Days      []any  `yaml:"days"`
		StartTime string `yaml:"start_time"`
		EndTime   string `yaml:"end_time"`
	} `yaml:"rules"`
	Busy []slotengine.BusyInterval `yaml:"busy"`
}

type preview struct {
	schedule   slotengine.Schedule
	busy       []slotengine.BusyInterval
	windowDays int
}

func NewPreviewCommand() *cobra.Command {
	var (
		nowFlag  string
		dateFlag string
	)

	cmd := &cobra.Command{
		Use:   "preview <schedule.yaml>",
		Short: "Print bookable dates, or one date's slots, for a schedule file",
		Example: `  coachbook availability preview coach.yaml
  coachbook availability preview coach.yaml --now 2025-01-01T10:00:00Z --date 2025-01-06`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			p, err := loadPreview(f)
			if err != nil {
				return err
			}

			now := time.Now()
			if nowFlag != "" {
				if now, err = time.Parse(time.RFC3339, nowFlag); err != nil {
					return fmt.Errorf("--now: %w", err)
				}
			}

			if dateFlag != "" {
				return p.renderSlots(cmd.OutOrStdout(), dateFlag)
			}
			return p.renderDates(cmd.OutOrStdout(), now)
		},
	}

	cmd.Flags().StringVar(&nowFlag, "now", "", "Evaluate as of this RFC 3339 instant instead of the current time")
	cmd.Flags().StringVar(&dateFlag, "date", "", "Show the slots of one date (YYYY-MM-DD) instead of the date list")

	return cmd
}

func loadPreview(r io.Reader) (*preview, error) {
	var pf previewFile
	if err := yaml.NewDecoder(r).Decode(&pf); err != nil {
		return nil, fmt.Errorf("decode schedule file: %w", err)
	}

	s := slotengine.Schedule{
		TimeZone:            pf.TimeZone,
		SlotDurationMinutes: pf.SlotDurationMinutes,
	}
	for i, r := range pf.Rules {
		rule := slotengine.Rule{StartTime: r.StartTime, EndTime: r.EndTime}
		for _, d := range r.Days {
			dv, err := slotengine.DayFromAny(d)
			if err != nil {
				return nil, fmt.Errorf("rule %d: %w", i, err)
			}
			rule.Days = append(rule.Days, dv)
		}
		s.Rules = append(s.Rules, rule)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s, err := s.Resolve()
	if err != nil {
		return nil, err
	}

	window := pf.WindowDays
	if window <= 0 {
		window = slotengine.DefaultWindowDays
	}
	return &preview{schedule: s, busy: pf.Busy, windowDays: window}, nil
}

func (p *preview) renderDates(w io.Writer, now time.Time) error {
	policy := slotengine.NewBookingWindowPolicy(now, p.schedule.Location, p.windowDays)
	dates, err := slotengine.ComputeAvailableDates(p.schedule, p.busy, policy)
	if err != nil {
		return err
	}
	if len(dates) == 0 {
		_, err := fmt.Fprintf(w, "no available slots in the next %d days\n", p.windowDays)
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Date", "Weekday", "Free slots"})
	for _, d := range dates {
		slots, err := slotengine.ComputeSlotsForDate(p.schedule, d, p.busy)
		if err != nil {
			return err
		}
		table.Append([]string{d.Format("2006-01-02"), d.Weekday().String(), fmt.Sprint(len(slots))})
	}
	table.Render()
	return nil
}

func (p *preview) renderSlots(w io.Writer, date string) error {
	day, err := time.ParseInLocation("2006-01-02", date, p.schedule.Location)
	if err != nil {
		return fmt.Errorf("--date: %w", err)
	}
	slots, err := slotengine.ComputeSlotsForDate(p.schedule, day, p.busy)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Period", "Slot"})
	for _, g := range slotengine.GroupSlotsByPeriod(slots) {
		for _, s := range g.Slots {
			table.Append([]string{g.Title, slotengine.FormatSlot(s, p.schedule.Location)})
		}
	}
	table.Render()
	return nil
}
