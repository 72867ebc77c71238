package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/worktime"
)

// CalcCmd runs the time calculator on a hand-entered shift.
type CalcCmd struct {
	Date     string   `help:"Shift date (YYYY-MM-DD)." default:"${today}"`
	ClockIn  string   `help:"Clock-in time (HH:MM)." required:""`
	ClockOut string   `help:"Clock-out time (HH:MM). Earlier than clock-in means the next day." required:""`
	Break    []string `help:"Break as HH:MM-HH:MM. Repeatable." sep:"none"`
	Policy   string   `help:"Policy YAML file." env:"POLICY_FILE" type:"existingfile"`
	Company  string   `help:"Company ID whose policy override applies."`
}

type calcOutput struct {
	ClockIn      string `json:"clock_in"`
	ClockOut     string `json:"clock_out"`
	BreakMinutes int    `json:"break_minutes"`
	worktime.Result
}

func (c *CalcCmd) Run(ctx *Context) error {
	policies, err := config.LoadPolicySet(c.Policy)
	if err != nil {
		return err
	}
	policy := policies.For(c.Company)

	shift, err := c.shift(policy.Location())
	if err != nil {
		return err
	}

	result, err := worktime.NewCalculator(policy.WorkTime()).Calculate(shift)
	if err != nil {
		return err
	}

	breakMinutes := 0
	for _, b := range shift.Breaks {
		breakMinutes += b.Minutes()
	}

	enc := json.NewEncoder(ctx.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(calcOutput{
		ClockIn:      shift.ClockIn.Format(time.RFC3339),
		ClockOut:     worktime.ResolveClockOut(shift.ClockIn, shift.ClockOut).Format(time.RFC3339),
		BreakMinutes: breakMinutes,
		Result:       result,
	})
}

func (c *CalcCmd) shift(loc *time.Location) (worktime.Shift, error) {
	date, err := time.ParseInLocation("2006-01-02", c.Date, loc)
	if err != nil {
		return worktime.Shift{}, fmt.Errorf("invalid --date: %w", err)
	}

	clockIn, err := onDate(date, c.ClockIn)
	if err != nil {
		return worktime.Shift{}, fmt.Errorf("invalid --clock-in: %w", err)
	}
	clockOut, err := onDate(date, c.ClockOut)
	if err != nil {
		return worktime.Shift{}, fmt.Errorf("invalid --clock-out: %w", err)
	}

	shift := worktime.Shift{ClockIn: clockIn, ClockOut: clockOut}
	for _, raw := range c.Break {
		startStr, endStr, ok := strings.Cut(raw, "-")
		if !ok {
			return worktime.Shift{}, fmt.Errorf("invalid --break %q: want HH:MM-HH:MM", raw)
		}
		start, err := onDate(date, startStr)
		if err != nil {
			return worktime.Shift{}, fmt.Errorf("invalid --break %q: %w", raw, err)
		}
		end, err := onDate(date, endStr)
		if err != nil {
			return worktime.Shift{}, fmt.Errorf("invalid --break %q: %w", raw, err)
		}
		// Break times before clock-in belong to the next day of an overnight shift
		start = worktime.ResolveClockOut(clockIn, start)
		end = worktime.ResolveClockOut(clockIn, end)
		shift.Breaks = append(shift.Breaks, worktime.Interval{Start: start, End: end})
	}
	return shift, nil
}

func onDate(date time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}
