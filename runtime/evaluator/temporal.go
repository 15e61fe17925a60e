package evaluator

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dmnfeel/engine/core/types"
)

// Temporal construction built-ins (`date`, `time`, `date and time`,
// `duration`, `years and months duration`) parse the ISO 8601 subset FEEL
// uses for literal strings. No third-party date library in the example
// corpus has a demonstrated call site, so these use stdlib time rather
// than guess at an unverified API (see DESIGN.md).
func init() {
	builtins["date"] = biDate
	builtins["time"] = biTime
	builtins["date and time"] = biDateAndTime
	builtins["duration"] = biDuration
	builtins["years and months duration"] = biYearsAndMonthsDuration
}

const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04:05"
	dateTimeLayout = "2006-01-02T15:04:05"
)

func biDate(ev *Evaluator, args []types.Value) types.Value {
	if len(args) == 1 {
		s := argAt(args, 0)
		switch s.Kind {
		case types.KindString:
			t, err := time.Parse(dateLayout, s.Str)
			if err != nil {
				return types.Null
			}
			return types.Value{Kind: types.KindDate, Time: t}
		case types.KindDateTime:
			y, m, d := s.Time.Date()
			return types.Value{Kind: types.KindDate, Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
		default:
			return types.Null
		}
	}
	if len(args) == 3 {
		y, yok := ev.toNumber(args[0])
		m, mok := ev.toNumber(args[1])
		d, dok := ev.toNumber(args[2])
		if !yok || !mok || !dok {
			return types.Null
		}
		t := time.Date(int(y.IntPart()), time.Month(m.IntPart()), int(d.IntPart()), 0, 0, 0, 0, time.UTC)
		return types.Value{Kind: types.KindDate, Time: t}
	}
	return types.Null
}

func biTime(ev *Evaluator, args []types.Value) types.Value {
	if len(args) == 1 {
		s := argAt(args, 0)
		switch s.Kind {
		case types.KindString:
			t, err := time.Parse(timeLayout, s.Str)
			if err != nil {
				return types.Null
			}
			return types.Value{Kind: types.KindTime, Time: t}
		case types.KindDateTime:
			h, m, s2 := s.Time.Clock()
			return types.Value{Kind: types.KindTime, Time: time.Date(0, 1, 1, h, m, s2, 0, time.UTC)}
		default:
			return types.Null
		}
	}
	if len(args) >= 3 {
		h, hok := ev.toNumber(args[0])
		m, mok := ev.toNumber(args[1])
		s, sok := ev.toNumber(args[2])
		if !hok || !mok || !sok {
			return types.Null
		}
		t := time.Date(0, 1, 1, int(h.IntPart()), int(m.IntPart()), int(s.IntPart()), 0, time.UTC)
		return types.Value{Kind: types.KindTime, Time: t}
	}
	return types.Null
}

func biDateAndTime(ev *Evaluator, args []types.Value) types.Value {
	if len(args) == 1 {
		s := argAt(args, 0)
		if s.Kind != types.KindString {
			return types.Null
		}
		t, err := time.Parse(dateTimeLayout, s.Str)
		if err != nil {
			return types.Null
		}
		return types.Value{Kind: types.KindDateTime, Time: t}
	}
	if len(args) == 2 {
		d, t := args[0], args[1]
		if d.Kind != types.KindDate || t.Kind != types.KindTime {
			return types.Null
		}
		h, m, s := t.Time.Clock()
		y, mo, day := d.Time.Date()
		return types.Value{Kind: types.KindDateTime, Time: time.Date(y, mo, day, h, m, s, 0, time.UTC)}
	}
	return types.Null
}

var dayTimeDurationRE = regexp.MustCompile(`^(-)?P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:([\d.]+)S)?)?$`)
var yearMonthDurationRE = regexp.MustCompile(`^(-)?P(?:(\d+)Y)?(?:(\d+)M)?$`)

func biDuration(ev *Evaluator, args []types.Value) types.Value {
	s := argAt(args, 0)
	if s.Kind != types.KindString {
		return types.Null
	}
	return parseDuration(s.Str)
}

func biYearsAndMonthsDuration(ev *Evaluator, args []types.Value) types.Value {
	from, to := argAt(args, 0), argAt(args, 1)
	if from.Kind != types.KindDate && from.Kind != types.KindDateTime {
		return types.Null
	}
	if to.Kind != types.KindDate && to.Kind != types.KindDateTime {
		return types.Null
	}
	fy, fm, _ := from.Time.Date()
	ty, tm, _ := to.Time.Date()
	months := (ty-fy)*12 + int(tm-fm)
	neg := months < 0
	if neg {
		months = -months
	}
	return types.Value{Kind: types.KindDuration, Dur: types.Duration{
		YearMonth: true,
		Years:     months / 12,
		Months:    months % 12,
		Negative:  neg,
	}}
}

// parseDuration handles both FEEL duration grammars: year-month
// (`P1Y2M`) and day-time (`P1DT2H3M4S`). A bare string is tried against
// whichever pattern matches.
func parseDuration(s string) types.Value {
	s = strings.TrimSpace(s)
	if m := yearMonthDurationRE.FindStringSubmatch(s); m != nil && (m[2] != "" || m[3] != "") {
		years, _ := strconv.Atoi(m[2])
		months, _ := strconv.Atoi(m[3])
		return types.Value{Kind: types.KindDuration, Dur: types.Duration{
			YearMonth: true,
			Years:     years,
			Months:    months,
			Negative:  m[1] == "-",
		}}
	}
	if m := dayTimeDurationRE.FindStringSubmatch(s); m != nil {
		days, _ := strconv.Atoi(m[2])
		hours, _ := strconv.Atoi(m[3])
		minutes, _ := strconv.Atoi(m[4])
		secs, _ := strconv.ParseFloat(orZero(m[5]), 64)
		total := time.Duration(days)*24*time.Hour +
			time.Duration(hours)*time.Hour +
			time.Duration(minutes)*time.Minute +
			time.Duration(secs*float64(time.Second))
		return types.Value{Kind: types.KindDuration, Dur: types.Duration{
			Time:     total,
			Negative: m[1] == "-",
		}}
	}
	return types.Null
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
