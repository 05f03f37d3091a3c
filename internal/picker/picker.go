// Package picker renders the date and time selection keyboards used by the
// task wizard. Renderers are pure: the same inputs always produce the same
// keyboard, which lets the calendar be re-rendered in place on navigation.
package picker

import (
	"strconv"
	"time"

	"github.com/edgard/taskflowbot/internal/callback"
	"github.com/edgard/taskflowbot/internal/chat"
)

// Labels used on the calendar keyboard.
const (
	PrevLabel     = "◀️"
	NextLabel     = "▶️"
	PastDayLabel  = "·"
	FillerLabel   = " "
	TodayLabel    = "Today"
	TomorrowLabel = "Tomorrow"
	WeekLabel     = "In a week"
	ManualLabel   = "Manual"
)

// Weekdays are the calendar column headers, Monday first.
var Weekdays = [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// Slots are the fixed on-the-hour time choices, laid out as a 4x3 grid.
var Slots = [4][3]string{
	{"09:00", "10:00", "11:00"},
	{"12:00", "13:00", "14:00"},
	{"15:00", "16:00", "17:00"},
	{"18:00", "19:00", "20:00"},
}

// NormalizeMonth folds out-of-range months into the adjacent years, so month 0
// is December of the previous year and month 13 is January of the next.
func NormalizeMonth(year, month int) (int, int) {
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), int(t.Month())
}

// Calendar renders a month grid relative to now. A zero year or month selects
// the month containing now.
func Calendar(now time.Time, year, month int) *chat.Keyboard {
	if year == 0 || month == 0 {
		year, month = now.Year(), int(now.Month())
	}
	year, month = NormalizeMonth(year, month)

	kb := &chat.Keyboard{Inline: true}

	kb.Rows = append(kb.Rows, []chat.Button{
		{Text: PrevLabel, Token: callback.Calendar(year, month-1)},
		{Text: time.Month(month).String() + " " + strconv.Itoa(year), Token: callback.Ignore()},
		{Text: NextLabel, Token: callback.Calendar(year, month+1)},
	})

	header := make([]chat.Button, 0, len(Weekdays))
	for _, d := range Weekdays {
		header = append(header, chat.Button{Text: d, Token: callback.Ignore()})
	}
	kb.Rows = append(kb.Rows, header)

	today := dayNumber(now.Year(), int(now.Month()), now.Day())
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) + 6) % 7
	days := DaysIn(year, month)

	week := make([]chat.Button, 0, 7)
	for i := 0; i < offset; i++ {
		week = append(week, filler())
	}
	for day := 1; day <= days; day++ {
		week = append(week, dayButton(year, month, day, today))
		if len(week) == 7 {
			kb.Rows = append(kb.Rows, week)
			week = make([]chat.Button, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, filler())
		}
		kb.Rows = append(kb.Rows, week)
	}

	tomorrow := now.AddDate(0, 0, 1)
	nextWeek := now.AddDate(0, 0, 7)
	kb.Rows = append(kb.Rows, []chat.Button{
		{Text: TodayLabel, Token: callback.Date(now.Year(), int(now.Month()), now.Day())},
		{Text: TomorrowLabel, Token: callback.Date(tomorrow.Year(), int(tomorrow.Month()), tomorrow.Day())},
		{Text: WeekLabel, Token: callback.Date(nextWeek.Year(), int(nextWeek.Month()), nextWeek.Day())},
	})

	return kb
}

func dayButton(year, month, day, today int) chat.Button {
	label := strconv.Itoa(day)
	switch n := dayNumber(year, month, day); {
	case n < today:
		return chat.Button{Text: PastDayLabel, Token: callback.Ignore()}
	case n == today:
		return chat.Button{Text: "•" + label + "•", Token: callback.Date(year, month, day)}
	default:
		return chat.Button{Text: label, Token: callback.Date(year, month, day)}
	}
}

func filler() chat.Button {
	return chat.Button{Text: FillerLabel, Token: callback.Ignore()}
}

// dayNumber orders calendar dates without involving time zones.
func dayNumber(year, month, day int) int {
	return year*10000 + month*100 + day
}

// DaysIn returns the number of days in the given month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// TimeSlots renders the fixed time grid plus the manual entry trigger.
func TimeSlots() *chat.Keyboard {
	kb := &chat.Keyboard{Inline: true}
	for _, row := range Slots {
		buttons := make([]chat.Button, 0, len(row))
		for _, slot := range row {
			buttons = append(buttons, chat.Button{Text: slot, Token: callback.Time(slot)})
		}
		kb.Rows = append(kb.Rows, buttons)
	}
	kb.Rows = append(kb.Rows, []chat.Button{{Text: ManualLabel, Token: callback.TimeManual()}})
	return kb
}
