// Package callback implements the inline selection token grammar shared by the
// calendar, time and task-action keyboards.
//
// Tokens must stay stable across releases because old messages with inline
// keyboards remain clickable:
//
//	date_<year>_<month>_<day>
//	time_<HH:MM> | time_manual
//	cal_<year>_<month>
//	ignore
//	done_<id> | start_<id> | delete_<id>
//	cancel
package callback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is returned for tokens that do not follow the grammar.
var ErrMalformed = errors.New("malformed callback token")

// Kind is the token prefix.
type Kind string

const (
	KindDate     Kind = "date"
	KindTime     Kind = "time"
	KindCalendar Kind = "cal"
	KindIgnore   Kind = "ignore"
	KindDone     Kind = "done"
	KindStart    Kind = "start"
	KindDelete   Kind = "delete"
	KindCancel   Kind = "cancel"
)

const manualTime = "manual"

// Data is a parsed token. Only the fields relevant to Kind are set.
type Data struct {
	Kind Kind

	Year  int
	Month int
	Day   int

	// Clock is the HH:MM part of a time token; empty when Manual is set.
	Clock  string
	Manual bool

	TaskID int64
}

// Parse decodes a token. Numeric parts are checked for syntax only; range
// checks belong to the receiver.
func Parse(token string) (Data, error) {
	head, rest, _ := strings.Cut(token, "_")

	switch Kind(head) {
	case KindIgnore, KindCancel:
		if rest != "" {
			return Data{}, fmt.Errorf("%w: %q", ErrMalformed, token)
		}
		return Data{Kind: Kind(head)}, nil

	case KindDate:
		nums, err := ints(rest, 3)
		if err != nil {
			return Data{}, fmt.Errorf("%w: %q: %v", ErrMalformed, token, err)
		}
		return Data{Kind: KindDate, Year: nums[0], Month: nums[1], Day: nums[2]}, nil

	case KindCalendar:
		nums, err := ints(rest, 2)
		if err != nil {
			return Data{}, fmt.Errorf("%w: %q: %v", ErrMalformed, token, err)
		}
		return Data{Kind: KindCalendar, Year: nums[0], Month: nums[1]}, nil

	case KindTime:
		if rest == manualTime {
			return Data{Kind: KindTime, Manual: true}, nil
		}
		if rest == "" {
			return Data{}, fmt.Errorf("%w: %q", ErrMalformed, token)
		}
		return Data{Kind: KindTime, Clock: rest}, nil

	case KindDone, KindStart, KindDelete:
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || id <= 0 {
			return Data{}, fmt.Errorf("%w: %q", ErrMalformed, token)
		}
		return Data{Kind: Kind(head), TaskID: id}, nil
	}

	return Data{}, fmt.Errorf("%w: unknown prefix in %q", ErrMalformed, token)
}

func ints(s string, n int) ([]int, error) {
	parts := strings.Split(s, "_")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d numeric parts, got %d", n, len(parts))
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Date formats a date selection token.
func Date(year, month, day int) string {
	return fmt.Sprintf("%s_%d_%d_%d", KindDate, year, month, day)
}

// Time formats a fixed time slot token.
func Time(clock string) string {
	return string(KindTime) + "_" + clock
}

// TimeManual is the manual time entry token.
func TimeManual() string {
	return string(KindTime) + "_" + manualTime
}

// Calendar formats a calendar navigation token. Month may be 0 or 13; the
// receiver normalizes it.
func Calendar(year, month int) string {
	return fmt.Sprintf("%s_%d_%d", KindCalendar, year, month)
}

// Ignore is the no-op token.
func Ignore() string { return string(KindIgnore) }

// Cancel is the wizard abort token.
func Cancel() string { return string(KindCancel) }

// Done formats the mark-completed token for a task.
func Done(id int64) string { return fmt.Sprintf("%s_%d", KindDone, id) }

// Start formats the mark-running token for a task.
func Start(id int64) string { return fmt.Sprintf("%s_%d", KindStart, id) }

// Delete formats the delete token for a task.
func Delete(id int64) string { return fmt.Sprintf("%s_%d", KindDelete, id) }

// Prefix returns the kind of a token without validating the rest. It is used
// by the router to pick a handler before full parsing.
func Prefix(token string) Kind {
	head, _, _ := strings.Cut(token, "_")
	return Kind(head)
}
