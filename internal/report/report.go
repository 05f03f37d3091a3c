// Package report renders task listings, statistics and task cards as chat text.
package report

import (
	"fmt"
	"strings"

	"github.com/edgard/taskflowbot/internal/database"
)

// MaxListed caps the all-tasks listing.
const MaxListed = 20

// Fixed replies for empty listings.
const (
	EmptyToday   = "No tasks for today! ✅"
	EmptyOverdue = "No overdue tasks! ✅"
	EmptyAll     = "No active tasks! ✅"
)

const (
	clockLayout    = "15:04"
	deadlineLayout = "02.01.2006 15:04"
)

// StatusGlyph returns the emoji shown next to a task with the given status.
func StatusGlyph(s database.Status) string {
	switch s {
	case database.StatusPending:
		return "⏳"
	case database.StatusRunning:
		return "▶️"
	case database.StatusCompleted:
		return "✅"
	default:
		return "❓"
	}
}

// StatusName is the human readable status label.
func StatusName(s database.Status) string {
	switch s {
	case database.StatusPending:
		return "pending"
	case database.StatusRunning:
		return "in progress"
	case database.StatusCompleted:
		return "completed"
	default:
		return string(s)
	}
}

func entry(b *strings.Builder, glyph string, t database.Task, when string) {
	fmt.Fprintf(b, "%s [%d] %s\n", glyph, t.ID, t.Title)
	fmt.Fprintf(b, "   ⏰ %s\n\n", when)
}

// Today lists tasks due today with their time of day.
func Today(tasks []database.Task) string {
	if len(tasks) == 0 {
		return EmptyToday
	}
	var b strings.Builder
	b.WriteString("📅 Tasks for today:\n\n")
	for _, t := range tasks {
		entry(&b, StatusGlyph(t.Status), t, t.Deadline.Format(clockLayout))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Overdue lists pending tasks whose deadline has passed.
func Overdue(tasks []database.Task) string {
	if len(tasks) == 0 {
		return EmptyOverdue
	}
	var b strings.Builder
	b.WriteString("⚠️ Overdue tasks:\n\n")
	for _, t := range tasks {
		entry(&b, "❌", t, "Was: "+t.Deadline.Format(deadlineLayout))
	}
	return strings.TrimRight(b.String(), "\n")
}

// All lists active tasks, at most MaxListed of them.
func All(tasks []database.Task) string {
	if len(tasks) == 0 {
		return EmptyAll
	}
	var b strings.Builder
	b.WriteString("📋 All active tasks:\n\n")
	for i, t := range tasks {
		if i == MaxListed {
			break
		}
		entry(&b, StatusGlyph(t.Status), t, t.Deadline.Format(deadlineLayout))
	}
	if extra := len(tasks) - MaxListed; extra > 0 {
		fmt.Fprintf(&b, "... and %d more", extra)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Stats renders the five counters.
func Stats(s database.Stats) string {
	return fmt.Sprintf("📊 Statistics:\n\n"+
		"📋 Total tasks: %d\n"+
		"⏳ Pending: %d\n"+
		"▶️ In progress: %d\n"+
		"✅ Completed: %d\n"+
		"⚠️ Overdue: %d",
		s.Total, s.Pending, s.Running, s.Completed, s.Overdue)
}

// Card renders a single task with all its fields.
func Card(t database.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%d] %s\n", StatusGlyph(t.Status), t.ID, t.Title)
	if t.Description != "" {
		fmt.Fprintf(&b, "📝 %s\n", t.Description)
	}
	fmt.Fprintf(&b, "⏰ %s\n", t.Deadline.Format(deadlineLayout))
	fmt.Fprintf(&b, "Status: %s\n", StatusName(t.Status))
	fmt.Fprintf(&b, "Created: %s", t.CreatedAt.Format(deadlineLayout))
	return b.String()
}
