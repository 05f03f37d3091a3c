// Package menu holds the reply keyboards and button labels of the bot.
package menu

import (
	"github.com/edgard/taskflowbot/internal/callback"
	"github.com/edgard/taskflowbot/internal/chat"
)

// Reply keyboard labels. They double as button-press triggers, so changing one
// changes what the router matches.
const (
	Add      = "➕ Add"
	Tasks    = "📋 Tasks"
	Stats    = "📊 Stats"
	Settings = "⚙️ Settings"
	Today    = "📅 Today"
	Overdue  = "⚠️ Overdue"
	All      = "📋 All tasks"
	Back     = "🔙 Back"
	Cancel   = "❌ Cancel"
)

// Inline task action labels.
const (
	DoneLabel   = "✅ Complete"
	StartLabel  = "▶️ Start"
	DeleteLabel = "🗑 Delete"
	CancelLabel = "❌ Cancel"
)

// Labels lists every reply-keyboard label; a text message equal to one of
// them is a button press.
var Labels = []string{Add, Tasks, Stats, Settings, Today, Overdue, All, Back, Cancel}

// IsLabel reports whether text is one of the reply-keyboard labels.
func IsLabel(text string) bool {
	for _, l := range Labels {
		if l == text {
			return true
		}
	}
	return false
}

func reply(oneTime bool, rows ...[]string) *chat.Keyboard {
	kb := &chat.Keyboard{OneTime: oneTime}
	for _, r := range rows {
		row := make([]chat.Button, 0, len(r))
		for _, label := range r {
			row = append(row, chat.Button{Text: label})
		}
		kb.Rows = append(kb.Rows, row)
	}
	return kb
}

// Main is the persistent main menu.
func Main() *chat.Keyboard {
	return reply(false,
		[]string{Add, Tasks},
		[]string{Stats, Settings},
	)
}

// TasksMenu offers the task listings.
func TasksMenu() *chat.Keyboard {
	return reply(true,
		[]string{Today, Overdue},
		[]string{All, Back},
	)
}

// CancelOnly is shown during text input steps of the wizard.
func CancelOnly() *chat.Keyboard {
	return reply(true, []string{Cancel})
}

// TaskActions is the inline keyboard attached to a task card.
func TaskActions(id int64) *chat.Keyboard {
	return &chat.Keyboard{
		Inline: true,
		Rows: [][]chat.Button{
			{
				{Text: DoneLabel, Token: callback.Done(id)},
				{Text: StartLabel, Token: callback.Start(id)},
			},
			{
				{Text: DeleteLabel, Token: callback.Delete(id)},
				{Text: CancelLabel, Token: callback.Cancel()},
			},
		},
	}
}
