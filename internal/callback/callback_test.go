package callback_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/taskflowbot/internal/callback"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
		want  callback.Data
	}{
		{"date", "date_2024_6_15", callback.Data{Kind: callback.KindDate, Year: 2024, Month: 6, Day: 15}},
		{"calendar previous wrap", "cal_2024_0", callback.Data{Kind: callback.KindCalendar, Year: 2024, Month: 0}},
		{"calendar next wrap", "cal_2024_13", callback.Data{Kind: callback.KindCalendar, Year: 2024, Month: 13}},
		{"time slot", "time_09:00", callback.Data{Kind: callback.KindTime, Clock: "09:00"}},
		{"manual time", "time_manual", callback.Data{Kind: callback.KindTime, Manual: true}},
		{"ignore", "ignore", callback.Data{Kind: callback.KindIgnore}},
		{"cancel", "cancel", callback.Data{Kind: callback.KindCancel}},
		{"done", "done_42", callback.Data{Kind: callback.KindDone, TaskID: 42}},
		{"start", "start_7", callback.Data{Kind: callback.KindStart, TaskID: 7}},
		{"delete", "delete_1", callback.Data{Kind: callback.KindDelete, TaskID: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := callback.Parse(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	for _, token := range []string{
		"",
		"bogus",
		"date_2024_6",
		"date_2024_x_1",
		"cal_2024",
		"time_",
		"done_",
		"done_abc",
		"delete_-3",
		"ignore_1",
		"cancel_now",
	} {
		t.Run(token, func(t *testing.T) {
			t.Parallel()
			_, err := callback.Parse(token)
			require.ErrorIs(t, err, callback.ErrMalformed)
		})
	}
}

func TestFormatters(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "date_2025_1_9", callback.Date(2025, 1, 9))
	assert.Equal(t, "time_14:00", callback.Time("14:00"))
	assert.Equal(t, "time_manual", callback.TimeManual())
	assert.Equal(t, "cal_2025_0", callback.Calendar(2025, 0))
	assert.Equal(t, "ignore", callback.Ignore())
	assert.Equal(t, "cancel", callback.Cancel())
	assert.Equal(t, "done_3", callback.Done(3))
	assert.Equal(t, "start_3", callback.Start(3))
	assert.Equal(t, "delete_3", callback.Delete(3))
}

func TestPrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, callback.KindDate, callback.Prefix("date_2024_1_1"))
	assert.Equal(t, callback.KindIgnore, callback.Prefix("ignore"))
	assert.Equal(t, callback.Kind("weird"), callback.Prefix("weird_stuff"))
}
