package progress

import (
	"time"

	"github.com/kaizenhq/kaizen/internal/models"
	"github.com/kaizenhq/kaizen/internal/scheduler"
	"github.com/kaizenhq/kaizen/internal/utils"
)

// AgendaItem is one row of a day's checklist.
type AgendaItem struct {
	Habit    models.Habit
	Done     bool
	Progress *WeekProgress
}

// BuildAgenda lists the habits to show on date. Weekly-target habits whose
// quota is already met drop off the list, unless they were completed on
// date itself so the mark can still be undone.
func BuildAgenda(s *scheduler.Scheduler, habits []models.Habit, completions []models.Completion, date time.Time) ([]AgendaItem, error) {
	day := utils.FormatDate(date)

	var items []AgendaItem
	for _, h := range s.DueHabits(habits, date) {
		item := AgendaItem{Habit: h, Done: completedDays(completions, h.ID)[day]}

		wp, weekly, err := WeeklyProgress(h, completions, date)
		if err != nil {
			return nil, err
		}
		if weekly {
			if wp.Met() && !item.Done {
				continue
			}
			item.Progress = &wp
		}

		items = append(items, item)
	}
	return items, nil
}
