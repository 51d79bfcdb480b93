package projection

import (
	"sort"
	"time"

	"github.com/Amna-05/quadro/pkg/models"
)

const (
	bucketOverdue = "overdue"
	bucketNoDate  = "no_date"
)

// groupByDueBucket partitions tasks into timeline buckets: one Overdue
// bucket, one calendar-day bucket per future or current due day, and a
// trailing bucket for undated tasks. Buckets without tasks are omitted.
func groupByDueBucket(tasks []models.Task, now time.Time) []Group {
	var overdue, undated []models.Task
	byDay := make(map[string][]models.Task)
	dayTime := make(map[string]time.Time)

	for _, task := range tasks {
		switch {
		case task.DueDate == nil:
			undated = append(undated, task)
		case task.OverdueAt(now):
			overdue = append(overdue, task)
		default:
			due := task.DueDate.In(now.Location())
			key := due.Format("2006-01-02")
			byDay[key] = append(byDay[key], task)
			if _, ok := dayTime[key]; !ok {
				dayTime[key] = due
			}
		}
	}

	dayKeys := make([]string, 0, len(byDay))
	for key := range byDay {
		dayKeys = append(dayKeys, key)
	}
	sort.Strings(dayKeys)

	groups := make([]Group, 0, len(dayKeys)+2)
	if len(overdue) > 0 {
		groups = append(groups, Group{Key: bucketOverdue, Label: "Overdue", Tasks: overdue})
	}
	for _, key := range dayKeys {
		groups = append(groups, Group{
			Key:   key,
			Label: DueBucketLabel(dayTime[key], now),
			Tasks: byDay[key],
		})
	}
	if len(undated) > 0 {
		groups = append(groups, Group{Key: bucketNoDate, Label: "No due date", Tasks: undated})
	}
	return groups
}

// DueBucketLabel names a due day relative to now: literal Today and
// Tomorrow, weekday names for days two through six ahead, and a month/day
// form beyond that. Days already past label as Overdue.
func DueBucketLabel(due, now time.Time) string {
	days := calendarDaysBetween(now, due.In(now.Location()))
	switch {
	case days < 0:
		return "Overdue"
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days <= 6:
		return due.In(now.Location()).Weekday().String()
	default:
		return due.In(now.Location()).Format("Jan 2")
	}
}

// calendarDaysBetween counts whole calendar days from now's day to t's day
// in now's location. Negative when t is on an earlier day.
func calendarDaysBetween(now, t time.Time) int {
	ny, nm, nd := now.Date()
	ty, tm, td := t.Date()
	start := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start) / (24 * time.Hour))
}
