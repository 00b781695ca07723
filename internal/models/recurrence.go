package models

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/kaizenhq/kaizen/internal/constants"
)

type RecurrenceType string

const (
	RecurrenceDaily        RecurrenceType = "daily"
	RecurrenceSpecificDays RecurrenceType = "specific_days"
	RecurrenceWeeklyTarget RecurrenceType = "weekly_target"
)

// Recurrence is the rule deciding which dates a habit is scheduled on.
// It is implemented by Daily, SpecificDays and WeeklyTarget only.
type Recurrence interface {
	Type() RecurrenceType
	isRecurrence()
}

// Daily schedules a habit every day.
type Daily struct{}

// SpecificDays schedules a habit on a fixed set of weekdays. An empty set
// is allowed and never schedules the habit.
type SpecificDays struct {
	Days []time.Weekday
}

// WeeklyTarget asks for Target completions within each week, where weeks
// begin on WeekStartDay.
type WeeklyTarget struct {
	Target       int
	WeekStartDay time.Weekday
}

func (Daily) Type() RecurrenceType        { return RecurrenceDaily }
func (SpecificDays) Type() RecurrenceType { return RecurrenceSpecificDays }
func (WeeklyTarget) Type() RecurrenceType { return RecurrenceWeeklyTarget }

func (Daily) isRecurrence()        {}
func (SpecificDays) isRecurrence() {}
func (WeeklyTarget) isRecurrence() {}

// Includes reports whether wd is one of the scheduled weekdays.
func (s SpecificDays) Includes(wd time.Weekday) bool {
	for _, d := range s.Days {
		if d == wd {
			return true
		}
	}
	return false
}

// Rule returns the habit's recurrence, treating an unset rule as Daily.
func (h Habit) Rule() Recurrence {
	if h.Recurrence == nil {
		return Daily{}
	}
	return h.Recurrence
}

// recurrenceConfig is the persisted payload of a recurrence rule.
// reset_day is accepted as an alias of week_start_day for older records.
type recurrenceConfig struct {
	Days         []int `json:"days,omitempty"`
	Target       *int  `json:"target,omitempty"`
	WeekStartDay *int  `json:"week_start_day,omitempty"`
	ResetDay     *int  `json:"reset_day,omitempty"`
}

// EncodeRecurrence converts a rule into its stored type tag and JSON config.
func EncodeRecurrence(r Recurrence) (RecurrenceType, []byte, error) {
	var cfg recurrenceConfig
	switch rule := r.(type) {
	case nil, Daily:
		return RecurrenceDaily, []byte("{}"), nil
	case SpecificDays:
		cfg.Days = make([]int, 0, len(rule.Days))
		for _, d := range rule.Days {
			cfg.Days = append(cfg.Days, int(d))
		}
		sort.Ints(cfg.Days)
		data, err := json.Marshal(struct {
			Days []int `json:"days"`
		}{cfg.Days})
		return RecurrenceSpecificDays, data, err
	case WeeklyTarget:
		target := rule.Target
		wsd := int(rule.WeekStartDay)
		cfg.Target = &target
		cfg.WeekStartDay = &wsd
		data, err := json.Marshal(cfg)
		return RecurrenceWeeklyTarget, data, err
	default:
		return RecurrenceDaily, []byte("{}"), nil
	}
}

// DecodeRecurrence rebuilds a rule from its stored form. It never fails:
// unknown types decode as Daily, malformed config decodes to an empty
// payload so the documented fallbacks apply downstream, and a week start
// outside 0..6 becomes Sunday.
func DecodeRecurrence(typ RecurrenceType, config []byte) Recurrence {
	var cfg recurrenceConfig
	if len(config) > 0 {
		if err := json.Unmarshal(config, &cfg); err != nil {
			cfg = recurrenceConfig{}
		}
	}

	switch typ {
	case RecurrenceSpecificDays:
		days := make([]time.Weekday, 0, len(cfg.Days))
		seen := make(map[int]bool)
		for _, d := range cfg.Days {
			if d < 0 || d > 6 || seen[d] {
				continue
			}
			seen[d] = true
			days = append(days, time.Weekday(d))
		}
		return SpecificDays{Days: days}
	case RecurrenceWeeklyTarget:
		rule := WeeklyTarget{}
		if cfg.Target != nil {
			rule.Target = *cfg.Target
		}
		start := cfg.WeekStartDay
		if start == nil {
			start = cfg.ResetDay
		}
		rule.WeekStartDay = time.Weekday(constants.FallbackWeekStartDay)
		if start != nil && *start >= 0 && *start <= 6 {
			rule.WeekStartDay = time.Weekday(*start)
		}
		return rule
	default:
		return Daily{}
	}
}

type habitJSON struct {
	habitAlias
	RecurrenceType   RecurrenceType  `json:"recurrence_type"`
	RecurrenceConfig json.RawMessage `json:"recurrence_config"`
}

type habitAlias Habit

func (h Habit) MarshalJSON() ([]byte, error) {
	typ, cfg, err := EncodeRecurrence(h.Recurrence)
	if err != nil {
		return nil, err
	}
	return json.Marshal(habitJSON{
		habitAlias:       habitAlias(h),
		RecurrenceType:   typ,
		RecurrenceConfig: cfg,
	})
}

func (h *Habit) UnmarshalJSON(data []byte) error {
	var raw habitJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*h = Habit(raw.habitAlias)
	h.Recurrence = DecodeRecurrence(raw.RecurrenceType, raw.RecurrenceConfig)
	return nil
}
