package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// TaskStatus is the lifecycle state of a single task.
type TaskStatus string

const (
	TaskDone       TaskStatus = "done"
	TaskInProgress TaskStatus = "inProgress"
	TaskToDo       TaskStatus = "toDo"
	TaskNotDone    TaskStatus = "notDone"
	TaskPending    TaskStatus = "pending"
)

var TaskStatuses = []TaskStatus{TaskDone, TaskInProgress, TaskToDo, TaskNotDone, TaskPending}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// isPendingLike reports statuses that count toward the pending tier.
func (s TaskStatus) isPendingLike() bool {
	return s == TaskPending || s == TaskNotDone || s == TaskToDo
}

// DayStatus is the ordinal productivity scale of a day.
type DayStatus int

const (
	DayIdle DayStatus = iota
	DayImproving
	DayModerate
	DayEfficient
	DayPeak
)

var dayStatusNames = [...]string{"idle", "improving", "moderate", "efficient", "peak"}

func (s DayStatus) Valid() bool { return s >= DayIdle && s <= DayPeak }

// IsProductive reports the fully productive tier, the only one that extends a streak.
func (s DayStatus) IsProductive() bool { return s == DayPeak }

func (s DayStatus) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return dayStatusNames[s]
}

// Title is the capitalized name used by chart projections.
func (s DayStatus) Title() string {
	n := s.String()
	return strings.ToUpper(n[:1]) + n[1:]
}

// ParseDayStatus accepts an ordinal ("0".."4"), a tier name, or the legacy
// two-valued scale where "productive" is peak and "not productive" is idle.
func ParseDayStatus(v string) (DayStatus, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "productive":
		return DayPeak, nil
	case "not productive", "not_productive", "notproductive":
		return DayIdle, nil
	}
	for i, n := range dayStatusNames {
		if v == n {
			return DayStatus(i), nil
		}
	}
	if n, err := strconv.Atoi(v); err == nil && DayStatus(n).Valid() {
		return DayStatus(n), nil
	}
	return DayIdle, fmt.Errorf("invalid status of day %q", v)
}

func (s *DayStatus) UnmarshalJSON(b []byte) error {
	var raw any
	if err := sonic.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) || !DayStatus(int(v)).Valid() {
			return fmt.Errorf("invalid status of day %v", v)
		}
		*s = DayStatus(int(v))
		return nil
	case string:
		p, err := ParseDayStatus(v)
		if err != nil {
			return err
		}
		*s = p
		return nil
	default:
		return fmt.Errorf("invalid status of day %s", string(b))
	}
}

// DeriveDayStatus maps a day's tasks onto the status scale. First match wins:
// no tasks is idle, all done is peak, all pending-like is improving, anything
// else is moderate. Efficient is only reachable by explicit override.
func DeriveDayStatus(tasks []Task) DayStatus {
	if len(tasks) == 0 {
		return DayIdle
	}
	allDone, allPending := true, true
	for _, t := range tasks {
		if t.Status != TaskDone {
			allDone = false
		}
		if !t.Status.isPendingLike() {
			allPending = false
		}
	}
	switch {
	case allDone:
		return DayPeak
	case allPending:
		return DayImproving
	default:
		return DayModerate
	}
}
