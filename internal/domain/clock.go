package domain

import (
	"fmt"
	"time"
)

// ClockToMinutes переводит время формата HH:MM в минуты от полуночи.
func ClockToMinutes(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("неверный формат времени %q: %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// MinutesToClock переводит минуты от полуночи в строку HH:MM.
func MinutesToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// IntervalsOverlap проверяет пересечение полуоткрытых интервалов
// [start1, end1) и [start2, end2). Касание границ пересечением не считается.
func IntervalsOverlap(start1, end1, start2, end2 int) bool {
	return start1 < end2 && start2 < end1
}
