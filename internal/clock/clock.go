package clock

import "time"

// DefaultOffsetHours смещение часового пояса площадок (UTC+8)
const DefaultOffsetHours = 8

// Clock источник текущего времени, внедряется в usecase для тестов
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// NewSystem возвращает часы на time.Now в фиксированном поясе UTC+offsetHours
func NewSystem(offsetHours int) Clock {
	return systemClock{loc: Zone(offsetHours)}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

type fixedClock struct {
	now time.Time
}

// NewFixed возвращает часы, которые всегда показывают t (для тестов)
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t}
}

func (f fixedClock) Now() time.Time {
	return f.now
}

// Zone фиксированный пояс UTC+offsetHours без правил перехода на летнее время
func Zone(offsetHours int) *time.Location {
	if offsetHours == 0 {
		return time.UTC
	}
	return time.FixedZone("", offsetHours*60*60)
}
