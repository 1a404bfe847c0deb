package types

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout формат календарной даты
const DateLayout = "2006-01-02"

// ErrInvalidDate возвращается при некорректной календарной дате
var ErrInvalidDate = errors.New("invalid date string")

// UnixDate календарная дата, представленная числом миллисекунд от эпохи до полуночи этой даты.
// Полночь берется в UTC, поэтому значение не зависит от часового пояса и задает
// полный порядок и равенство дат.
type UnixDate int64

// ParseUnixDate конвертирует строку "YYYY-MM-DD" в UnixDate
func ParseUnixDate(s string) (UnixDate, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return UnixDate(t.UnixMilli()), nil
}

// UnixDateOf возвращает календарную дату момента t в его собственной локации
func UnixDateOf(t time.Time) UnixDate {
	y, m, d := t.Date()
	return UnixDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).UnixMilli())
}

// String возвращает дату в формате "YYYY-MM-DD"
func (d UnixDate) String() string {
	return time.UnixMilli(int64(d)).UTC().Format(DateLayout)
}

// StartIn возвращает начало этой календарной даты в указанной локации
func (d UnixDate) StartIn(loc *time.Location) time.Time {
	y, m, day := time.UnixMilli(int64(d)).UTC().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// IsZero возвращает true, если дата не задана
func (d UnixDate) IsZero() bool {
	return d == 0
}
