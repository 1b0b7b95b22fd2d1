package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// MinutesPerDay количество минут в сутках, верхняя граница для концов интервалов
const MinutesPerDay = 24 * 60

const timeStringLayout = "15:04"

var (
	// ErrInvalidTimeString возвращается при некорректном формате времени
	ErrInvalidTimeString = errors.New("invalid time string format")

	// ErrTimeOverflow возвращается, когда результат выходит за пределы суток
	ErrTimeOverflow = errors.New("time string overflow")
)

// TimeString время суток в формате HH:MM без привязки к дате и часовому поясу
type TimeString string

// NewTimeString создает TimeString из time.Time (секунды отбрасываются)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format(timeStringLayout))
}

// NewTimeStringFromString парсит строку формата HH:MM
func NewTimeStringFromString(s string) (TimeString, error) {
	t, err := time.Parse(timeStringLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	return NewTimeString(t), nil
}

// NewTimeStringFromMinutes создает TimeString из количества минут от полуночи
func NewTimeStringFromMinutes(minutes int) (TimeString, error) {
	if minutes < 0 || minutes >= MinutesPerDay {
		return "", fmt.Errorf("%w: %d minutes", ErrTimeOverflow, minutes)
	}
	return TimeString(fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)), nil
}

// MustTimeString парсит HH:MM и паникует при ошибке (для констант и тестов)
func MustTimeString(s string) TimeString {
	t, err := NewTimeStringFromString(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Validate проверяет формат HH:MM
func (t TimeString) Validate() error {
	if _, err := time.Parse(timeStringLayout, string(t)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return nil
}

// IsZero возвращает true, если время не задано
func (t TimeString) IsZero() bool {
	return t == ""
}

// Minutes возвращает количество минут от полуночи.
// Для невалидного значения возвращает -1.
func (t TimeString) Minutes() int {
	parsed, err := time.Parse(timeStringLayout, string(t))
	if err != nil {
		return -1
	}
	return parsed.Hour()*60 + parsed.Minute()
}

// AddMinutes возвращает время, сдвинутое на n минут.
// Переход через полночь считается ошибкой.
func (t TimeString) AddMinutes(n int) (TimeString, error) {
	m := t.Minutes()
	if m < 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return NewTimeStringFromMinutes(m + n)
}

// IsBefore возвращает true, если t строго раньше other
func (t TimeString) IsBefore(other TimeString) bool {
	return t.Minutes() < other.Minutes()
}

// IsAfter возвращает true, если t строго позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return t.Minutes() > other.Minutes()
}

// String реализует fmt.Stringer
func (t TimeString) String() string {
	return string(t)
}

// Value реализует driver.Valuer для записи в колонку TIME
func (t TimeString) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return string(t), nil
}

// Scan реализует sql.Scanner. PostgreSQL возвращает TIME как "HH:MM:SS".
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = ""
		return nil
	case time.Time:
		*t = NewTimeString(v)
		return nil
	case []byte:
		return t.parseDBValue(string(v))
	case string:
		return t.parseDBValue(v)
	default:
		return fmt.Errorf("%w: unsupported scan type %T", ErrInvalidTimeString, src)
	}
}

func (t *TimeString) parseDBValue(s string) error {
	for _, layout := range []string{"15:04:05", timeStringLayout} {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = NewTimeString(parsed)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
}
