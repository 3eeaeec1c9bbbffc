package clock

import (
	"log/slog"
	"time"
)

const (
	TimeLayout = "15:04:05"
	DateLayout = "2006-01-02"
)

// Clock форматирует время в заданном часовом поясе.
type Clock struct {
	loc *time.Location
}

// New загружает часовой пояс по имени IANA. Неизвестный пояс заменяется на UTC.
func New(timezone string, log *slog.Logger) *Clock {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.Warn("Unknown timezone, falling back to UTC",
			slog.String("component", "clock"),
			slog.String("timezone", timezone),
			slog.Any("error", err),
		)
		loc = time.UTC
	}
	return &Clock{loc: loc}
}

func (c *Clock) FormatTime(now time.Time) string { return now.In(c.loc).Format(TimeLayout) }

func (c *Clock) FormatDate(now time.Time) string { return now.In(c.loc).Format(DateLayout) }
