package table

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02T15:04:05"

	// output layouts print the fraction only when it is non-zero
	timeOutLayout     = "15:04:05.999999999"
	dateTimeOutLayout = "2006-01-02T15:04:05.999999999"
)

var (
	timeLayouts     = []string{TimeLayout, "15:04"}
	dateTimeLayouts = []string{DateTimeLayout, "2006-01-02T15:04"}
)

func parseString(s string) (string, error) {
	return s, nil
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

func parseDouble(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "nan":
		return math.NaN(), nil
	case "infinity", "+infinity":
		return math.Inf(1), nil
	case "-infinity":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseBoolean(s string) (bool, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, "true"):
		return true, nil
	case strings.EqualFold(s, "false"):
		return false, nil
	}
	return false, errors.New("expected true or false")
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

func parseTime(s string) (time.Time, error) {
	return parseFirst(strings.TrimSpace(s), timeLayouts)
}

func parseDateTime(s string) (time.Time, error) {
	return parseFirst(strings.TrimSpace(s), dateTimeLayouts)
}

func parseFirst(s string, layouts []string) (time.Time, error) {
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func formatString(v string) string {
	return v
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func formatBoolean(v bool) string {
	return strconv.FormatBool(v)
}

func formatDate(v time.Time) string {
	return v.Format(DateLayout)
}

func formatTime(v time.Time) string {
	return v.Format(timeOutLayout)
}

func formatDateTime(v time.Time) string {
	return v.Format(dateTimeOutLayout)
}

// truncate to the representation stored by each temporal type
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func timeOf(t time.Time) time.Time {
	return time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func dateTimeOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
