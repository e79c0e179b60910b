package race

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatDuration renders a duration as H:MM:SS or H:MM:SS.ffffff when
// it carries a sub-second component. This is the on-disk format for
// elapsed times and accumulated pause durations.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := d / time.Hour
	minutes := (d % time.Hour) / time.Minute
	seconds := (d % time.Minute) / time.Second
	micros := (d % time.Second) / time.Microsecond

	if micros == 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d:%02d.%06d", hours, minutes, seconds, micros)
}

// ParseDuration parses the H:MM:SS[.ffffff] format written by
// FormatDuration. The format is a hard contract: anything else is an
// error.
func ParseDuration(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid duration %q: expected H:MM:SS", s)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("invalid duration %q: bad hours", s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid duration %q: bad minutes", s)
	}

	secPart := parts[2]
	var micros int
	if dot := strings.IndexByte(secPart, '.'); dot >= 0 {
		frac := secPart[dot+1:]
		secPart = secPart[:dot]
		if frac == "" || len(frac) > 6 {
			return 0, fmt.Errorf("invalid duration %q: bad fraction", s)
		}
		f, err := strconv.Atoi(frac)
		if err != nil || f < 0 {
			return 0, fmt.Errorf("invalid duration %q: bad fraction", s)
		}
		// Right-pad to microseconds: ".5" means 500000us.
		for i := len(frac); i < 6; i++ {
			f *= 10
		}
		micros = f
	}

	seconds, err := strconv.Atoi(secPart)
	if err != nil || seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("invalid duration %q: bad seconds", s)
	}

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(micros)*time.Microsecond, nil
}

// FormatClock renders a duration as zero-padded HH:MM:SS for display
// and spreadsheet output. Sub-second precision is truncated.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
