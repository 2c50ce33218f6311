package fatfs

import (
	"fmt"
	"time"

	"github.com/gofatfs/fatfs/checkpoint"
)

// parseDate reads a 16-bit FAT date stamp, a date relative to the
// MS-DOS epoch of 1980-01-01:
//
//	Bits 0-4:  day of month, 1-31.
//	Bits 5-8:  month of year, 1-12.
//	Bits 9-15: count of years since 1980, 0-127 (1980-2107).
//
// It reports ErrInvalidTimestamp if day or month falls outside its
// valid range; the zero time.Time is returned alongside the error so a
// caller that chooses to substitute rather than surface the error has
// something to substitute.
func parseDate(word uint16) (time.Time, error) {
	day := int(word & 0x1F)
	month := int((word & 0x1E0) >> 5)
	year := 1980 + int((word&0xFE00)>>9)

	if day < 1 || day > 31 || month < 1 || month > 12 {
		return time.Time{}, checkpoint.From(fmt.Errorf("%w: date word 0x%04x (day=%d month=%d)", ErrInvalidTimestamp, word, day, month))
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// parseTime reads a 16-bit FAT time stamp with 2-second granularity:
//
//	Bits 0-4:   2-second count, 0-29 (0-58 seconds).
//	Bits 5-10:  minutes, 0-59.
//	Bits 11-15: hours, 0-23.
//
// It reports ErrInvalidTimestamp if any field falls outside its valid
// range.
func parseTime(word uint16) (hour, minute, second int, err error) {
	second = int(word&0x1F) * 2
	minute = int((word & 0x7E0) >> 5)
	hour = int((word & 0xF800) >> 11)

	if second > 58 || minute > 59 || hour > 23 {
		return 0, 0, 0, checkpoint.From(fmt.Errorf("%w: time word 0x%04x (h=%d m=%d s=%d)", ErrInvalidTimestamp, word, hour, minute, second))
	}
	return hour, minute, second, nil
}

// parseTimestamp combines a date word, a time word, and an optional
// centisecond refinement (0-199, valid only for creation time) into a
// single time.Time. The whole-seconds part of cs (cs/100) is added to
// the decoded seconds; the remainder (cs%100)*10ms becomes the
// sub-second component, using unambiguous integer division throughout
// (see SPEC_FULL.md Open Question #3).
//
// On any invalid field this reports ErrInvalidTimestamp and returns the
// zero time.Time, per the substitute-then-report policy in SPEC_FULL.md.
func parseTimestamp(dateWord, timeWord uint16, centiseconds byte) (time.Time, error) {
	date, err := parseDate(dateWord)
	if err != nil {
		return time.Time{}, err
	}

	hour, minute, second, err := parseTime(timeWord)
	if err != nil {
		return time.Time{}, err
	}

	if centiseconds > 199 {
		return time.Time{}, checkpoint.From(fmt.Errorf("%w: centiseconds %d out of range", ErrInvalidTimestamp, centiseconds))
	}

	second += int(centiseconds) / 100
	milliseconds := (int(centiseconds) % 100) * 10

	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, second, milliseconds*int(time.Millisecond), time.UTC), nil
}

// parseAccessDate reads a date-only timestamp (the last-access field
// has no associated time word); the time components default to zero.
func parseAccessDate(dateWord uint16) (time.Time, error) {
	return parseDate(dateWord)
}
