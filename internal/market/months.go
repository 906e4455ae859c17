package market

import (
	"fmt"
	"time"
)

// YearMonth is one calendar month.
type YearMonth struct {
	Year  int
	Month int
}

// ParsePeriod parses a "YYYY-MM" period string.
func ParsePeriod(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid period %q: expected YYYY-MM", s)
	}
	return YearMonth{Year: t.Year(), Month: int(t.Month())}, nil
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

func (ym YearMonth) after(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year > other.Year
	}
	return ym.Month > other.Month
}

func (ym YearMonth) next() YearMonth {
	if ym.Month == 12 {
		return YearMonth{Year: ym.Year + 1, Month: 1}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

func (ym YearMonth) prev() YearMonth {
	if ym.Month == 1 {
		return YearMonth{Year: ym.Year - 1, Month: 12}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

// MonthIterator yields every month from from to to inclusive, ascending. An
// inverted range yields nothing. Reconstructable: a fresh iterator restarts
// the sequence.
type MonthIterator struct {
	current YearMonth
	last    YearMonth
	done    bool
}

func Months(from, to YearMonth) *MonthIterator {
	return &MonthIterator{current: from, last: to, done: from.after(to)}
}

// Next returns the next month and false once the sequence is exhausted.
func (it *MonthIterator) Next() (YearMonth, bool) {
	if it.done {
		return YearMonth{}, false
	}
	ym := it.current
	if ym == it.last {
		it.done = true
	} else {
		it.current = ym.next()
	}
	return ym, true
}

// PreviousWindow returns the window of the same length immediately preceding
// [from, to], used to derive the comparison period for trend classification.
func PreviousWindow(from, to YearMonth) (YearMonth, YearMonth) {
	length := 0
	for it := Months(from, to); ; {
		if _, ok := it.Next(); !ok {
			break
		}
		length++
	}
	if length == 0 {
		length = 1
	}
	prevTo := from.prev()
	prevFrom := prevTo
	for i := 1; i < length; i++ {
		prevFrom = prevFrom.prev()
	}
	return prevFrom, prevTo
}
