package seatrac

import (
	"fmt"
	"strings"
)

// Fmter formats the elements of a column of values.  The first
// argument is the column data, a slice of numbers or strings, and the
// second is the column heading.
type Fmter func(interface{}, string) []string

// SummaryTable renders an analysis result as fixed-width text.
type SummaryTable struct {

	// Title
	Title string

	// Column names
	ColNames []string

	// Formatters for the column values
	ColFmt []Fmter

	// Cols[j] is the j^th column.  Its concrete type should be a
	// slice, e.g. of numbers or strings.
	Cols []interface{}

	// Values at the top of the summary
	Top []string

	// Messages displayed below the table
	Msg []string

	// Total width of the table
	tw int
}

// line returns a horizontal rule of the given character spanning the
// width of the table.
func (s *SummaryTable) line(c string) string {
	return strings.Repeat(c, s.tw) + "\n"
}

// top renders the fields above the column block, two fields per line.
func (s *SummaryTable) top(gap int) string {

	w := [2]int{}
	for j, x := range s.Top {
		if len(x) > w[j%2] {
			w[j%2] = len(x)
		}
	}

	var b strings.Builder
	for j, x := range s.Top {
		fmt.Fprintf(&b, fmt.Sprintf("%%-%ds", w[j%2]), x)
		if j%2 == 1 {
			b.WriteString("\n")
		} else {
			b.WriteString(strings.Repeat(" ", gap))
		}
	}
	if len(s.Top)%2 == 1 {
		b.WriteString("\n")
	}

	return b.String()
}

// String returns the table as a string.
func (s *SummaryTable) String() string {

	var tab [][]string
	var wx []int
	nrow := 0
	for j, c := range s.Cols {
		u := s.ColFmt[j](c, s.ColNames[j])
		tab = append(tab, u)
		w := len(s.ColNames[j])
		for _, v := range u {
			if len(v) > w {
				w = len(v)
			}
		}
		wx = append(wx, w)
		if len(u) > nrow {
			nrow = len(u)
		}
	}

	gap := 10

	// The width of the table is set by the widest of the column
	// block, the title, and the top fields.
	s.tw = 0
	for _, w := range wx {
		s.tw += w
	}
	if s.tw < len(s.Title) {
		s.tw = len(s.Title)
	}
	tw := [2]int{}
	for j, x := range s.Top {
		if len(x) > tw[j%2] {
			tw[j%2] = len(x)
		}
	}
	if k := tw[0] + gap + tw[1]; s.tw < k {
		s.tw = k
	}

	var buf strings.Builder

	// Center the title
	k := (s.tw - len(s.Title)) / 2
	if k > 0 {
		buf.WriteString(strings.Repeat(" ", k))
	}
	buf.WriteString(s.Title)
	buf.WriteString("\n")

	buf.WriteString(s.line("="))
	buf.WriteString(s.top(gap))
	buf.WriteString(s.line("-"))

	for j, c := range s.ColNames {
		fmt.Fprintf(&buf, fmt.Sprintf("%%%ds", wx[j]), c)
	}
	buf.WriteString("\n")
	buf.WriteString(s.line("-"))

	for i := 0; i < nrow; i++ {
		for j := 0; j < len(tab); j++ {
			v := ""
			if i < len(tab[j]) {
				v = tab[j][i]
			}
			fmt.Fprintf(&buf, fmt.Sprintf("%%%ds", wx[j]), v)
		}
		buf.WriteString("\n")
	}
	buf.WriteString(s.line("-"))

	for _, msg := range s.Msg {
		buf.WriteString(msg + "\n")
	}

	return buf.String()
}
