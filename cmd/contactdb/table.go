package main

import (
	"fmt"
	"io"
	"strings"

	"contactdb/pkg/common"

	"golang.org/x/text/width"
)

const (
	nameCol   = 12
	phoneCol  = 14
	remarkCol = 16
)

// displayWidth counts terminal cells: wide and fullwidth runes take two.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// fit truncates s to at most cols cells, marking the cut with "...".
func fit(s string, cols int) string {
	if displayWidth(s) <= cols {
		return s
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		w := displayWidth(string(r))
		if used+w > cols-3 {
			break
		}
		b.WriteRune(r)
		used += w
	}
	return b.String() + "..."
}

func pad(s string, cols int) string {
	s = fit(s, cols)
	return s + strings.Repeat(" ", cols-displayWidth(s))
}

func printContacts(out io.Writer, contacts []common.Contact) {
	rule := strings.Repeat("-", 4+nameCol+phoneCol+remarkCol+13)
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "| %-4s | %s | %s | %s |\n", "#", pad("Name", nameCol), pad("Phone", phoneCol), pad("Remark", remarkCol))
	fmt.Fprintln(out, rule)
	for i, c := range contacts {
		fmt.Fprintf(out, "| %-4d | %s | %s | %s |\n", i+1, pad(c.Name, nameCol), pad(c.Phone, phoneCol), pad(c.Remark, remarkCol))
	}
	fmt.Fprintln(out, rule)
}
