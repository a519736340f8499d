// Package money formats amounts the way the reports show them.
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Indonesian)

// Rupiah renders an amount with no decimals and dot-separated thousands,
// e.g. Rupiah(700000) == "Rp 700.000".
func Rupiah(n int64) string {
	return printer.Sprintf("Rp %d", n)
}
