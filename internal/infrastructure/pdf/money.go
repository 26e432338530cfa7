package pdf

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// currencyPrefix va en texto: Helvetica no trae el glifo del peso (₱).
const currencyPrefix = "PHP "

var moneyPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatMoney formatea con separador de miles y dos decimales: 1400 -> "PHP 1,400.00".
func FormatMoney(d decimal.Decimal) string {
	f := d.Round(2).InexactFloat64()
	return currencyPrefix + moneyPrinter.Sprint(number.Decimal(f, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
