package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// FormatEUR renders a whole-euro amount without fraction digits.
func (m Messages) FormatEUR(amount int64) string {
	p := message.NewPrinter(m.tag)
	if m.tag == language.German {
		return p.Sprintf("%v €", number.Decimal(amount))
	}
	return p.Sprintf("€%v", number.Decimal(amount))
}
