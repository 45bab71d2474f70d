package bot

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"

	"github.com/SscSPs/finance_bot/internal/core/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Fixed reply texts.
const (
	savedText          = "Saved !"
	greetingText       = "Hey there!"
	emptyEchoText      = "You didn’t say anything to echo!"
	invalidAmountText  = "⚠️ Invalid amount. Usage: /out <amount> <description>"
	nonPositiveText    = "⚠️ Amount must be greater than zero."
	saveFailedText     = "❌ Failed to save the transaction."
	unknownCommandText = "🤔 Unknown command. Send /help to see what I can do."
	helpText           = "Here is what I understand:\n" +
		"/out <amount> <description> - record spending\n" +
		"/today - transactions recorded today\n" +
		"/week - transactions recorded this week\n" +
		"/month - transactions recorded this month\n" +
		"/echo <text> - repeat text back\n" +
		"/help - show this message"
)

// Renderer turns ledger results into chat replies.
type Renderer struct {
	group     string
	point     string
	symbol    string
	precision int32
	loc       *time.Location
}

// NewRenderer builds a Renderer for locale (a BCP 47 tag such as "id-ID").
// Amounts are rounded to precision fraction digits and prefixed with symbol.
func NewRenderer(locale, symbol string, precision int, loc *time.Location) (*Renderer, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	if precision < 0 {
		return nil, fmt.Errorf("currency precision must not be negative, got %d", precision)
	}
	if loc == nil {
		loc = time.UTC
	}
	group, dec := separators(message.NewPrinter(tag))
	return &Renderer{
		group:     group,
		point:     dec,
		symbol:    symbol,
		precision: int32(precision),
		loc:       loc,
	}, nil
}

// Amount formats amount with locale digit grouping, e.g. "Rp 15.000".
func (r *Renderer) Amount(amount decimal.Decimal) string {
	digits := amount.StringFixed(r.precision)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	intPart, fracPart, _ := strings.Cut(digits, ".")

	formatted := sign + groupDigits(intPart, r.group)
	if fracPart != "" {
		formatted += r.point + fracPart
	}
	if r.symbol == "" {
		return formatted
	}
	return r.symbol + " " + formatted
}

// separators reads the locale's group and decimal marks off a sample
// number so Amount can lay out arbitrarily long digit strings itself.
func separators(p *message.Printer) (group, dec string) {
	sample := p.Sprintf("%v", number.Decimal(1234567.5, number.Scale(1)))

	var marks []string
	var run strings.Builder
	seenDigit := false
	for _, c := range sample {
		if unicode.IsDigit(c) {
			seenDigit = true
			if run.Len() > 0 {
				marks = append(marks, run.String())
				run.Reset()
			}
			continue
		}
		if seenDigit {
			run.WriteRune(c)
		}
	}

	switch len(marks) {
	case 0:
		return "", "."
	case 1:
		return "", marks[0]
	default:
		return marks[0], marks[len(marks)-1]
	}
}

func groupDigits(intPart, sep string) string {
	if sep == "" || len(intPart) <= 3 {
		return intPart
	}
	var b strings.Builder
	head := len(intPart) % 3
	if head > 0 {
		b.WriteString(intPart[:head])
	}
	for i := head; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String()
}

// Start greets a user by first name.
func (r *Renderer) Start(firstName string) string {
	if firstName == "" {
		firstName = "there"
	}
	return fmt.Sprintf("Hello, %s! I am your bot 🤖", firstName)
}

// Report renders a period summary as Telegram HTML.
func (r *Renderer) Report(report *domain.LedgerReport) string {
	if report.Empty {
		return fmt.Sprintf("😴 No transactions recorded %s.", periodPhrase(report.Period))
	}

	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(periodHeader(report.Period))
	b.WriteString("</b>\n")

	for i, txn := range report.Transactions {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(r.line(report.Period, txn))
	}

	b.WriteString("\n\n<b>💰 Total:</b> <code>")
	b.WriteString(html.EscapeString(r.Amount(report.Total)))
	b.WriteString("</code>")
	return b.String()
}

// ReportFailure is sent when a summary could not be read from the store.
func (r *Renderer) ReportFailure(period domain.Period) string {
	switch period {
	case domain.Today:
		return "❌ Failed to retrieve today's transactions."
	case domain.Week:
		return "❌ Failed to retrieve this week's transactions."
	default:
		return "❌ Failed to retrieve this month's transactions."
	}
}

func (r *Renderer) line(period domain.Period, txn domain.Transaction) string {
	at := txn.CreatedAt.In(r.loc)

	var b strings.Builder
	if period != domain.Today {
		b.WriteString("<b>")
		b.WriteString(at.Format("02/01/2006"))
		b.WriteString("</b> ")
	}
	b.WriteString(at.Format("15:04"))
	b.WriteString(" • <i>")
	b.WriteString(html.EscapeString(string(txn.Type)))
	b.WriteString("</i> • <code>")
	b.WriteString(html.EscapeString(r.Amount(txn.Amount)))
	b.WriteString("</code>")
	if txn.Description != "" {
		b.WriteString(" – ")
		b.WriteString(html.EscapeString(txn.Description))
	}
	return b.String()
}

func periodPhrase(period domain.Period) string {
	switch period {
	case domain.Today:
		return "today"
	case domain.Week:
		return "this week"
	default:
		return "this month"
	}
}

func periodHeader(period domain.Period) string {
	switch period {
	case domain.Today:
		return "🧾 Transactions today"
	case domain.Week:
		return "📆 Transactions this week"
	default:
		return "📅 Transactions this month"
	}
}
