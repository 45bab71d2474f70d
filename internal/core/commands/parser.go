// Package commands turns raw chat command text into structured intents.
// Parsing has no side effects; the ledger service only applies domain rules
// to what comes out of here.
package commands

import (
	"regexp"
	"strings"
	"time"

	"github.com/SscSPs/finance_bot/internal/apperrors"
	"github.com/SscSPs/finance_bot/internal/core/domain"
	"github.com/shopspring/decimal"
)

// maxAmountLen bounds the amount literal; longer inputs are rejected before
// decimal parsing.
const maxAmountLen = 32

// amountPattern accepts plain decimal literals only. Exponent forms such as
// 1e99999999 would expand to millions of digits once rendered.
var amountPattern = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// Command is a parsed, structurally valid intent.
type Command interface {
	Keyword() string
}

// RecordOutflow asks the ledger to store spending.
type RecordOutflow struct {
	Amount      decimal.Decimal
	Description string
	OccurredAt  time.Time // Message send time in the reference timezone
}

func (RecordOutflow) Keyword() string { return "out" }

// OccurredAtISO renders OccurredAt as ISO-8601 with offset, e.g. 2025-07-14T12:00:00+07:00.
func (c RecordOutflow) OccurredAtISO() string {
	return c.OccurredAt.Format(time.RFC3339)
}

// QueryPeriod asks for the transactions and total of a period.
type QueryPeriod struct {
	Period domain.Period
}

func (q QueryPeriod) Keyword() string { return strings.ToLower(string(q.Period)) }

// Start is the greeting sent when a chat is opened.
type Start struct{}

func (Start) Keyword() string { return "start" }

// Help lists the supported commands.
type Help struct{}

func (Help) Keyword() string { return "help" }

// Echo repeats Text back to the sender.
type Echo struct {
	Text string
}

func (Echo) Keyword() string { return "echo" }

// Greeting is the plain "hi" message.
type Greeting struct{}

func (Greeting) Keyword() string { return "hi" }

// Parser converts command text into a Command.
type Parser struct {
	loc *time.Location
}

// NewParser creates a parser that stamps outflows in loc. A nil loc means UTC.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{loc: loc}
}

// Parse maps text to a Command. messageTimestamp is the originating message's send
// time in Unix seconds. A leading "/" and a trailing "@BotName" on the keyword are ignored.
func (p *Parser) Parse(text string, messageTimestamp int64) (Command, error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil, apperrors.NewParseError(apperrors.ErrMalformedCommand, text)
	}

	if len(tokens) == 1 && strings.EqualFold(tokens[0], "hi") {
		return Greeting{}, nil
	}

	switch keyword := normalizeKeyword(tokens[0]); keyword {
	case "out":
		return p.parseOutflow(tokens, messageTimestamp)
	case "today", "week", "month":
		period, err := domain.ParsePeriod(keyword)
		if err != nil {
			return nil, apperrors.NewParseError(apperrors.ErrMalformedCommand, text)
		}
		return QueryPeriod{Period: period}, nil
	case "start":
		return Start{}, nil
	case "help":
		return Help{}, nil
	case "echo":
		return Echo{Text: strings.Join(tokens[1:], " ")}, nil
	default:
		return nil, apperrors.NewParseError(apperrors.ErrMalformedCommand, tokens[0])
	}
}

func (p *Parser) parseOutflow(tokens []string, messageTimestamp int64) (Command, error) {
	if len(tokens) < 2 {
		return nil, apperrors.NewParseError(apperrors.ErrInvalidAmount, "")
	}

	literal := tokens[1]
	if len(literal) > maxAmountLen || !amountPattern.MatchString(literal) {
		return nil, apperrors.NewParseError(apperrors.ErrInvalidAmount, literal)
	}

	amount, err := decimal.NewFromString(literal)
	if err != nil {
		return nil, apperrors.NewParseError(apperrors.ErrInvalidAmount, tokens[1])
	}

	return RecordOutflow{
		Amount:      amount,
		Description: strings.Join(tokens[2:], " "),
		OccurredAt:  time.Unix(messageTimestamp, 0).In(p.loc),
	}, nil
}

func normalizeKeyword(token string) string {
	token = strings.TrimPrefix(token, "/")
	if i := strings.IndexByte(token, '@'); i >= 0 {
		token = token[:i]
	}
	return strings.ToLower(token)
}
