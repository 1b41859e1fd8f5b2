// Package chat answers short tutoring questions from a fixed rule list.
// Questions asking for a derivative are forwarded to a Deriver; everything
// else gets a canned answer. English and Vietnamese triggers are recognized
// and the reply follows the language of the trigger that matched.
package chat

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/njchilds90/derivtutor/derive"
)

// Name is the assistant's name in every identity answer.
const Name = "AI HQD"

// Deriver computes a simplified first derivative for the chat.
type Deriver interface {
	DeriveText(ctx context.Context, expression, variable string) (*derive.Derivation, error)
}

// Reply is the answer to one question. Derivation is set only when a
// derivative was computed.
type Reply struct {
	Text       string             `json:"text"`
	Rule       string             `json:"rule"`
	Derivation *derive.Derivation `json:"-"`
}

type rule struct {
	name     string
	triggers []string
	answer   func(r *Responder, ctx context.Context, question, trigger string) Reply
}

// Responder matches questions against its rules in order.
type Responder struct {
	deriver Deriver
	logger  *slog.Logger
	rules   []rule
}

// NewResponder returns a Responder. With a nil Deriver derivative requests
// get the usage hint.
func NewResponder(d Deriver, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Responder{deriver: d, logger: logger, rules: rules}
}

// Respond answers question. It never fails.
func (r *Responder) Respond(ctx context.Context, question string) Reply {
	q := strings.ToLower(strings.TrimSpace(question))
	if q == "" {
		return Reply{Text: "You have not asked anything yet.", Rule: "empty"}
	}
	for _, rl := range r.rules {
		for _, trig := range rl.triggers {
			if strings.Contains(q, trig) {
				r.logger.Debug("chat rule matched", "rule", rl.name, "trigger", trig)
				rep := rl.answer(r, ctx, strings.TrimSpace(question), trig)
				rep.Rule = rl.name
				return rep
			}
		}
	}
	return Reply{
		Text: "I did not quite understand. Try \"derivative of sin(x^2)\" or \"who created you?\"",
		Rule: "fallback",
	}
}

// vietnamese reports whether the trigger that matched is Vietnamese.
func vietnamese(trigger string) bool {
	for _, r := range trigger {
		if r > 0x7f {
			return true
		}
	}
	return false
}

func canned(en, vi string) func(*Responder, context.Context, string, string) Reply {
	return func(_ *Responder, _ context.Context, _, trigger string) Reply {
		if vietnamese(trigger) {
			return Reply{Text: vi}
		}
		return Reply{Text: en}
	}
}

var rules = []rule{
	{
		name:     "creator",
		triggers: []string{"who created", "who made you", "ai tạo"},
		answer: canned(
			"I am "+Name+", designed by you, with a rule-based derivative engine built in.",
			"Tôi là "+Name+", do bạn thiết kế, với bộ máy tính đạo hàm theo quy tắc được tích hợp.",
		),
	},
	{
		name:     "identity",
		triggers: []string{"your name", "who are you", "tên", "bạn là ai"},
		answer: canned(
			"I am "+Name+", an assistant for derivatives and calculus practice.",
			"Mình là "+Name+", trợ lý giải đạo hàm và trợ giúp học toán.",
		),
	},
	{
		name:     "derivative",
		triggers: []string{"đạo hàm của", "derivative of", "d/dx", "derive", "derivative"},
		answer:   (*Responder).derivative,
	},
	{
		name:     "product_rule",
		triggers: []string{"product rule", "quy tắc nhân"},
		answer: canned(
			"Product rule: (u·v)' = u'·v + u·v'. Use it when the expression is a product of two functions.",
			"Quy tắc nhân: (u·v)' = u'·v + u·v'. Áp dụng khi biểu thức là tích hai hàm.",
		),
	},
	{
		name:     "quotient_rule",
		triggers: []string{"quotient rule", "quy tắc thương"},
		answer: canned(
			"Quotient rule: (u/v)' = (u'·v - u·v') / v².",
			"Quy tắc thương: (u/v)' = (u'·v - u·v') / v².",
		),
	},
	{
		name:     "chain_rule",
		triggers: []string{"chain rule", "quy tắc chuỗi", "hàm hợp"},
		answer: canned(
			"Chain rule: (f(g(x)))' = f'(g(x))·g'(x). Differentiate the outer function, keep the inside, then multiply by the derivative of the inside.",
			"Quy tắc hàm hợp: (f(g(x)))' = f'(g(x))·g'(x).",
		),
	},
	{
		name:     "power_rule",
		triggers: []string{"power rule", "quy tắc lũy thừa"},
		answer: canned(
			"Power rule: (x^n)' = n·x^(n-1) for any constant n.",
			"Quy tắc lũy thừa: (x^n)' = n·x^(n-1) với n là hằng số.",
		),
	},
	{
		name:     "thanks",
		triggers: []string{"thank", "cảm ơn"},
		answer: canned(
			"Happy to help! Send the next problem whenever you are ready.",
			"Rất vui được giúp! Nếu cần giải thêm hãy gửi bài tiếp theo.",
		),
	},
}

var (
	extractors = []*regexp.Regexp{
		regexp.MustCompile(`(?i)đạo hàm của\s+(.+)`),
		regexp.MustCompile(`(?i)derivative of\s+(.+)`),
		regexp.MustCompile(`(?i)d/dx\s*(.+)`),
		regexp.MustCompile(`(?i)derive\s+(.+)`),
	}
	trailing = strings.NewReplacer("?", "", "!", "")
)

// extract returns the expression following the derivative trigger.
func extract(question string) string {
	for _, re := range extractors {
		if m := re.FindStringSubmatch(question); m != nil {
			s := strings.TrimSpace(trailing.Replace(m[1]))
			return strings.TrimSpace(strings.TrimSuffix(s, "."))
		}
	}
	return ""
}

func (r *Responder) derivative(ctx context.Context, question, trigger string) Reply {
	vi := vietnamese(trigger)
	text := extract(question)
	if text == "" || r.deriver == nil {
		if vi {
			return Reply{Text: "Bạn muốn tính đạo hàm hàm nào? Ví dụ: 'Đạo hàm của sin(x^2)'."}
		}
		return Reply{Text: "Which function should I differentiate? For example: \"derivative of sin(x^2)\"."}
	}

	d, err := r.deriver.DeriveText(ctx, text, "x")
	if err != nil {
		r.logger.Debug("chat derivative failed", "expression", text, "error", err)
		if vi {
			return Reply{Text: "Không thể tính đạo hàm của " + text + ": " + err.Error()}
		}
		return Reply{Text: "I could not differentiate " + text + ": " + err.Error()}
	}
	if vi {
		return Reply{Text: "Đạo hàm của " + text + " là " + d.ResultText(), Derivation: d}
	}
	return Reply{Text: "The derivative of " + text + " is " + d.ResultText(), Derivation: d}
}
