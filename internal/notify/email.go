// Package notify sends the monthly budget digest over SMTP.
package notify

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// Sender delivers plain-text digests. When no SMTP host is configured the
// sender is nil and callers skip digests entirely.
type Sender struct {
	host     string
	port     string
	username string
	password string
	from     string
	logger   *log.Logger
}

func NewSender(host, port, username, password, from string, logger *log.Logger) *Sender {
	return &Sender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		logger:   logger.WithComponent(log.ComponentNotify),
	}
}

// SendBudgetDigest mails one user their month in review.
func (s *Sender) SendBudgetDigest(to, name string, summary core.BudgetSummary, trend []services.TrendPoint) error {
	e := email.NewEmail()
	e.From = s.from
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Your budget digest for %04d-%02d", summary.Year, summary.Month)
	e.Text = []byte(digestBody(name, summary, trend))

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Error("Failed to send digest", "to", to, log.FieldError, err.Error())
		return fmt.Errorf("send digest: %w", err)
	}

	s.logger.Info("Digest sent", "to", to)
	return nil
}

func digestBody(name string, summary core.BudgetSummary, trend []services.TrendPoint) string {
	if name == "" {
		name = "there"
	}

	body := fmt.Sprintf("Hi %s,\n\nHere is your month in review.\n\n", name)
	body += fmt.Sprintf("Income:       %.2f\n", summary.Income.Float())
	body += fmt.Sprintf("Expenses:     %.2f\n", summary.Expenses.Float())
	body += fmt.Sprintf("Savings:      %.2f\n", summary.Savings.Float())
	body += fmt.Sprintf("Savings rate: %.1f%%\n", summary.SavingsRate)

	if len(summary.ByCategory) > 0 {
		body += "\nTop spending categories:\n"
		top := summary.ByCategory
		if len(top) > 5 {
			top = top[:5]
		}
		for _, c := range top {
			body += fmt.Sprintf("- %-20s %.2f (%d transactions)\n", c.Category, c.Total.Float(), c.Count)
		}
	}

	if len(trend) > 1 {
		body += "\nRecent months:\n"
		for _, p := range trend {
			body += fmt.Sprintf("- %s: income %.2f, expenses %.2f\n", p.MonthKey, p.Income.Float(), p.Expenses.Float())
		}
	}

	body += "\nBest regards,\nfintrack"
	return body
}
