package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/ai"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/secrets"
	"fintrack/internal/storage"
)

// completionClient is the slice of ai.Client the service needs.
type completionClient interface {
	Generate(ctx context.Context, keys map[string]string, cacheKey, prompt string) (ai.Completion, error)
}

// InsightService turns a user's monthly aggregates into stored insights:
// aggregate, build the prompt, run the provider chain, parse, persist.
type InsightService struct {
	storage *storage.SQLiteRepository
	budget  *BudgetService
	client  completionClient
	cipher  *secrets.Cipher
	logger  *log.Logger
}

func NewInsightService(st *storage.SQLiteRepository, budget *BudgetService, client *ai.Client, cipher *secrets.Cipher, logger *log.Logger) *InsightService {
	return &InsightService{
		storage: st,
		budget:  budget,
		client:  client,
		cipher:  cipher,
		logger:  logger.WithComponent(log.ComponentAI),
	}
}

// GenerateForUser runs one full insight pass for a user and returns the
// stored insights.
func (s *InsightService) GenerateForUser(ctx context.Context, userID int64) ([]core.Insight, error) {
	keys, err := s.decryptedKeys(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, ai.ErrNoCredentials
	}

	now := time.Now().UTC()
	summary, err := s.budget.Summary(ctx, userID, now.Year(), int(now.Month()))
	if err != nil {
		return nil, fmt.Errorf("aggregate budget: %w", err)
	}
	netWorth, err := s.budget.NetWorth(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("aggregate net worth: %w", err)
	}

	prompt := buildPrompt(summary, netWorth)
	completion, err := s.client.Generate(ctx, keys, fmt.Sprintf("user:%d:%s", userID, summaryKey(summary)), prompt)
	if err != nil {
		return nil, fmt.Errorf("generate insights: %w", err)
	}

	if err := s.storage.MarkCredentialUsed(ctx, userID, completion.Provider); err != nil {
		s.logger.WarnContext(ctx, "Failed to stamp credential",
			log.FieldUserID, userID,
			log.FieldProvider, completion.Provider,
			log.FieldError, err.Error())
	}

	parsed := ai.ParseInsights(completion.Text)
	generatedAt := time.Now().UTC()
	out := make([]core.Insight, 0, len(parsed))
	for _, p := range parsed {
		in := core.Insight{
			UserID:      userID,
			Provider:    completion.Provider,
			Title:       p.Title,
			Body:        p.Body,
			GeneratedAt: generatedAt,
		}
		id, err := s.storage.CreateInsight(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("store insight: %w", err)
		}
		in.ID = id
		out = append(out, in)
	}

	s.logger.InfoContext(ctx, "Generated insights",
		log.FieldUserID, userID,
		log.FieldProvider, completion.Provider,
		"count", len(out))

	return out, nil
}

// decryptedKeys loads and decrypts every credential the user holds.
// Undecryptable records are skipped rather than failing the run.
func (s *InsightService) decryptedKeys(ctx context.Context, userID int64) (map[string]string, error) {
	creds, err := s.storage.ListCredentials(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	keys := make(map[string]string, len(creds))
	for _, c := range creds {
		key, err := s.cipher.Decrypt(c.Ciphertext)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping undecryptable credential",
				log.FieldUserID, userID,
				log.FieldProvider, c.Provider)
			continue
		}
		keys[c.Provider] = key
	}
	return keys, nil
}

func summaryKey(s core.BudgetSummary) string {
	return fmt.Sprintf("%04d-%02d:%d:%d", s.Year, s.Month, s.Income.Cents, s.Expenses.Cents)
}

func buildPrompt(summary core.BudgetSummary, netWorth core.NetWorthBreakdown) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a personal finance assistant. Analyze this month (%04d-%02d):\n", summary.Year, summary.Month)
	fmt.Fprintf(&b, "Income: %.2f\nExpenses: %.2f\nSavings rate: %.1f%%\n", summary.Income.Float(), summary.Expenses.Float(), summary.SavingsRate)
	fmt.Fprintf(&b, "Net worth: %.2f (assets %.2f, liabilities %.2f)\n", netWorth.Total.Float(), netWorth.Assets.Float(), netWorth.Liabilities.Float())

	if len(summary.ByCategory) > 0 {
		b.WriteString("Spending by category:\n")
		for _, c := range summary.ByCategory {
			fmt.Fprintf(&b, "- %s: %.2f over %d transactions\n", c.Category, c.Total.Float(), c.Count)
		}
	}

	b.WriteString("\nRespond with a JSON array of objects with \"title\" and \"body\" fields, ")
	b.WriteString("each a concrete, actionable observation. No text outside the JSON array.")
	return b.String()
}
