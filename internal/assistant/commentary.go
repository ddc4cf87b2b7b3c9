package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/pkg/gemini"
)

const (
	defaultRisk  = "בינוני"
	defaultTrend = "יציב"
)

type CommentaryInput struct {
	ProductID             *uuid.UUID
	ProductName           string
	TotalStock            decimal.Decimal
	DailyAvgUsage         decimal.Decimal
	DaysUntilShortage     decimal.NullDecimal
	EstimatedShortageDate *string
	HasSufficientHistory  bool
}

type Commentary struct {
	Risk           string `json:"risk"`
	Trend          string `json:"trend"`
	Explanation    string `json:"explanation"`
	Recommendation string `json:"recommendation"`
}

// ForecastCommentary asks the model for a short risk assessment. Answers are
// cached per product, stock and usage.
func (s *Service) ForecastCommentary(ctx context.Context, in CommentaryInput) (*Commentary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	key := s.commentaryKey(in)
	if s.cache != nil {
		var cached Commentary
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.warn(ctx, "commentary cache read failed", err)
		} else if hit {
			return &cached, nil
		}
	}

	text, err := s.gen.GenerateText(ctx, opCommentary, commentaryText(in))
	if err != nil {
		return nil, err
	}

	out := &Commentary{Risk: defaultRisk, Trend: defaultTrend, Explanation: "לא ניתן לנתח."}
	if _, ok := gemini.ExtractJSON(text); ok {
		var parsed Commentary
		if err := gemini.DecodeJSON(text, &parsed); err != nil {
			return nil, err
		}
		out = &Commentary{
			Risk:           firstNonEmpty(parsed.Risk, defaultRisk),
			Trend:          firstNonEmpty(parsed.Trend, defaultTrend),
			Explanation:    strings.TrimSpace(parsed.Explanation),
			Recommendation: strings.TrimSpace(parsed.Recommendation),
		}
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, out, s.ttl); err != nil {
			s.warn(ctx, "commentary cache write failed", err)
		}
	}
	return out, nil
}

func (s *Service) commentaryKey(in CommentaryInput) string {
	product := strings.TrimSpace(in.ProductName)
	if in.ProductID != nil {
		product = in.ProductID.String()
	}
	parts := []string{"forecast-commentary", product, in.TotalStock.String(), in.DailyAvgUsage.String()}
	if s.cache == nil {
		return strings.Join(parts, ":")
	}
	return s.cache.CacheKey(parts...)
}

func commentaryText(in CommentaryInput) string {
	name := strings.TrimSpace(in.ProductName)
	if name == "" {
		name = "לא ידוע"
	}
	days := "—"
	if in.DaysUntilShortage.Valid {
		days = in.DaysUntilShortage.Decimal.String()
	}
	date := "—"
	if in.EstimatedShortageDate != nil && *in.EstimatedShortageDate != "" {
		date = *in.EstimatedShortageDate
	}
	history := "לא"
	if in.HasSufficientHistory {
		history = "כן"
	}
	return fmt.Sprintf(`מוצר: %s
מלאי נוכחי (סה"כ): %s
שימוש יומי ממוצע: %s
ימים עד חוסר (חישוב): %s
תאריך משוער לחוסר: %s
היסטוריה מספקת: %s

%s`, name, in.TotalStock.String(), in.DailyAvgUsage.String(), days, date, history, commentaryPrompt)
}

func firstNonEmpty(v, fallback string) string {
	if t := strings.TrimSpace(v); t != "" {
		return t
	}
	return fallback
}

func (s *Service) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}
