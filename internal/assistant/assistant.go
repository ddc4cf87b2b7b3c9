package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bikurim/procurement-backend/internal/shoppinglists"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/gemini"
	"github.com/bikurim/procurement-backend/pkg/logger"
)

const (
	opScan       = "scan_delivery_note"
	opCommentary = "forecast_commentary"
	opEmail      = "supplier_email"

	msgNotConfigured = "AI service is not configured"
)

type generator interface {
	GenerateText(ctx context.Context, operation, prompt string) (string, error)
	GenerateFromImage(ctx context.Context, operation string, image gemini.InlineImage, prompt string) (string, error)
}

// cache is the slice of the redis client used for commentary.
type cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}

type orderReader interface {
	BySupplier(ctx context.Context, listID uuid.UUID) (*shoppinglists.BySupplierDTO, error)
}

// Service wraps the generative model behind domain-shaped operations.
type Service struct {
	gen    generator
	cache  cache
	orders orderReader
	ttl    time.Duration
	logg   *logger.Logger
	now    func() time.Time
}

type Options struct {
	CommentaryTTL time.Duration
}

// NewService accepts a nil generator; every AI call then fails with a
// dependency error. A nil cache disables commentary caching.
func NewService(gen generator, c cache, orders orderReader, opts Options, logg *logger.Logger) (*Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("shopping list service required")
	}
	ttl := opts.CommentaryTTL
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &Service{gen: gen, cache: c, orders: orders, ttl: ttl, logg: logg, now: time.Now}, nil
}

func (s *Service) ready() error {
	if s.gen == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, msgNotConfigured)
	}
	return nil
}

func trimmed(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
