package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bikurim/procurement-backend/internal/shoppinglists"
	"github.com/bikurim/procurement-backend/pkg/gemini"
)

type EmailDraft struct {
	SupplierID   uuid.UUID       `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	Subject      string          `json:"subject"`
	Body         string          `json:"body"`
	ItemCount    int             `json:"item_count"`
	Total        decimal.Decimal `json:"total"`
}

// SupplierEmails drafts one order email per supplier on the list. Lines with
// no supplier are left out.
func (s *Service) SupplierEmails(ctx context.Context, listID uuid.UUID) ([]EmailDraft, error) {
	view, err := s.orders.BySupplier(ctx, listID)
	if err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	drafts := []EmailDraft{}
	for _, group := range view.BySupplier {
		if group.SupplierID == nil {
			continue
		}
		text, err := s.gen.GenerateText(ctx, opEmail, emailText(view, group))
		if err != nil {
			return nil, err
		}
		var parsed struct {
			Subject string `json:"subject"`
			Body    string `json:"body"`
		}
		if err := gemini.DecodeJSON(text, &parsed); err != nil {
			return nil, err
		}
		drafts = append(drafts, EmailDraft{
			SupplierID:   *group.SupplierID,
			SupplierName: group.SupplierName,
			Subject:      firstNonEmpty(parsed.Subject, fmt.Sprintf("הזמנה #%d", view.OrderNumber)),
			Body:         strings.TrimSpace(parsed.Body),
			ItemCount:    len(group.Items),
			Total:        group.Total,
		})
	}
	return drafts, nil
}

func emailText(view *shoppinglists.BySupplierDTO, group shoppinglists.SupplierGroup) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ספק: %s\n", group.SupplierName)
	fmt.Fprintf(&b, "הזמנה #%d (%s) לתאריך %s\n", view.OrderNumber, view.Name, view.ListDate.String())
	b.WriteString("פריטים:\n")
	for _, item := range group.Items {
		fmt.Fprintf(&b, "- %s: %s %s\n", item.ProductName, item.Quantity.String(), item.Unit)
	}
	b.WriteString("\n")
	b.WriteString(emailPrompt)
	return b.String()
}
