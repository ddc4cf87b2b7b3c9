package receiving

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bikurim/procurement-backend/pkg/enums"
)

func ln(id uuid.UUID, name, qty string) Line {
	return Line{ProductID: id, ProductName: name, Quantity: decimal.RequireFromString(qty), Unit: "יח'"}
}

func TestDiffShortAndExtra(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	got := Diff(
		[]Line{ln(a, "A", "10"), ln(b, "B", "5")},
		[]Line{ln(a, "A", "8"), ln(c, "C", "3")},
	)

	require.Len(t, got, 3)
	want := []struct {
		id       uuid.UUID
		kind     enums.DiscrepancyType
		ordered  string
		received string
	}{
		{a, enums.DiscrepancyShort, "10", "8"},
		{b, enums.DiscrepancyShort, "5", "0"},
		{c, enums.DiscrepancyExtra, "0", "3"},
	}
	for i, w := range want {
		require.Equal(t, w.id, got[i].ProductID)
		require.Equal(t, w.kind, got[i].Type)
		require.True(t, got[i].Ordered.Equal(decimal.RequireFromString(w.ordered)), "ordered %s", got[i].Ordered)
		require.True(t, got[i].Received.Equal(decimal.RequireFromString(w.received)), "received %s", got[i].Received)
	}
}

func TestDiffExactMatchIsEmpty(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	got := Diff(
		[]Line{ln(a, "A", "10"), ln(b, "B", "2.5")},
		[]Line{ln(b, "B", "2.500"), ln(a, "A", "4"), ln(a, "A", "6")},
	)
	require.Empty(t, got)
}

func TestDiffOver(t *testing.T) {
	a := uuid.New()
	got := Diff([]Line{ln(a, "A", "3")}, []Line{ln(a, "A", "4")})
	require.Len(t, got, 1)
	require.Equal(t, enums.DiscrepancyOver, got[0].Type)
}

func TestDiffNothingReceived(t *testing.T) {
	a := uuid.New()
	got := Diff([]Line{ln(a, "A", "3")}, nil)
	require.Len(t, got, 1)
	require.Equal(t, enums.DiscrepancyShort, got[0].Type)
	require.True(t, got[0].Received.IsZero())
}

func TestSumKeepsFirstSeenOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	got := Sum([]Line{ln(b, "B", "1"), ln(a, "A", "2"), ln(b, "B", "3")})
	require.Len(t, got, 2)
	require.Equal(t, b, got[0].ProductID)
	require.True(t, got[0].Quantity.Equal(decimal.NewFromInt(4)))
}
