package sales

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderHeader = []string{
	ColOrderID, ColOrderStatus, ColCourier, ColOrderTime, ColVariant, ColQuantity,
	ColPaidAmount, ColCreator, ColPaymentMethod, ColProductName, ColRoleHint,
}

func orderRow(id, status, courier, when, variant, qty, paid, creator, payment string) []string {
	return []string{id, status, courier, when, variant, qty, paid, creator, payment, "", ""}
}

func TestParseOrders(t *testing.T) {
	table := NewTable(orderHeader, [][]string{
		orderRow("1001.0", "สำเร็จ", "Flash", "2024-03-01 10:15:00", "ABC123-red-L", "2", "500", "admin01", "COD"),
		orderRow("1002", "ยกเลิก", "Flash", "2024-03-01 11:00:00", "ABC123-red", "1", "250", "", "COD"),
		orderRow("1003", "cancelled", "Flash", "2024-03-01 11:00:00", "ABC123-red", "1", "250", "", "COD"),
		orderRow("1004", "สำเร็จ", "Kerry", "not a date", "XYZ-1", "1", "100", "", "Transfer"),
		orderRow("1005", "", "Kerry", "02/03/2024", " XYZ -blue", "-3", "abc", "", "Transfer"),
	})

	lines, stats := ParseOrders(table, OrderOptions{})

	assert.Equal(t, IntakeStats{Total: 5, Cancelled: 2, InvalidDate: 1, Kept: 2}, stats)
	require.Len(t, lines, 2)

	first := lines[0]
	assert.Equal(t, "1001", first.OrderID)
	assert.Equal(t, "ABC123", first.SKU)
	assert.Equal(t, "ABC123-red-L", first.Variant)
	assert.Equal(t, 2.0, first.Quantity)
	assert.Equal(t, 500.0, first.PaidAmount)
	assert.Equal(t, CivilDate(2024, time.March, 1), first.OrderTime)

	second := lines[1]
	assert.Equal(t, "XYZ", second.SKU)
	assert.Equal(t, 0.0, second.Quantity)
	assert.Equal(t, 0.0, second.PaidAmount)
	assert.Equal(t, CivilDate(2024, time.March, 2), second.OrderTime)
}

func TestParseOrdersEmpty(t *testing.T) {
	lines, stats := ParseOrders(nil, OrderOptions{})
	assert.Empty(t, lines)
	assert.Equal(t, IntakeStats{}, stats)
}

func TestParseDate(t *testing.T) {
	bangkok := time.FixedZone("ICT", 7*60*60)

	tests := []struct {
		name  string
		input string
		loc   *time.Location
		want  time.Time
		ok    bool
	}{
		{"iso timestamp", "2024-03-01 10:00:00", nil, CivilDate(2024, time.March, 1), true},
		{"iso date", "2024-03-01", nil, CivilDate(2024, time.March, 1), true},
		{"day first slash", "01/03/2024", nil, CivilDate(2024, time.March, 1), true},
		{"buddhist era", "01/03/2567", nil, CivilDate(2024, time.March, 1), true},
		{"buddhist era leap day", "29/02/2567", nil, CivilDate(2024, time.February, 29), true},
		{"buddhist era leap day timestamp", "2567-02-29 10:00:00", nil, CivilDate(2024, time.February, 29), true},
		{"buddhist era non leap day", "29/02/2566", nil, time.Time{}, false},
		{"utc instant moved into local day", "2024-03-01T23:30:00Z", bangkok, CivilDate(2024, time.March, 2), true},
		{"garbage", "yesterday", nil, time.Time{}, false},
		{"blank", " ", nil, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input, nil, tt.loc)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractSKU(t *testing.T) {
	assert.Equal(t, "ABC123", ExtractSKU("ABC123-red-L"))
	assert.Equal(t, "ABC123", ExtractSKU(" ABC123 "))
	assert.Equal(t, UnknownSKU, ExtractSKU(""))
	assert.Equal(t, UnknownSKU, ExtractSKU("-red"))
}

func TestCleanOrderID(t *testing.T) {
	assert.Equal(t, "250301ABC", CleanOrderID("250301ABC"))
	assert.Equal(t, "12345", CleanOrderID("12345.0"))
	assert.Equal(t, "12345.05", CleanOrderID("12345.05"))
}
