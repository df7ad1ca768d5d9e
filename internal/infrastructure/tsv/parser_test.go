package tsv

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inventoryBody = "sku\tasin\tafn-listing-exists\tafn-fulfillable-quantity\tafn-unsellable-quantity\n" +
	"SKU-1\tB001\tYes\t10\t2\n" +
	"\t\t\t\t\n" +
	"SKU-2\tB002\tYes\t3\n"

func TestNewPayload(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		_, err := NewPayload([]byte("  \n"))
		assert.ErrorIs(t, err, ErrEmptyPayload)
	})

	t.Run("strips BOM", func(t *testing.T) {
		p, err := NewPayload(append([]byte{0xEF, 0xBB, 0xBF}, []byte("sku\tqty\nA\t1\n")...))
		require.NoError(t, err)
		assert.Equal(t, []string{"sku", "qty"}, p.Header())
	})

	t.Run("custom delimiter", func(t *testing.T) {
		p, err := NewPayload([]byte("sku,qty\nA,1\n"), WithDelimiter(','))
		require.NoError(t, err)
		rows, err := p.All()
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "A", rows[0].Get("sku"))
	})
}

func TestPayload_Each(t *testing.T) {
	p, err := NewPayload([]byte(inventoryBody))
	require.NoError(t, err)

	rows, err := p.All()
	require.NoError(t, err)
	require.Len(t, rows, 2, "blank lines are skipped")

	assert.Equal(t, "SKU-1", rows[0].Get(ColSKU))
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "", rows[1].Get(ColUnsellableQuantity), "short rows pad missing columns")
	assert.Equal(t, "", rows[1].Get("not-a-column"))
	assert.False(t, rows[1].Has("not-a-column"))
}

func TestPayload_RereadYieldsSameRows(t *testing.T) {
	p, err := NewPayload([]byte(inventoryBody))
	require.NoError(t, err)

	first, err := p.All()
	require.NoError(t, err)
	second, err := p.All()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPayload_QuotesStayInsideOneField(t *testing.T) {
	body := "order-id\tproduct-name\tsku\tquantity-purchased\n" +
		"111\t\"Big\" box, red\tSKU-A\t1\n" +
		"222\tPlain\tSKU-B\t2\n" +
		"333\t\"unterminated\tSKU-C\t3\r\n" +
		"444\t\"say \"\"hi\"\"\"\tSKU-D\t4\n"
	p, err := NewPayload([]byte(body))
	require.NoError(t, err)

	rows, err := p.All()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Big box, red", rows[0].Get("product-name"))
	assert.Equal(t, "SKU-A", rows[0].Get("sku"))
	assert.Equal(t, "222", rows[1].Get("order-id"))
	assert.Equal(t, "SKU-B", rows[1].Get("sku"))
	assert.Equal(t, "unterminated", rows[2].Get("product-name"))
	assert.Equal(t, "3", rows[2].Get("quantity-purchased"))
	assert.Equal(t, `say "hi"`, rows[3].Get("product-name"))
	assert.Equal(t, 5, rows[3].Line)
}

func TestPayload_QuotesKeptWhenUnquoteOff(t *testing.T) {
	p, err := NewPayload([]byte("name\tsku\n\"Big\" box\tA\n"), WithUnquote(false))
	require.NoError(t, err)
	rows, err := p.All()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, `"Big" box`, rows[0].Get("name"))
}

func TestPayload_EachStopsOnError(t *testing.T) {
	p, err := NewPayload([]byte(inventoryBody))
	require.NoError(t, err)

	stop := errors.New("stop")
	calls := 0
	err = p.Each(func(Row) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestRow_Accessors(t *testing.T) {
	row := NewRow(map[string]string{
		ColSKU:                 "",
		ColSellerSKU:           "S-1",
		ColFulfillableQuantity: "7",
		ColQuantity:            "abc",
		ColListingExists:       "Yes",
	})

	assert.Equal(t, "S-1", row.FirstOf(ColSKU, ColSellerSKU))
	assert.True(t, row.Bool(ColListingExists))
	assert.False(t, row.Bool(ColReservedQuantity))

	qty, err := row.Decimal(ColFulfillableQuantity)
	require.NoError(t, err)
	assert.True(t, qty.Equal(decimal.NewFromInt(7)))

	_, err = row.Decimal(ColQuantity)
	assert.Error(t, err)
	assert.True(t, row.DecimalOrZero(ColQuantity).IsZero())
	assert.True(t, row.DecimalOrZero(ColReservedQuantity).IsZero())
}

func TestDecodeText(t *testing.T) {
	utf, err := DecodeText([]byte("Müller"))
	require.NoError(t, err)
	assert.Equal(t, "Müller", string(utf))

	latin, err := DecodeText([]byte{'M', 0xFC, 'l', 'l', 'e', 'r'})
	require.NoError(t, err)
	assert.Equal(t, "Müller", string(latin))
}

func TestEncode(t *testing.T) {
	rows := []Row{
		NewRow(map[string]string{ColSKU: "A", ColQuantity: "-3"}),
		NewRow(map[string]string{ColSKU: "B"}),
	}
	out, err := Encode([]string{ColSKU, ColQuantity}, rows)
	require.NoError(t, err)
	assert.Equal(t, "sku\tquantity\nA\t-3\nB\t\n", string(out))

	p, err := NewPayload(out)
	require.NoError(t, err)
	parsed, err := p.All()
	require.NoError(t, err)
	assert.Len(t, parsed, 2)
}
