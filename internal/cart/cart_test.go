package cart_test

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/online-shop/internal/cart"
)

func newItem(t *testing.T, name string, price string, qty int) cart.Item {
	t.Helper()
	return cart.Item{
		ProductID:   uuid.Must(uuid.NewV4()),
		ProductName: name,
		Price:       decimal.RequireFromString(price),
		Quantity:    qty,
	}
}

func TestCart_Add_MergesExistingLine(t *testing.T) {
	c := cart.New()
	item := newItem(t, "Keyboard", "10.00", 2)

	c.Add(item)
	item.Quantity = 3
	c.Add(item)

	items := c.Items()
	require.Len(t, items, 1)
	require.Equal(t, 5, items[0].Quantity)
	require.Equal(t, 5, c.Count())
}

func TestCart_Add_AppendsNewLineInOrder(t *testing.T) {
	c := cart.New()
	first := newItem(t, "Keyboard", "10.00", 1)
	second := newItem(t, "Mouse", "5.00", 1)

	c.Add(first)
	c.Add(second)

	items := c.Items()
	require.Len(t, items, 2)
	require.Equal(t, "Keyboard", items[0].ProductName)
	require.Equal(t, "Mouse", items[1].ProductName)
}

func TestCart_Update_OverwritesQuantity(t *testing.T) {
	c := cart.New()
	item := newItem(t, "Keyboard", "10.00", 2)
	c.Add(item)

	c.Update(item.ProductID, 7)

	require.Equal(t, 7, c.Items()[0].Quantity)
}

func TestCart_Update_ZeroOrNegativeRemovesLine(t *testing.T) {
	c := cart.New()
	item := newItem(t, "Keyboard", "10.00", 2)
	c.Add(item)

	c.Update(item.ProductID, 0)

	require.True(t, c.IsEmpty())
}

func TestCart_Update_UnknownProductIsNoop(t *testing.T) {
	c := cart.New()
	c.Add(newItem(t, "Keyboard", "10.00", 2))

	c.Update(uuid.Must(uuid.NewV4()), 5)

	require.Equal(t, 2, c.Items()[0].Quantity)
}

func TestCart_Remove(t *testing.T) {
	c := cart.New()
	keep := newItem(t, "Keyboard", "10.00", 1)
	drop := newItem(t, "Mouse", "5.00", 1)
	c.Add(keep)
	c.Add(drop)

	c.Remove(drop.ProductID)

	items := c.Items()
	require.Len(t, items, 1)
	require.Equal(t, keep.ProductID, items[0].ProductID)
}

func TestCart_Total(t *testing.T) {
	c := cart.New()
	c.Add(newItem(t, "Keyboard", "10.00", 2))
	c.Add(newItem(t, "Mouse", "5.00", 1))

	require.True(t, c.Total().Equal(decimal.RequireFromString("25.00")),
		"expected total 25.00, got %s", c.Total())
}

func TestCart_Clear(t *testing.T) {
	c := cart.New()
	c.Add(newItem(t, "Keyboard", "10.00", 2))

	c.Clear()

	require.True(t, c.IsEmpty())
	require.True(t, c.Total().IsZero())
}

func TestCart_ItemsReturnsCopy(t *testing.T) {
	c := cart.New()
	c.Add(newItem(t, "Keyboard", "10.00", 2))

	items := c.Items()
	items[0].Quantity = 99

	require.Equal(t, 2, c.Items()[0].Quantity)
}
