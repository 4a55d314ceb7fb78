package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeChannel(t *testing.T) {
	tests := []struct {
		input    string
		expected Channel
	}{
		{"PedidosYa", ChannelPeya},
		{"  pedidos   ya ", ChannelPeya},
		{"PEYA", ChannelPeya},
		{"Rappi", ChannelRappi},
		{"rappi pay", ChannelRappi},
		{"Mercado Pago", ChannelMercadoPago},
		{"MERCADOPAGO QR", ChannelMercadoPago},
		{"Local", ChannelLocal},
		{"efectivo", ChannelLocal},
		{"Tarjeta", ChannelLocal},
		{"transferencia", ChannelLocal},

		// Unmatched names never default to LOCAL
		{"", ChannelUnknown},
		{"   ", ChannelUnknown},
		{"UberEats", ChannelUnknown},
		{"crypto", ChannelUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeChannel(tt.input))
		})
	}
}

func TestIngredientIsLowStock(t *testing.T) {
	assert.True(t, Ingredient{Stock: 0, MinStock: 0}.IsLowStock())
	assert.True(t, Ingredient{Stock: -1}.IsLowStock())
	assert.True(t, Ingredient{Stock: 1, MinStock: 2}.IsLowStock())
	assert.False(t, Ingredient{Stock: 2, MinStock: 2}.IsLowStock())
}

func TestSaleItemValidate(t *testing.T) {
	assert.NoError(t, SaleItem{Quantity: 1, UnitPrice: 0}.Validate())
	assert.Error(t, SaleItem{Quantity: 0, UnitPrice: 10}.Validate())
	assert.Error(t, SaleItem{Quantity: 1, UnitPrice: -1}.Validate())
	assert.Error(t, RecipeItem{Quantity: 0}.Validate())
}
