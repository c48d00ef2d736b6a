package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestApproxZero(t *testing.T) {
	tests := []struct {
		name     string
		amount   decimal.Decimal
		expected bool
	}{
		{"exact zero", decimal.Zero, true},
		{"within tolerance positive", decimal.NewFromFloat(0.009), true},
		{"within tolerance negative", decimal.NewFromFloat(-0.009), true},
		{"at tolerance boundary", decimal.NewFromFloat(0.01), true},
		{"just past tolerance", decimal.NewFromFloat(0.011), false},
		{"clearly non-zero", decimal.NewFromInt(5), false},
		{"clearly negative", decimal.NewFromInt(-5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ApproxZero(tt.amount))
		})
	}
}
