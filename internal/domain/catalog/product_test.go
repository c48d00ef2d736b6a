package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func newTestProduct(t *testing.T) *Product {
	t.Helper()
	p, err := NewProduct(uuid.New(), "Basmati Rice", "RICE-01", dec(100), dec(70), false)
	require.NoError(t, err)
	return p
}

func TestNewProduct_Validation(t *testing.T) {
	_, err := NewProduct(uuid.New(), "", "X", dec(10), dec(5), false)
	assert.Error(t, err)
	_, err = NewProduct(uuid.New(), "X", "X", dec(-1), dec(5), false)
	assert.Error(t, err)
	_, err = NewProduct(uuid.New(), "X", "X", dec(10), dec(-5), false)
	assert.Error(t, err)
}

func TestProduct_EffectiveTaxRate(t *testing.T) {
	p := newTestProduct(t)
	global := dec(15)

	assert.True(t, p.EffectiveTaxRate(global).Equal(global))

	require.NoError(t, p.SetTaxRate(dec(8)))
	assert.True(t, p.EffectiveTaxRate(global).Equal(dec(8)))

	p.ClearTaxRate()
	assert.True(t, p.EffectiveTaxRate(global).Equal(global))
}

func TestProduct_SetTaxRate_Bounds(t *testing.T) {
	p := newTestProduct(t)
	assert.Error(t, p.SetTaxRate(dec(-1)))
	assert.Error(t, p.SetTaxRate(dec(101)))
	assert.NoError(t, p.SetTaxRate(decimal.Zero))
	assert.NoError(t, p.SetTaxRate(dec(100)))
}

func TestProduct_StockSumsBatches(t *testing.T) {
	p := newTestProduct(t)
	_, err := p.AddBatch("B-1", dec(30), dec(70), dec(100))
	require.NoError(t, err)
	_, err = p.AddBatch("B-2", dec(20), dec(72), dec(105))
	require.NoError(t, err)

	assert.True(t, p.Stock().Equal(dec(50)))
}

func TestProduct_ServiceCarriesNoStock(t *testing.T) {
	svc, err := NewProduct(uuid.New(), "Delivery", "SVC-01", dec(500), decimal.Zero, true)
	require.NoError(t, err)

	assert.True(t, svc.Stock().IsZero())
	_, err = svc.AddBatch("B-1", dec(10), decimal.Zero, dec(500))
	assert.Error(t, err)
}

func TestProduct_GetBatch(t *testing.T) {
	p := newTestProduct(t)
	batch, err := p.AddBatch("B-1", dec(30), dec(70), dec(100))
	require.NoError(t, err)

	found := p.GetBatch(batch.ID)
	require.NotNil(t, found)
	assert.Equal(t, "B-1", found.BatchNumber)
	assert.Nil(t, p.GetBatch(uuid.New()))
}

func TestUnitDefinition_ConversionTo(t *testing.T) {
	units := UnitDefinition{
		BaseUnit: "piece",
		DerivedUnits: []DerivedUnit{
			{Name: "box", ConversionFactor: dec(24)},
		},
	}

	factor, err := units.ConversionTo("piece")
	require.NoError(t, err)
	assert.True(t, factor.Equal(dec(1)))

	factor, err = units.ConversionTo("")
	require.NoError(t, err)
	assert.True(t, factor.Equal(dec(1)))

	factor, err = units.ConversionTo("box")
	require.NoError(t, err)
	assert.True(t, factor.Equal(dec(24)))

	_, err = units.ConversionTo("pallet")
	assert.Error(t, err)
}

func TestUnitDefinition_ScanRepairsMalformedData(t *testing.T) {
	var u UnitDefinition
	require.NoError(t, u.Scan([]byte("not json")))
	assert.Equal(t, "unit", u.BaseUnit)

	require.NoError(t, u.Scan(nil))
	assert.Equal(t, "unit", u.BaseUnit)

	require.NoError(t, u.Scan([]byte(`{"baseUnit":"kg"}`)))
	assert.Equal(t, "kg", u.BaseUnit)

	require.NoError(t, u.Scan([]byte(`{}`)))
	assert.Equal(t, "unit", u.BaseUnit)
}
