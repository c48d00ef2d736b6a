package promotion

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCampaign(t *testing.T) {
	tenantID := uuid.New()
	campaign, err := NewCampaign(tenantID, "weekend sale")
	require.NoError(t, err)
	assert.Equal(t, tenantID, campaign.TenantID)
	assert.Equal(t, "weekend sale", campaign.Name)
	assert.False(t, campaign.IsDefault)
}

func TestNewCampaign_EmptyName(t *testing.T) {
	_, err := NewCampaign(uuid.New(), "")
	assert.Error(t, err)
}

func TestCampaign_Validate(t *testing.T) {
	t.Run("valid full configuration", func(t *testing.T) {
		c := testCampaign()
		c.CartValueRule = percentRule("cart", 5)
		c.DefaultRules.LineValueRule = fixedRule("line", 10)
		c.ProductOverrides = ProductOverrideList{{
			ProductID:                    uuid.New(),
			IsActiveForProductInCampaign: true,
			LineValueRule:                percentRule("override", 15),
		}}
		c.BuyGetRules = BuyGetRuleList{{
			Name:            "bogo",
			IsEnabled:       true,
			SourceProductID: uuid.New(),
			TargetProductID: uuid.New(),
			BuyQuantity:     dec(2),
			GetQuantity:     dec(1),
			DiscountType:    RuleTypePercentage,
			DiscountValue:   dec(100),
		}}
		assert.NoError(t, c.Validate())
	})

	t.Run("percentage over 100 rejected", func(t *testing.T) {
		c := testCampaign()
		c.DefaultRules.LineValueRule = percentRule("bad", 120)
		assert.Error(t, c.Validate())
	})

	t.Run("disabled rules skip validation", func(t *testing.T) {
		c := testCampaign()
		bad := percentRule("bad", 120)
		bad.IsEnabled = false
		c.DefaultRules.LineValueRule = bad
		assert.NoError(t, c.Validate())
	})

	t.Run("override without product id rejected", func(t *testing.T) {
		c := testCampaign()
		c.ProductOverrides = ProductOverrideList{{
			IsActiveForProductInCampaign: true,
			LineValueRule:                percentRule("x", 5),
		}}
		assert.Error(t, c.Validate())
	})

	t.Run("buy get without quantities rejected", func(t *testing.T) {
		c := testCampaign()
		c.BuyGetRules = BuyGetRuleList{{
			Name:            "broken",
			IsEnabled:       true,
			SourceProductID: uuid.New(),
			TargetProductID: uuid.New(),
			DiscountType:    RuleTypeFixed,
			DiscountValue:   dec(5),
		}}
		assert.Error(t, c.Validate())
	})
}

func TestCampaign_OverrideFor(t *testing.T) {
	productID := uuid.New()
	c := testCampaign()
	c.ProductOverrides = ProductOverrideList{
		{ProductID: productID, IsActiveForProductInCampaign: false},
	}

	// An inactive override falls through to the defaults
	assert.Nil(t, c.OverrideFor(productID))

	c.ProductOverrides[0].IsActiveForProductInCampaign = true
	require.NotNil(t, c.OverrideFor(productID))
	assert.Nil(t, c.OverrideFor(uuid.New()))
}

func TestCampaign_DefaultFlag(t *testing.T) {
	c := testCampaign()
	c.MarkDefault()
	assert.True(t, c.IsDefault)
	c.ClearDefault()
	assert.False(t, c.IsDefault)
}

func TestRuleConfig_Matches(t *testing.T) {
	minV, maxV := dec(10), dec(20)

	t.Run("disabled never matches", func(t *testing.T) {
		r := RuleConfig{IsEnabled: false, Type: RuleTypePercentage, Value: dec(5)}
		assert.False(t, r.Matches(dec(15)))
	})

	t.Run("no bounds always matches", func(t *testing.T) {
		r := *percentRule("open", 5)
		assert.True(t, r.Matches(dec(0)))
		assert.True(t, r.Matches(dec(99999)))
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		r := *percentRule("band", 5)
		r.ConditionMin, r.ConditionMax = &minV, &maxV
		assert.True(t, r.Matches(dec(10)))
		assert.True(t, r.Matches(dec(20)))
		assert.False(t, r.Matches(dec(9.99)))
		assert.False(t, r.Matches(dec(20.01)))
	})
}

func TestBuyGetRuleList_ScanResetsReusedDestination(t *testing.T) {
	var l BuyGetRuleList
	require.NoError(t, l.Scan([]byte(`[{"name":"first"},{"name":"second"}]`)))
	require.Len(t, l, 2)

	require.NoError(t, l.Scan([]byte(`[{"name":"only"}]`)))
	require.Len(t, l, 1)
	assert.Equal(t, "only", l[0].Name)

	require.NoError(t, l.Scan(nil))
	assert.Empty(t, l)

	require.NoError(t, l.Scan([]byte("not json")))
	assert.Empty(t, l)
}
