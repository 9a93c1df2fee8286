package marketspec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarket(t *testing.T) {
	tests := []struct {
		in   string
		want Market
	}{
		{"nasdaq", Nasdaq},
		{" NASD ", Nasdaq},
		{"나스닥", Nasdaq},
		{"NYS", NYSE},
		{"아멕스", Amex},
		{"SEHK", HongKong},
		{"상해", Shanghai},
		{"szaa", Shenzhen},
		{"TSE", Tokyo},
		{"하노이", Hanoi},
		{"VNSE", HoChiMinh},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMarket(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseMarket("서울")
	assert.Error(t, err)
}

func TestDefaultTable_CoversEveryMarket(t *testing.T) {
	table := DefaultTable()
	for _, m := range []Market{Nasdaq, NYSE, Amex, HongKong, Shanghai, Shenzhen, Tokyo, Hanoi, HoChiMinh} {
		spec, ok := table.Lookup(m)
		require.True(t, ok, "missing %s", m)
		assert.NotEmpty(t, spec.QuoteExchange)
		assert.NotEmpty(t, spec.OrderExchange)
		assert.NotEmpty(t, spec.Currency)
		assert.NotEqual(t, spec.BuyTrID, spec.SellTrID, "buy and sell codes must differ for %s", m)
		assert.NotEmpty(t, spec.ReviseTrID)
	}
	assert.Len(t, table.Markets(), 9)
}

func TestDefaultTable_USCodes(t *testing.T) {
	spec, ok := DefaultTable().Lookup(Amex)
	require.True(t, ok)
	assert.Equal(t, "AMS", spec.QuoteExchange)
	assert.Equal(t, "AMEX", spec.OrderExchange)
	assert.Equal(t, "USD", spec.Currency)
	assert.Equal(t, "JTTT1002U", spec.BuyTrID)
	assert.Equal(t, "JTTT1006U", spec.SellTrID)
	assert.Equal(t, "JTTT1004U", spec.ReviseTrID)
}

func TestNewTable_CopiesInput(t *testing.T) {
	src := map[Market]Spec{Nasdaq: {QuoteExchange: "NAS"}}
	table := NewTable(src)
	src[Nasdaq] = Spec{QuoteExchange: "changed"}
	delete(src, Nasdaq)

	spec, ok := table.Lookup(Nasdaq)
	require.True(t, ok)
	assert.Equal(t, "NAS", spec.QuoteExchange)

	_, ok = Table{}.Lookup(Nasdaq)
	assert.False(t, ok)
}

func TestPaperTable(t *testing.T) {
	live, paper := DefaultTable(), PaperTable()
	assert.ElementsMatch(t, live.Markets(), paper.Markets())

	for _, m := range paper.Markets() {
		p, _ := paper.Lookup(m)
		l, _ := live.Lookup(m)
		assert.Equal(t, l.QuoteExchange, p.QuoteExchange)
		assert.Equal(t, l.OrderExchange, p.OrderExchange)
		assert.NotEqual(t, p.BuyTrID, p.SellTrID, "buy and sell codes must differ for %s", m)
		for _, id := range []string{p.BuyTrID, p.SellTrID, p.ReviseTrID, p.BalanceTrID} {
			assert.True(t, strings.HasPrefix(id, "V"), "%s: %s is not a paper code", m, id)
		}
		assert.Equal(t, "VTRP6504R", p.BalanceTrID)
		assert.Empty(t, p.OpenOrdersTrID, "no open-order inquiry on the paper host")
	}

	us, _ := paper.Lookup(NYSE)
	assert.Equal(t, "VTTT1002U", us.BuyTrID)
	assert.Equal(t, "VTTT1001U", us.SellTrID)
	assert.Equal(t, "VTTT1004U", us.ReviseTrID)

	hk, _ := paper.Lookup(HongKong)
	liveHK, _ := live.Lookup(HongKong)
	assert.Equal(t, "V"+liveHK.BuyTrID[1:], hk.BuyTrID)
}

func TestDefaultTable_InquiryCodes(t *testing.T) {
	for _, m := range DefaultTable().Markets() {
		spec, _ := DefaultTable().Lookup(m)
		assert.Equal(t, "CTRP6504R", spec.BalanceTrID)
		assert.Equal(t, "JTTT3018R", spec.OpenOrdersTrID)
	}
}
