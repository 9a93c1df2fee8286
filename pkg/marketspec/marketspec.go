package marketspec

import (
	"fmt"
	"sort"
	"strings"
)

// Market 表示交易客户端绑定的海外交易所。
type Market string

const (
	Nasdaq    Market = "nasdaq"
	NYSE      Market = "nyse"
	Amex      Market = "amex"
	HongKong  Market = "hongkong"
	Shanghai  Market = "shanghai"
	Shenzhen  Market = "shenzhen"
	Tokyo     Market = "tokyo"
	Hanoi     Market = "hanoi"
	HoChiMinh Market = "hochiminh"
)

// ParseMarket 解析市场名。
// 支持：规范名 / 券商交易所代码（NAS、NASD 等）/ 券商文档里的韩文名
func ParseMarket(v string) (Market, error) {
	s := strings.ToLower(strings.TrimSpace(v))
	switch s {
	case "nasdaq", "nas", "nasd", "나스닥":
		return Nasdaq, nil
	case "nyse", "nys", "newyork", "new-york", "뉴욕":
		return NYSE, nil
	case "amex", "ams", "아멕스":
		return Amex, nil
	case "hongkong", "hong-kong", "hks", "sehk", "홍콩":
		return HongKong, nil
	case "shanghai", "shs", "shaa", "상해":
		return Shanghai, nil
	case "shenzhen", "szs", "szaa", "심천":
		return Shenzhen, nil
	case "tokyo", "tse", "tkse", "도쿄":
		return Tokyo, nil
	case "hanoi", "hnx", "hase", "하노이":
		return Hanoi, nil
	case "hochiminh", "ho-chi-minh", "hsx", "vnse", "호치민":
		return HoChiMinh, nil
	default:
		return "", fmt.Errorf("不支持的 market: %q", v)
	}
}

func (m Market) String() string { return string(m) }

// Spec 是某个市场组装请求时用到的券商代码。
// 实盘和模拟盘的 tr_id 不同；tr_id 为空表示该 host 不提供这个查询。
type Spec struct {
	QuoteExchange  string // EXCD on quotation endpoints
	OrderExchange  string // OVRS_EXCG_CD on trading endpoints
	Currency       string // 结算币种
	BuyTrID        string
	SellTrID       string
	ReviseTrID     string // 改单和撤单共用
	BalanceTrID    string // inquire-present-balance
	OpenOrdersTrID string // inquire-nccs; empty on the paper host
}

// Table 是 market -> Spec 的只读映射。
// 用 NewTable / DefaultTable / PaperTable 创建；零值为空表。
type Table struct {
	specs map[Market]Spec
}

// NewTable 拷贝一份输入，调用方之后修改 map 不影响表。
func NewTable(specs map[Market]Spec) Table {
	cp := make(map[Market]Spec, len(specs))
	for k, v := range specs {
		cp[k] = v
	}
	return Table{specs: cp}
}

// venue 是 Spec 中与 host 无关的部分，外加两套 tr_id。
type venue struct {
	market       Market
	quote, order string
	currency     string
	buy, sell    string // 实盘
	revise       string
	paperBuy     string // 模拟盘
	paperSell    string
	paperRevise  string
}

// 代码取自券商公布的海外股票下单/查询 API 文档。
// 越南两个交易所（河内、胡志明）共用一套代码；
// 模拟盘：美股是 VTTT 系列，其余市场是实盘代码首字母换成 V。
var venues = []venue{
	{Nasdaq, "NAS", "NASD", "USD", "JTTT1002U", "JTTT1006U", "JTTT1004U", "VTTT1002U", "VTTT1001U", "VTTT1004U"},
	{NYSE, "NYS", "NYSE", "USD", "JTTT1002U", "JTTT1006U", "JTTT1004U", "VTTT1002U", "VTTT1001U", "VTTT1004U"},
	{Amex, "AMS", "AMEX", "USD", "JTTT1002U", "JTTT1006U", "JTTT1004U", "VTTT1002U", "VTTT1001U", "VTTT1004U"},
	{HongKong, "HKS", "SEHK", "HKD", "TTTS1002U", "TTTS1001U", "TTTS1003U", "VTTS1002U", "VTTS1001U", "VTTS1003U"},
	{Shanghai, "SHS", "SHAA", "CNY", "TTTS0202U", "TTTS1005U", "TTTS0302U", "VTTS0202U", "VTTS1005U", "VTTS0302U"},
	{Shenzhen, "SZS", "SZAA", "CNY", "TTTS0305U", "TTTS0304U", "TTTS0306U", "VTTS0305U", "VTTS0304U", "VTTS0306U"},
	{Tokyo, "TSE", "TKSE", "JPY", "TTTS0308U", "TTTS0307U", "TTTS0309U", "VTTS0308U", "VTTS0307U", "VTTS0309U"},
	{Hanoi, "HNX", "HASE", "VND", "TTTS0311U", "TTTS0310U", "TTTS0312U", "VTTS0311U", "VTTS0310U", "VTTS0312U"},
	{HoChiMinh, "HSX", "VNSE", "VND", "TTTS0311U", "TTTS0310U", "TTTS0312U", "VTTS0311U", "VTTS0310U", "VTTS0312U"},
}

const (
	liveBalanceTrID    = "CTRP6504R"
	paperBalanceTrID   = "VTRP6504R"
	liveOpenOrdersTrID = "JTTT3018R"
)

// DefaultTable 返回实盘代码表。
func DefaultTable() Table {
	specs := make(map[Market]Spec, len(venues))
	for _, v := range venues {
		specs[v.market] = Spec{
			QuoteExchange:  v.quote,
			OrderExchange:  v.order,
			Currency:       v.currency,
			BuyTrID:        v.buy,
			SellTrID:       v.sell,
			ReviseTrID:     v.revise,
			BalanceTrID:    liveBalanceTrID,
			OpenOrdersTrID: liveOpenOrdersTrID,
		}
	}
	return Table{specs: specs}
}

// PaperTable 返回模拟盘代码表。
// 模拟盘没有未成交查询（inquire-nccs），所以 OpenOrdersTrID 留空。
func PaperTable() Table {
	specs := make(map[Market]Spec, len(venues))
	for _, v := range venues {
		specs[v.market] = Spec{
			QuoteExchange: v.quote,
			OrderExchange: v.order,
			Currency:      v.currency,
			BuyTrID:       v.paperBuy,
			SellTrID:      v.paperSell,
			ReviseTrID:    v.paperRevise,
			BalanceTrID:   paperBalanceTrID,
		}
	}
	return Table{specs: specs}
}

// Lookup 返回 m 的代码；表里没有时返回 false。
func (t Table) Lookup(m Market) (Spec, bool) {
	s, ok := t.specs[m]
	return s, ok
}

// Markets 按固定顺序列出表里的市场。
func (t Table) Markets() []Market {
	out := make([]Market, 0, len(t.specs))
	for m := range t.specs {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
