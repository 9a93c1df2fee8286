package types

// Broker endpoint paths, relative to the API host.
const (
	EndpointToken   = "oauth2/tokenP"
	EndpointHashKey = "uapi/hashkey"

	EndpointQuote       = "uapi/overseas-price/v1/quotations/price"
	EndpointBalance     = "uapi/overseas-stock/v1/trading/inquire-present-balance"
	EndpointOpenOrders  = "uapi/overseas-stock/v1/trading/inquire-nccs"
	EndpointOrder       = "uapi/overseas-stock/v1/trading/order"
	EndpointReviseOrder = "uapi/overseas-stock/v1/trading/order-rvsecncl"
)

const (
	HostLive  = "https://openapi.koreainvestment.com:9443"
	HostPaper = "https://openapivts.koreainvestment.com:29443"
)
