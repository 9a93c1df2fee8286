package types

// Header names as the broker documents them.
const (
	HeaderContentType   = "content-type"
	HeaderAuthorization = "authorization"
	HeaderAppKey        = "appKey"
	HeaderAppSecret     = "appSecret"
	HeaderTrID          = "tr_id"
	HeaderHashKey       = "hashkey"
	HeaderUserAgent     = "User-Agent"

	ContentTypeJSON = "application/json"
	BearerPrefix    = "Bearer "
)
