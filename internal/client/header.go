package client

const (
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-Id"

	HeaderValueJSON = "application/json"
	HeaderValueForm = "application/x-www-form-urlencoded"
	BearerPrefix    = "Bearer "
)
