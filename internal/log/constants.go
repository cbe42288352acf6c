package log

const (
	KeyAppName        = "app"
	KeyRequestID      = "requestId"
	KeyProcess        = "process"
	KeyEmail          = "email"
	KeyTag            = "tag"
	KeyRequestBody    = "requestBody"
	KeyRequestMethod  = "requestMethod"
	KeyRequestURL     = "requestURL"
	KeyResponseStatus = "responseStatus"
	KeyElapsed        = "elapsed"
	KeyConfig         = "config"
	KeyVariant        = "variant"
	KeyUserID         = "userId"
	KeyUserType       = "userType"
	KeyPolicy         = "policy"
	KeyCartItemID     = "cartItemId"
	KeyCartItems      = "cartItems"
	KeyCartTotal      = "cartTotal"
	KeyProductID      = "productId"
	KeyProducts       = "products"
	KeyUser           = "user"
	KeyStoreKey       = "storeKey"
	KeyStoreDriver    = "storeDriver"
	KeyPath           = "path"
	KeyFilename       = "filename"
	KeyField          = "field"
)
