package constants

// Page paths the storefront navigates between.
const (
	PathHome     = "/"
	PathLogin    = "/login"
	PathRegister = "/register"
	PathCart     = "/carrito"
	PathProfile  = "/usuario"
	PathProduct  = "/product"
)

// Keys persisted in the token store.
const (
	StoreKeyToken    = "token"
	StoreKeyUserID   = "user_id"
	StoreKeyUserType = "user_type"
)

const (
	UserTypeSeller = "vendedor"
	UserTypeBuyer  = "comprador"
)
