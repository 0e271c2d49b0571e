package constants

// 持久化键常量（每个会话两条独立记录）
const (
	StorageKeyCart = "cart"
	StorageKeyAuth = "auth"
)

// 存储驱动常量
const (
	StorageDriverMemory   = "memory"
	StorageDriverRedis    = "redis"
	StorageDriverDatabase = "database"
)

// 换镜片模式常量
const (
	LensChangeModeReset   = "reset"
	LensChangeModeInPlace = "in_place"
)

// 结算流程状态常量
const (
	CheckoutPhaseViewing      = "viewing"
	CheckoutPhaseAddressEntry = "address_entry"
	CheckoutPhaseSubmitting   = "submitting"
	CheckoutPhaseSuccess      = "success"
	CheckoutPhaseFailed       = "failed"
)

// 默认值常量
const (
	DefaultCountry      = "India"
	DefaultCurrency     = "INR"
	DefaultSessionTTL   = 30 * 24 * 60 * 60
	SessionCookieName   = "dj_storefront_sid"
	SessionContextKey   = "session_id"
	AuthTokenHeader     = "x-auth-token"
	PrescriptionFormKey = "prescription"
	UploadFormField     = "image"
)

// 面向用户的提示文案
const (
	MsgCouponCodeRequired = "Please enter a coupon code"
	MsgCouponInvalid      = "Invalid coupon code"
	MsgCouponFailed       = "Failed to validate coupon"
	MsgOrderFailed        = "Failed to create order in backend"
	MsgSomethingWrong     = "Something went wrong. Please try again."
	MsgInvalidCredentials = "Invalid credentials"
	MsgAddressIncomplete  = "Please fill in all required address fields"

	MsgRequestInvalid          = "Invalid request"
	MsgSessionUnavailable      = "Session unavailable, please refresh the page"
	MsgCartEmpty               = "Your cart is empty"
	MsgCartLineNotFound        = "Item is not in your cart"
	MsgCartSaveFailed          = "Failed to save cart"
	MsgProductNotFound         = "Product not found"
	MsgProductUnavailable      = "Product is out of stock"
	MsgLensNotFound            = "Lens option is not available"
	MsgLoginRequired           = "Please login to continue"
	MsgLoginFailed             = "Login failed. Please try again."
	MsgCredentialsRequired     = "Please enter email and password"
	MsgCouponValidating        = "Coupon is being validated"
	MsgCheckoutBusy            = "Your order is being placed"
	MsgCheckoutPhaseInvalid    = "This checkout step is not available"
	MsgPrescriptionTooLarge    = "Prescription file is too large"
	MsgPrescriptionTypeInvalid = "Prescription file type is not allowed"
	MsgBackendUnavailable      = "Service temporarily unavailable"
	MsgRateLimited             = "Too many requests, please retry in %d seconds"
)

// 队列与任务常量
const (
	QueueDefault      = "default"
	TaskSessionPurge  = "session:purge"
	TaskPurgeMaxRetry = 3
)
