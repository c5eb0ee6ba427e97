package errors

// General.
const (
	ErrInternalServer = "ERR_INTERNAL_SERVER"
	ErrInvalidParam   = "ERR_INVALID_PARAM"
	ErrUnauthorized   = "ERR_UNAUTHORIZED"
)

// Users.
const (
	ErrEmptyID            = "ERR_EMPTY_ID"
	ErrUserNotFound       = "ERR_USER_NOT_FOUND"
	ErrEmptyCredentials   = "ERR_EMPTY_CREDENTIALS"
	ErrInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrUserDisabled       = "ERR_USER_DISABLED"
	ErrEmailTaken         = "ERR_EMAIL_TAKEN"
	ErrUsernameTaken      = "ERR_USERNAME_TAKEN"
)

// Planner.
const (
	ErrComponentNotFound  = "ERR_COMPONENT_NOT_FOUND"
	ErrSlotNotFound       = "ERR_SLOT_NOT_FOUND"
	ErrNoServings         = "ERR_NO_SERVINGS"
	ErrStaleIndex         = "ERR_STALE_INDEX"
	ErrInvariantViolation = "ERR_INVARIANT_VIOLATION"
	ErrPlanConflict       = "ERR_PLAN_CONFLICT"
	ErrInvalidDate        = "ERR_INVALID_DATE"
)

// Favorites, shopping list and templates.
const (
	ErrFavoriteNotFound     = "ERR_FAVORITE_NOT_FOUND"
	ErrShoppingItemNotFound = "ERR_SHOPPING_ITEM_NOT_FOUND"
	ErrTemplateFormat       = "ERR_TEMPLATE_FORMAT"
)
