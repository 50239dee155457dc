package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// View State Errors (E100-E109)
	// ============================================

	"E100": {
		Category: CategoryState,
		Message:  "Malformed view state",
		Detail:   "The encoded view state could not be percent-decoded or parsed as a JSON object.",
	},
	"E101": {
		Category: CategoryState,
		Message:  "View state not serializable",
		Detail:   "A value in the extracted view state has no JSON representation. Only strings, numbers, booleans, null, lists and string-keyed maps are allowed.",
	},
	"E102": {
		Category: CategoryState,
		Message:  "Invalid application state",
		Detail:   "The input could not be parsed as an application state JSON object.",
	},

	// ============================================
	// Storage Errors (E110-E119)
	// ============================================

	"E110": {
		Category: CategoryStorage,
		Message:  "Store write failed",
		Detail:   "The persistent store rejected the view state write.",
	},
	"E111": {
		Category: CategoryStorage,
		Message:  "Store read failed",
		Detail:   "The persistent store could not be read.",
	},
	"E112": {
		Category: CategoryStorage,
		Message:  "Unknown store backend",
		Detail:   "Supported persistence backends are memory, bolt, sqlite and s3.",
	},

	// ============================================
	// Navigation Errors (E120-E129)
	// ============================================

	"E120": {
		Category: CategoryNavigation,
		Message:  "Navigation failed",
		Detail:   "The navigator returned an error while pushing or replacing a history entry.",
	},

	// ============================================
	// Config Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryConfig,
		Message:  "Failed to parse config",
		Detail:   "The configuration file is not valid JSON or YAML.",
	},
	"E141": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No scope.json, scope.yaml or scope.yml was found.",
	},
	"E142": {
		Category: CategoryConfig,
		Message:  "Invalid config",
		Detail:   "The configuration failed validation.",
	},

	// ============================================
	// Transport Errors (E160-E179)
	// ============================================

	"E160": {
		Category: CategoryTransport,
		Message:  "WebSocket protocol error",
		Detail:   "The client sent a message that is not a valid session message.",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
