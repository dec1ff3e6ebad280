package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://mvu.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (M001-M019)
	// ============================================

	"M001": {
		Category: CategoryRuntime,
		Message:  "Unknown command",
		Detail:   "The event id is not bound to any handler. The element was probably replaced by a later render before the event arrived.",
		DocURL:   docBase + "M001",
	},
	"M002": {
		Category: CategoryRuntime,
		Message:  "Document primitive failed",
		Detail:   "The document rejected a mutation. The cycle was aborted and the document no longer matches the committed view until it is resynced.",
		DocURL:   docBase + "M002",
	},
	"M003": {
		Category: CategoryRuntime,
		Message:  "Duplicate handler binding",
		Detail:   "Two different commands were bound under the same handler id.",
		DocURL:   docBase + "M003",
	},
	"M004": {
		Category: CategoryRuntime,
		Message:  "Malformed view tree",
		Detail:   "The view returned a tree the runtime cannot interpret: a nil node, an unknown kind, a duplicate attribute or a reserved attribute name.",
		DocURL:   docBase + "M004",
	},
	"M005": {
		Category: CategoryRuntime,
		Message:  "Application panicked",
		Detail:   "Update or View panicked. The state was not changed.",
		DocURL:   docBase + "M005",
	},
	"M006": {
		Category: CategoryRuntime,
		Message:  "Cycle already in flight",
		Detail:   "The instance uses the reject concurrency policy and another cycle was running.",
		DocURL:   docBase + "M006",
	},
	"M007": {
		Category: CategoryRuntime,
		Message:  "Instance not mounted",
		Detail:   "Events can only be dispatched after Mount or Prerender.",
		DocURL:   docBase + "M007",
	},
	"M008": {
		Category: CategoryRuntime,
		Message:  "Command type mismatch",
		Detail:   "A bound command is not of the program's command type.",
		DocURL:   docBase + "M008",
	},

	// ============================================
	// Config Errors (M020-M039)
	// ============================================

	"M020": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration failed validation.",
		DocURL:   docBase + "M020",
	},
	"M021": {
		Category: CategoryConfig,
		Message:  "Configuration file unreadable",
		Detail:   "The configuration file could not be read or parsed. Supported formats are YAML and JSON.",
		DocURL:   docBase + "M021",
	},

	// ============================================
	// Protocol Errors (M040-M059)
	// ============================================

	"M040": {
		Category: CategoryProtocol,
		Message:  "Protocol error",
		Detail:   "The peer sent an error frame.",
		DocURL:   docBase + "M040",
	},
	"M041": {
		Category: CategoryProtocol,
		Message:  "Invalid frame",
		Detail:   "A frame could not be decoded.",
		DocURL:   docBase + "M041",
	},

	// ============================================
	// CLI Errors (M060-M079)
	// ============================================

	"M060": {
		Category: CategoryCLI,
		Message:  "Unknown application",
		Detail:   "The requested demo application does not exist. Available applications are counter and todo.",
		DocURL:   docBase + "M060",
	},
	"M061": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
		DocURL:   docBase + "M061",
	},

	// ============================================
	// Publish Errors (M080-M089)
	// ============================================

	"M080": {
		Category: CategoryPublish,
		Message:  "Publish failed",
		Detail:   "The rendered page could not be uploaded to object storage.",
		DocURL:   docBase + "M080",
	},
	"M081": {
		Category: CategoryPublish,
		Message:  "Missing bucket",
		Detail:   "Publishing needs a bucket, from --bucket or publish.bucket in the configuration.",
		DocURL:   docBase + "M081",
	},

	"M099": {
		Category: CategoryRuntime,
		Message:  "Internal error",
		Detail:   "An unexpected error occurred.",
		DocURL:   docBase + "M099",
	},
}

// GetAllCodes returns all registered error codes in sorted order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
