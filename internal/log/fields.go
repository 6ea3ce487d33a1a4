package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldUserID    = "user_id"
	FieldEntity    = "entity"
	FieldEntityID  = "entity_id"
	FieldRemoteID  = "remote_id"
	FieldTable     = "table"
	FieldCount     = "count"
	FieldDuration  = "duration_ms"
	FieldKey       = "key"
	FieldCategory  = "category"
	FieldAmount    = "amount"
	FieldPending   = "pending_writes"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentStore    = "store"
	ComponentGateway  = "gateway"
	ComponentImporter = "importer"
	ComponentExporter = "exporter"
	ComponentSession  = "session"
	ComponentSnapshot = "snapshot"
	ComponentAMQP     = "amqp"
	ComponentNotify   = "notify"
	ComponentBackend  = "backend"
	ComponentCLI      = "cli"
)

// Operations defines standard operation names
const (
	OpAdd       = "add"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpLoad      = "load"
	OpClear     = "clear"
	OpReconcile = "reconcile"
	OpPersist   = "persist"
	OpHydrate   = "hydrate"
	OpImport    = "import"
	OpExport    = "export"
	OpPublish   = "publish"
	OpConsume   = "consume"
	OpSignIn    = "sign_in"
	OpSignOut   = "sign_out"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeAuth          = "auth_error"
	ErrorTypeParse         = "parse_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds error field; a nil error is ignored.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithUser(userID string) LogFields {
	if userID != "" {
		f[FieldUserID] = userID
	}
	return f
}

// WithEntity adds the entity kind and identifier being worked on.
func (f LogFields) WithEntity(kind, id string) LogFields {
	f[FieldEntity] = kind
	if id != "" {
		f[FieldEntityID] = id
	}
	return f
}

func (f LogFields) WithCount(n int) LogFields {
	f[FieldCount] = n
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
