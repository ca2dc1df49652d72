package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldExpenseID  = "expense_id"
	FieldAmount     = "amount"
	FieldCategory   = "category"
	FieldDate       = "date"
	FieldRevision   = "revision"
	FieldStoreKey   = "store_key"
	FieldBytes      = "bytes"
	FieldBackend    = "backend"
	FieldChannel    = "channel"
	FieldTriggerAt  = "trigger_at"
	FieldDurationMs = "duration_ms"
	FieldExpenses   = "expenses"
	FieldFirstRun   = "first_run"
	FieldPermission = "permission_granted"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentPersist   = "persist"
	ComponentAnalytics = "analytics"
	ComponentReminder  = "reminder"
	ComponentNotify    = "notify"
	ComponentAMQP      = "amqp"
	ComponentTelegram  = "telegram"
	ComponentCache     = "cache"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpLoad        = "load"
	OpAddExpense  = "add_expense"
	OpDelete      = "delete_expense"
	OpAddCategory = "add_category"
	OpSettings    = "update_settings"
	OpPersist     = "persist"
	OpSchedule    = "schedule"
	OpCancel      = "cancel"
	OpDeliver     = "deliver"
	OpPermission  = "request_permission"
	OpShutdown    = "shutdown"
	OpStartup     = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeStorage       = "storage_error"
	ErrorTypeCorruptData   = "corrupt_data"
	ErrorTypeNetwork       = "network_error"
	ErrorTypePermission    = "permission_denied"
	ErrorTypeNotReady      = "not_ready"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds the error category
func (f LogFields) WithErrorType(kind string) LogFields {
	f[FieldErrorType] = kind
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(id, amount, category, date string) LogFields {
	f[FieldExpenseID] = id
	f[FieldAmount] = amount
	f[FieldCategory] = category
	f[FieldDate] = date
	return f
}

// WithRevision adds the ledger revision
func (f LogFields) WithRevision(rev uint64) LogFields {
	f[FieldRevision] = rev
	return f
}

// WithStore adds persistence fields
func (f LogFields) WithStore(key string, size int) LogFields {
	f[FieldStoreKey] = key
	f[FieldBytes] = size
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
