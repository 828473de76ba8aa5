package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldProfileID = "profile_id"
	FieldProfile   = "profile"
	FieldRecordID  = "record_id"
	FieldCount     = "count"
	FieldAmount    = "amount"
	FieldCategory  = "category"
	FieldKey       = "key"
	FieldFormat    = "format"
	FieldMode      = "mode"
	FieldPath      = "path"
	FieldBackend   = "backend"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentProfile     = "profile"
	ComponentRecord      = "record"
	ComponentStorage     = "storage"
	ComponentCache       = "cache"
	ComponentInterchange = "interchange"
	ComponentConfig      = "config"
	ComponentBackend     = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpDelete   = "delete"
	OpClear    = "clear"
	OpList     = "list"
	OpActivate = "activate"
	OpRestore  = "restore"
	OpExport   = "export"
	OpImport   = "import"
	OpPrune    = "prune"
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

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithProfile adds the profile id and, when known, its name.
func (f LogFields) WithProfile(id, name string) LogFields {
	f[FieldProfileID] = id
	if name != "" {
		f[FieldProfile] = name
	}
	return f
}

// WithRecord adds record-related fields
func (f LogFields) WithRecord(id int64, amount, category string) LogFields {
	f[FieldRecordID] = id
	f[FieldAmount] = amount
	f[FieldCategory] = category
	return f
}

// WithCount adds a count field
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
