package logging

// Standardized field names for structured logging.
const (
	FieldRuleID            = "rule_id"
	FieldRuleName          = "rule_name"
	FieldLineID            = "line_id"
	FieldSource            = "source"
	FieldAnalyticalAccount = "analytical_account_id"
	FieldMatchedFields     = "matched_fields"
	FieldBackend           = "backend"
	FieldOperation         = "operation"
	FieldStatus            = "status"
	FieldError             = "error"
	FieldDuration          = "duration_ms"
	FieldCount             = "count"
	FieldInputFile         = "input_file"
	FieldOutputFile        = "output_file"
)
