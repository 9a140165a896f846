package errors

// ErrorCode identifies the reason an operation failed.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199)
	ErrCodeInvalidConfiguration    ErrorCode = 100
	ErrCodeConfigurationIncomplete ErrorCode = 101
	ErrCodeInvalidParameter        ErrorCode = 102

	// Credential and authentication errors (200-299)
	ErrCodeCredentialUnreadable ErrorCode = 200
	ErrCodeCredentialWrite      ErrorCode = 201
	ErrCodeAuthRejected         ErrorCode = 202
	ErrCodeNotAuthenticated     ErrorCode = 203

	// Market data errors (300-399)
	ErrCodeMarketDataFetchFailed ErrorCode = 300
	ErrCodeNoDataFound           ErrorCode = 301
	ErrCodeMarketDataParseFailed ErrorCode = 302

	// Storage errors (400-499)
	ErrCodeDataNotFound    ErrorCode = 400
	ErrCodeCSVParse        ErrorCode = 401
	ErrCodeCSVWrite        ErrorCode = 402
	ErrCodeDirectoryCreate ErrorCode = 403
	ErrCodeDirectoryRead   ErrorCode = 404
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:                 "unknown",
	ErrCodeInvalidConfiguration:    "invalid_configuration",
	ErrCodeConfigurationIncomplete: "configuration_incomplete",
	ErrCodeInvalidParameter:        "invalid_parameter",
	ErrCodeCredentialUnreadable:    "credential_unreadable",
	ErrCodeCredentialWrite:         "credential_unwritable",
	ErrCodeAuthRejected:            "auth_rejected",
	ErrCodeNotAuthenticated:        "not_authenticated",
	ErrCodeMarketDataFetchFailed:   "provider_error",
	ErrCodeNoDataFound:             "no_data",
	ErrCodeMarketDataParseFailed:   "provider_parse_error",
	ErrCodeDataNotFound:            "data_not_found",
	ErrCodeCSVParse:                "csv_parse_error",
	ErrCodeCSVWrite:                "csv_write_error",
	ErrCodeDirectoryCreate:         "directory_create_error",
	ErrCodeDirectoryRead:           "directory_read_error",
}

// String returns a stable snake_case name, used when recording outcomes.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}

	return "unknown"
}
