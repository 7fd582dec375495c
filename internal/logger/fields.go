package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldAPIURL is the structured log field key for the evaluation API base URL.
	FieldAPIURL = "api_url"
	// FieldTemplate is the structured log field key for the selected job template.
	FieldTemplate = "template"
	// FieldLevel is the structured log field key for the selected level.
	FieldLevel = "level"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to logger, falling back to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// SelectionFields describes what the user is evaluating against. Empty values are dropped.
func SelectionFields(template, level string) []zap.Field {
	return StringFields(
		StringField{Key: FieldTemplate, Value: template},
		StringField{Key: FieldLevel, Value: level},
	)
}

// WithAPI tags every entry of logger with the API base URL.
func WithAPI(logger *zap.Logger, apiURL string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldAPIURL, Value: apiURL})...)
}
