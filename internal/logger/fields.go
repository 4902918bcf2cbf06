package logger

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	FieldProvider = "llm_provider"
	FieldModel    = "llm_model"
	FieldSession  = "session_id"
	// FieldRole is omitted for roles that were never saved.
	FieldRole = "role_id"
	FieldApp  = "app"
)

// nonEmpty turns key, value pairs into string fields. Pairs whose trimmed
// value is empty are skipped.
func nonEmpty(pairs ...string) []zap.Field {
	fields := make([]zap.Field, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if v := strings.TrimSpace(pairs[i+1]); v != "" {
			fields = append(fields, zap.String(pairs[i], v))
		}
	}
	return fields
}

// With returns logger with fields attached. A nil logger becomes a no-op one.
func With(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

func ProviderFields(provider, model string) []zap.Field {
	return nonEmpty(FieldProvider, provider, FieldModel, model)
}

func WithProvider(logger *zap.Logger, provider, model string) *zap.Logger {
	return With(logger, ProviderFields(provider, model)...)
}

func SessionFields(sessionID string, roleID int64) []zap.Field {
	role := ""
	if roleID > 0 {
		role = strconv.FormatInt(roleID, 10)
	}
	return nonEmpty(FieldSession, sessionID, FieldRole, role)
}

func WithSession(logger *zap.Logger, sessionID string, roleID int64) *zap.Logger {
	return With(logger, SessionFields(sessionID, roleID)...)
}
