package utils

import (
	"fmt"
	"time"
)

// EngineTimestampLayout es el formato de timestamp del protocolo del engine.
//
// Siempre UTC, milisegundos con tres dígitos: "2024-03-01 12:00:00.123".
const EngineTimestampLayout = "2006-01-02 15:04:05.000"

// UnixMilliToTime convierte un timestamp Unix en milisegundos a time.Time (UTC).
func UnixMilliToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// FormatEngineTimestamp formatea t con EngineTimestampLayout en UTC.
//
// Example:
//
//	utils.FormatEngineTimestamp(time.UnixMilli(1709294400123))
//	// => "2024-03-01 12:00:00.123"
func FormatEngineTimestamp(t time.Time) string {
	return t.UTC().Format(EngineTimestampLayout)
}

// ParseEngineTimestamp parsea un timestamp del engine.
//
// Exige exactamente el layout (incluida la parte de milisegundos).
func ParseEngineTimestamp(s string) (time.Time, error) {
	if len(s) != len(EngineTimestampLayout) {
		return time.Time{}, fmt.Errorf("invalid engine timestamp %q: expected layout %q", s, EngineTimestampLayout)
	}
	t, err := time.ParseInLocation(EngineTimestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid engine timestamp %q: %w", s, err)
	}
	return t, nil
}
