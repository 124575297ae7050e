package internal

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// mapToAttrs convierte un map[string]interface{} a atributos OTEL.
//
// Helper para pasar fields a los métodos de log del gateway.
func mapToAttrs(fields map[string]interface{}) []attribute.KeyValue {
	if fields == nil {
		return nil
	}

	attrs := make([]attribute.KeyValue, 0, len(fields))
	for key, value := range fields {
		switch v := value.(type) {
		case string:
			attrs = append(attrs, attribute.String(key, v))
		case int:
			attrs = append(attrs, attribute.Int(key, v))
		case int64:
			attrs = append(attrs, attribute.Int64(key, v))
		case float64:
			attrs = append(attrs, attribute.Float64(key, v))
		case bool:
			attrs = append(attrs, attribute.Bool(key, v))
		case decimal.Decimal:
			attrs = append(attrs, attribute.String(key, v.String()))
		case time.Duration:
			attrs = append(attrs, attribute.Int64(key+"_ms", v.Milliseconds()))
		case error:
			attrs = append(attrs, attribute.String(key, v.Error()))
		default:
			attrs = append(attrs, attribute.String(key, toString(v)))
		}
	}

	return attrs
}

// toString convierte un valor a string de forma segura.
func toString(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
