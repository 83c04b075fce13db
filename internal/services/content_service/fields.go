package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"mpsite/internal/backend"
)

// Чтение полей строки с разными схемами. Значения, которые нельзя
// привести к нужному типу, превращаются в пустое значение, а не в ошибку.

// text возвращает первое непустое строковое значение из keys
func text(row backend.Row, keys ...string) string {
	for _, k := range keys {
		if s := asString(row[k]); s != "" {
			return s
		}
	}
	return ""
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		if !t {
			return ""
		}
		return "true"
	case []byte:
		return strings.TrimSpace(string(t))
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int, int32, int64:
		s := fmt.Sprint(t)
		if s == "0" {
			return ""
		}
		return s
	default:
		return ""
	}
}

// integer возвращает первое значение, приводимое к целому. nil - поле отсутствует.
func integer(row backend.Row, keys ...string) *int {
	for _, k := range keys {
		v, ok := row[k]
		if !ok || v == nil {
			continue
		}
		if n, ok := asInt(v); ok {
			return &n
		}
	}
	return nil
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int16:
		return int(t), true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case float32:
		return int(math.Round(float64(t))), true
	case float64:
		return int(math.Round(t)), true
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		if f, err := t.Float64(); err == nil {
			return int(math.Round(f)), true
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, true
		}
	}
	return 0, false
}

// flag читает булево поле. Отсутствующее или нечитаемое значение дает def.
func flag(row backend.Row, key string, def bool) bool {
	switch t := row[key].(type) {
	case bool:
		return t
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
	case json.Number:
		return t.String() != "0"
	case int, int32, int64, float64:
		return fmt.Sprint(t) != "0"
	}
	return def
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func timestamp(row backend.Row, keys ...string) *time.Time {
	for _, k := range keys {
		switch t := row[k].(type) {
		case time.Time:
			tt := t
			return &tt
		case string:
			s := strings.TrimSpace(t)
			for _, layout := range timeLayouts {
				if parsed, err := time.Parse(layout, s); err == nil {
					return &parsed
				}
			}
		}
	}
	return nil
}

// list принимает массив или строку с разделителем sep
func list(v any, sep string) []string {
	out := []string{}

	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	switch t := v.(type) {
	case []string:
		for _, s := range t {
			add(s)
		}
	case []any:
		for _, s := range t {
			add(asString(s))
		}
	case string:
		s := strings.TrimSpace(t)
		if strings.HasPrefix(s, "[") {
			var arr []string
			if err := json.Unmarshal([]byte(s), &arr); err == nil {
				for _, a := range arr {
					add(a)
				}
				return out
			}
		}
		for _, part := range strings.Split(s, sep) {
			add(part)
		}
	}

	return out
}

func firstPresent(row backend.Row, keys ...string) any {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// identifier id ?? slug ?? позиция в выборке
func identifier(row backend.Row, idx int) string {
	for _, k := range []string{"id", "slug"} {
		v, ok := row[k]
		if !ok || v == nil {
			continue
		}
		if s := fmt.Sprint(v); s != "" {
			return s
		}
	}
	return strconv.Itoa(idx)
}
