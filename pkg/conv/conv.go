// Package conv 提供类型转换、map/slice 转换等泛型工具，用于简化配置解析中的重复逻辑。
package conv

// ToFloat64 将 any 转为 float64。
// 支持 float64、float32、int、int64、int32；bool 视为 1.0/0.0。
func ToFloat64(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case bool:
		if val {
			return 1.0, true
		}
		return 0.0, true
	default:
		return 0, false
	}
}

// ToInt 将 any 转为 int。
func ToInt(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case int32:
		return int(val), true
	case float64:
		return int(val), true
	case float32:
		return int(val), true
	default:
		return 0, false
	}
}

// ToString 将 any 转为 string。仅支持 string 类型，否则返回 ("", false)。
func ToString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return "", false
}

// MapToFloat64 将 map[string]any 转为 map[string]float64，忽略不可转换项。
func MapToFloat64(m map[string]any) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if fv, ok := ToFloat64(v); ok {
			out[k] = fv
		}
	}
	return out
}

// SliceAnyToString 将 []any（或 []string）转为 []string，忽略不可转换项。
func SliceAnyToString(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := ToString(item); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// ConfigGet 从配置 map 中读取 key 并断言为 T，失败时返回默认值。
func ConfigGet[T any](m map[string]any, key string, defaultVal T) T {
	if m == nil {
		return defaultVal
	}
	if v, ok := m[key]; ok {
		if tv, ok := v.(T); ok {
			return tv
		}
	}
	return defaultVal
}

// ConfigGetInt64 从配置 map 中读取整数（yaml/json 解析可能产出 int 或 float64）。
func ConfigGetInt64(m map[string]any, key string, defaultVal int64) int64 {
	if m == nil {
		return defaultVal
	}
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	if iv, ok := ToInt(v); ok {
		return int64(iv)
	}
	return defaultVal
}

// ConfigGetFloat64 从配置 map 中读取浮点数。
func ConfigGetFloat64(m map[string]any, key string, defaultVal float64) float64 {
	if m == nil {
		return defaultVal
	}
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	if fv, ok := ToFloat64(v); ok {
		return fv
	}
	return defaultVal
}
