package model

// 常用的模型参数名。
const (
	ParamMaxTokens   = "max_tokens"
	ParamTemperature = "temperature"
	ParamTopP        = "top_p"
	ParamStop        = "stop"
)

// Params 开放的模型参数表，原样传给模型服务。
type Params map[string]any

// MaxTokens 返回 max_tokens，未设置或类型不对时返回 false。
func (p Params) MaxTokens() (int, bool) {
	switch v := p[ParamMaxTokens].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Temperature 返回 temperature。
func (p Params) Temperature() (float64, bool) {
	switch v := p[ParamTemperature].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// Stop 返回停止词列表。
func (p Params) Stop() []string {
	switch v := p[ParamStop].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, s := range v {
			if str, ok := s.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		return []string{v}
	default:
		return nil
	}
}

// Merge 返回合并后的新参数表，other 中的值覆盖 p 中的同名参数。
func (p Params) Merge(other Params) Params {
	out := make(Params, len(p)+len(other))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// With 返回设置了单个参数的新参数表。
func (p Params) With(key string, value any) Params {
	return p.Merge(Params{key: value})
}
