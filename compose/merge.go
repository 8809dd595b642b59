package compose

// deepMerge 合并 src 到 dst：两者都是对象时逐键递归合并，都是数组时拼接，
// 否则 src 非 nil 时取 src。输入不被修改。
func deepMerge(dst, src any) any {
	if src == nil {
		return dst
	}
	if dst == nil {
		return src
	}

	if dm, ok := dst.(map[string]any); ok {
		if sm, ok := src.(map[string]any); ok {
			out := make(map[string]any, len(dm)+len(sm))
			for k, v := range dm {
				out[k] = v
			}
			for k, v := range sm {
				out[k] = deepMerge(out[k], v)
			}
			return out
		}
	}

	if da, ok := dst.([]any); ok {
		if sa, ok := src.([]any); ok {
			out := make([]any, 0, len(da)+len(sa))
			out = append(out, da...)
			return append(out, sa...)
		}
	}

	return src
}
