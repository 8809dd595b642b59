// Package jsonvalue 处理 JSON 形态的 Go 值：map[string]any、[]any、string、float64、bool、nil。
package jsonvalue

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/mohae/deepcopy"
)

// Normalize 经由 JSON 往返，把任意可序列化的值转换为 JSON 形态。
func Normalize(v any) (any, error) {
	switch v.(type) {
	case nil, string, float64, bool:
		return v, nil
	}

	data, err := sonic.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("normalize value of type %T: %w", v, err)
	}

	var out any
	if err = sonic.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("normalize value of type %T: %w", v, err)
	}

	return out, nil
}

// NormalizeMap 同 Normalize，要求结果是对象。nil 返回空对象。
func NormalizeMap(v any) (map[string]any, error) {
	if v == nil {
		return map[string]any{}, nil
	}

	n, err := Normalize(v)
	if err != nil {
		return nil, err
	}

	m, ok := n.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object, got %T", n)
	}

	return m, nil
}

// Copy 深拷贝。
func Copy[T any](v T) T {
	c, _ := deepcopy.Copy(v).(T)
	return c
}

// Get 按点分路径读取，例如 "user.profile.name"。
func Get(m map[string]any, path string) (any, bool) {
	if path == "" {
		return m, true
	}

	var cur any = m
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = obj[key]; !ok {
			return nil, false
		}
	}

	return cur, true
}

// Set 按点分路径写入，中间对象不存在时创建；中间值不是对象时返回错误。
func Set(m map[string]any, path string, v any) error {
	keys := strings.Split(path, ".")
	cur := m
	for i, key := range keys[:len(keys)-1] {
		next, ok := cur[key]
		if !ok || next == nil {
			obj := map[string]any{}
			cur[key] = obj
			cur = obj
			continue
		}
		obj, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("set %q: %q is %T, not an object", path, strings.Join(keys[:i+1], "."), next)
		}
		cur = obj
	}

	cur[keys[len(keys)-1]] = v
	return nil
}
