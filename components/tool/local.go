package tool

import (
	"context"
	"fmt"

	"github.com/favbox/promptflow/schema"
)

// Func 进程内工具的执行函数。
type Func func(ctx context.Context, args map[string]any) (any, error)

// LocalTool 进程内注册的工具。
type LocalTool struct {
	// Key 为空时使用 Info.Name
	Key  string
	Info *schema.ToolInfo
	Run  Func
}

// LocalService 进程内的工具服务，用于命令行和测试。注册完成后只读，可并发使用。
type LocalService struct {
	byName map[string]*LocalTool
	byKey  map[string]*LocalTool
	order  []string
}

// NewLocalService 用给定工具创建服务，名称或 key 重复时返回错误。
func NewLocalService(tools ...*LocalTool) (*LocalService, error) {
	s := &LocalService{
		byName: make(map[string]*LocalTool, len(tools)),
		byKey:  make(map[string]*LocalTool, len(tools)),
	}

	for _, t := range tools {
		if t == nil || t.Info == nil || t.Info.Name == "" {
			return nil, fmt.Errorf("local tool must have a name")
		}
		if t.Run == nil {
			return nil, fmt.Errorf("local tool %s has no run function", t.Info.Name)
		}
		key := t.Key
		if key == "" {
			key = t.Info.Name
		}
		if _, ok := s.byName[t.Info.Name]; ok {
			return nil, fmt.Errorf("duplicate tool name: %s", t.Info.Name)
		}
		if _, ok := s.byKey[key]; ok {
			return nil, fmt.Errorf("duplicate tool key: %s", key)
		}
		s.byName[t.Info.Name] = t
		s.byKey[key] = t
		s.order = append(s.order, key)
	}

	return s, nil
}

// Call 按名称调用工具。
func (s *LocalService) Call(ctx context.Context, name string, args map[string]any) (any, error) {
	t, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	return t.Run(ctx, args)
}

func (s *LocalService) selected(keys []string) ([]string, error) {
	if len(keys) == 0 {
		return s.order, nil
	}
	for _, k := range keys {
		if _, ok := s.byKey[k]; !ok {
			return nil, fmt.Errorf("tool key not found: %s", k)
		}
	}
	return keys, nil
}

// ToolsList 返回工具描述。
func (s *LocalService) ToolsList(_ context.Context, keys []string) ([]*schema.ToolInfo, error) {
	sel, err := s.selected(keys)
	if err != nil {
		return nil, err
	}
	infos := make([]*schema.ToolInfo, 0, len(sel))
	for _, k := range sel {
		infos = append(infos, s.byKey[k].Info)
	}
	return infos, nil
}

// ToolNames 返回工具名称。
func (s *LocalService) ToolNames(_ context.Context, keys []string) ([]string, error) {
	sel, err := s.selected(keys)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(sel))
	for _, k := range sel {
		names = append(names, s.byKey[k].Info.Name)
	}
	return names, nil
}

// AllMetadata 返回注册信息。
func (s *LocalService) AllMetadata(_ context.Context, keys []string) ([]*Metadata, error) {
	sel, err := s.selected(keys)
	if err != nil {
		return nil, err
	}
	metas := make([]*Metadata, 0, len(sel))
	for _, k := range sel {
		t := s.byKey[k]
		metas = append(metas, &Metadata{
			Key:         k,
			Name:        t.Info.Name,
			Description: t.Info.Desc,
			Extra:       t.Info.Extra,
		})
	}
	return metas, nil
}
