package tool

import (
	"context"

	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components"
)

// Invoke 调用工具并触发 Tool 阶段的回调。
func Invoke(ctx context.Context, svc Service, name string, args map[string]any) (result any, err error) {
	ctx = callbacks.StartStage(ctx, &callbacks.RunInfo{
		Name:      name,
		Type:      "Tool",
		Component: components.ComponentOfTool,
	}, &CallbackInput{Name: name, Arguments: args})
	defer func() {
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	result, err = svc.Call(ctx, name, args)
	if err != nil {
		return nil, err
	}

	_ = callbacks.OnEnd(ctx, &CallbackOutput{Result: result})
	return result, nil
}
