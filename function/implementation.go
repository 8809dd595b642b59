package function

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components"
	compfn "github.com/favbox/promptflow/components/function"
	"github.com/favbox/promptflow/components/guardrail"
	"github.com/favbox/promptflow/components/model"
	"github.com/favbox/promptflow/enrichment"
	"github.com/favbox/promptflow/logs"
	"github.com/favbox/promptflow/mapping"
	"github.com/favbox/promptflow/output"
	"github.com/favbox/promptflow/schema"
)

// Implementation 语义函数的一个实现：绑定一个模型，以及可选的提示词增强、输入护栏、输出处理。
//
// 创建后只读，可被并发调用。
type Implementation struct {
	key       string
	info      model.Info
	chatModel model.ChatModel
	provider  string
	params    model.Params

	prompt        *enrichment.Pipeline
	guardrails    guardrail.Service
	guardrailKeys []string
	output        *output.Pipeline
	argsMapping   *mapping.Mapper
	returnMapping *mapping.Mapper

	isDefault  bool
	maxRetries uint64
	retryBase  time.Duration
}

// ImplementationOption 实现的配置项。
type ImplementationOption func(*Implementation)

// WithPrompt 设置提示词增强流程。
func WithPrompt(p *enrichment.Pipeline) ImplementationOption {
	return func(i *Implementation) { i.prompt = p }
}

// WithInputGuardrails 模型调用前用给定护栏依次扫描消息。
func WithInputGuardrails(svc guardrail.Service, keys ...string) ImplementationOption {
	return func(i *Implementation) {
		i.guardrails = svc
		i.guardrailKeys = keys
	}
}

// WithOutputProcessing 设置输出处理流程。
func WithOutputProcessing(p *output.Pipeline) ImplementationOption {
	return func(i *Implementation) { i.output = p }
}

// WithArgsMapping 调用前重塑参数。
func WithArgsMapping(m *mapping.Mapper) ImplementationOption {
	return func(i *Implementation) { i.argsMapping = m }
}

// WithReturnMapping 重塑返回值，映射的输入为 {response, args}。
func WithReturnMapping(m *mapping.Mapper) ImplementationOption {
	return func(i *Implementation) { i.returnMapping = m }
}

// WithDefault 标记为默认实现，没有 ModelKey 和实验时使用。
func WithDefault() ImplementationOption {
	return func(i *Implementation) { i.isDefault = true }
}

// WithRetry 模型调用失败时按指数退避重试，最多 maxRetries 次。
func WithRetry(maxRetries uint64, base time.Duration) ImplementationOption {
	return func(i *Implementation) {
		i.maxRetries = maxRetries
		i.retryBase = base
	}
}

// WithProvider 设置模型服务的提供商，默认取 model.Info.Provider。
func WithProvider(provider string) ImplementationOption {
	return func(i *Implementation) { i.provider = provider }
}

// WithModelParams 设置默认模型参数，调用时的 ModelParams 覆盖同名参数。
func WithModelParams(params model.Params) ImplementationOption {
	return func(i *Implementation) { i.params = params }
}

// NewImplementation 创建实现，key 用于 ModelKey 精确选择和实验配置。
func NewImplementation(key string, info model.Info, cm model.ChatModel, opts ...ImplementationOption) *Implementation {
	i := &Implementation{
		key:       key,
		info:      info,
		chatModel: cm,
		provider:  info.Provider,
		retryBase: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.info.Key == "" {
		i.info.Key = key
	}
	return i
}

// Name 实现的 key。
func (i *Implementation) Name() string { return i.key }

// Key 同 Name。
func (i *Implementation) Key() string { return i.key }

// IsDefault 是否为默认实现。
func (i *Implementation) IsDefault() bool { return i.isDefault }

// GetType 组件实现类型。
func (i *Implementation) GetType() string { return "Implementation" }

// Call 调用实现。批量调用时逐个元素顺序执行，Value 为 []any。
func (i *Implementation) Call(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx = callbacks.StartStage(ctx, &callbacks.RunInfo{
		Name:      i.key,
		Type:      i.GetType(),
		Component: components.ComponentOfImplementation,
	}, &compfn.CallbackInput{Request: req})
	defer func() {
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	if i.info.Type != "" && i.info.Type != model.TypeChat {
		return nil, compfn.NewError(i.key, fmt.Errorf("%w: %s", compfn.ErrUnsupportedModelType, i.info.Type))
	}

	if !req.IsBatch() {
		resp, err = i.callOne(ctx, req, req.Args)
		if err != nil {
			return nil, err
		}
	} else {
		resp = &Response{Metadata: map[string]any{}}
		values := make([]any, 0, len(req.Batch))
		for _, args := range req.Batch {
			one, err := i.callOne(ctx, req, args)
			if err != nil {
				return nil, err
			}
			values = append(values, one.Value)
			resp.Message = one.Message
			resp.Usage = compfn.AddUsage(resp.Usage, one.Usage)
			maps.Copy(resp.Metadata, one.Metadata)
		}
		resp.Value = values
	}

	_ = callbacks.OnEnd(ctx, &compfn.CallbackOutput{Response: resp})
	return resp, nil
}

func (i *Implementation) callOne(ctx context.Context, req *Request, args map[string]any) (*Response, error) {
	if i.argsMapping != nil {
		mapped, err := i.argsMapping.ApplyMap(args)
		if err != nil {
			return nil, err
		}
		args = mapped
	}

	if i.prompt == nil {
		return nil, compfn.NewError(i.key, compfn.ErrMissingPrompt)
	}

	params := i.params.Merge(req.ModelParams)
	enriched, err := i.prompt.Run(ctx, &enrichment.Input{Args: args, Info: &i.info, ModelParams: params})
	if err != nil {
		return nil, err
	}

	chatReq := i.buildRequest(req, enriched.Messages, args, params)

	if err = i.scanInput(ctx, chatReq); err != nil {
		return nil, err
	}

	chatResp, err := i.createChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, err
	}

	if i.output != nil {
		chatResp, err = i.output.Process(ctx, chatResp)
		if err != nil {
			return nil, err
		}
	}

	value, err := responseValue(chatResp)
	if err != nil {
		return nil, compfn.NewError(i.key, err)
	}

	if i.returnMapping != nil {
		value, err = i.returnMapping.Apply(map[string]any{"response": value, "args": args})
		if err != nil {
			return nil, err
		}
	}

	metadata := map[string]any{"implementation": i.key}
	if chatResp.Model != "" {
		metadata["model"] = chatResp.Model
	}
	maps.Copy(metadata, enriched.Metadata)

	return &Response{
		Value:    value,
		Message:  chatResp.Message(),
		Metadata: metadata,
		Usage:    chatResp.Usage,
	}, nil
}

// buildRequest 组装提供商无关的请求：全部 system 消息拼接为上下文，历史和本轮消息不含 system 消息。
// 视觉请求不带上下文和历史，图片追加到最后一条用户消息。
func (i *Implementation) buildRequest(req *Request, msgs []*schema.Message, args map[string]any, params model.Params) *model.ChatRequest {
	chatReq := &model.ChatRequest{
		Provider:    i.provider,
		Model:       i.info.Name,
		ModelParams: params,
		Functions:   append([]*schema.ToolInfo(nil), req.Tools...),
	}

	if url, ok := args[ImageURLKey].(string); ok && url != "" {
		messages := schema.FilterRole(msgs, schema.System)
		for j := len(messages) - 1; j >= 0; j-- {
			if messages[j].Role == schema.User {
				messages[j].AppendImage(url, schema.ImageURLDetailAuto)
				break
			}
		}
		chatReq.Prompt = model.Prompt{Messages: messages}
	} else {
		chatReq.Prompt = model.Prompt{
			Context:  schema.JoinRole(msgs, schema.System),
			History:  schema.FilterRole(req.History, schema.System),
			Messages: schema.FilterRole(msgs, schema.System),
		}
	}

	if req.ReturnTypeSchema != nil {
		chatReq.Functions = append(chatReq.Functions, &schema.ToolInfo{
			Name:        OutputFormatterName,
			Desc:        "Format the final answer with this function.",
			ParamsOneOf: schema.NewParamsOneOfByJSONSchema(req.ReturnTypeSchema),
		})
		forced := schema.ToolChoiceForced
		chatReq.ToolChoice = &forced
	}

	return chatReq
}

// scanInput 依次用每个输入护栏扫描本轮消息，扫描后的文本原地改写。
func (i *Implementation) scanInput(ctx context.Context, req *model.ChatRequest) (err error) {
	if i.guardrails == nil || len(i.guardrailKeys) == 0 {
		return nil
	}

	ctx = callbacks.StartStage(ctx, &callbacks.RunInfo{
		Name:      i.key,
		Type:      "InputGuardrail",
		Component: components.ComponentOfInputGuardrail,
	}, req)
	defer func() {
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	for _, key := range i.guardrailKeys {
		for _, m := range req.Prompt.Messages {
			if m.Content == "" {
				continue
			}
			res, err := i.guardrails.Scan(ctx, key, m.Content)
			if err != nil {
				return fmt.Errorf("scan with %s: %w", key, err)
			}
			if res == nil {
				continue
			}
			if res.Error != "" {
				return &guardrail.ViolationError{Key: key, Reason: res.Error}
			}
			if res.Text != "" {
				m.Content = res.Text
			}
		}
	}

	_ = callbacks.OnEnd(ctx, req)
	return nil
}

func (i *Implementation) createChatCompletion(ctx context.Context, req *model.ChatRequest) (resp *model.ChatResponse, err error) {
	ctx = callbacks.StartStage(ctx, &callbacks.RunInfo{
		Name:      i.info.Key,
		Type:      i.provider,
		Component: components.ComponentOfChatModel,
	}, &model.CallbackInput{Request: req, Info: &i.info})
	defer func() {
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	if i.maxRetries == 0 {
		resp, err = i.chatModel.CreateChatCompletion(ctx, req)
	} else {
		attempt := 0
		backoff := retry.WithMaxRetries(i.maxRetries, retry.NewExponential(i.retryBase))
		err = retry.Do(ctx, backoff, func(ctx context.Context) error {
			attempt++
			var callErr error
			resp, callErr = i.chatModel.CreateChatCompletion(ctx, req)
			if callErr != nil {
				logs.L().Warn("chat completion failed",
					zap.String("implementation", i.key),
					zap.Int("attempt", attempt),
					zap.Error(callErr))
				return retry.RetryableError(callErr)
			}
			return nil
		})
	}
	if err != nil {
		return nil, err
	}

	_ = callbacks.OnEnd(ctx, &model.CallbackOutput{Response: resp, TokenUsage: resp.Usage})
	return resp, nil
}

// responseValue 依次取解析器的结构化值、output_formatter 的参数、消息文本。
func responseValue(resp *model.ChatResponse) (any, error) {
	if resp.Structured != nil {
		return resp.Structured, nil
	}

	msg := resp.Message()
	if msg == nil {
		return "", nil
	}
	for _, tc := range msg.ToolCalls {
		if tc.Function.Name != OutputFormatterName {
			continue
		}
		var v any
		if err := sonic.UnmarshalString(tc.Function.Arguments, &v); err != nil {
			return nil, fmt.Errorf("decode %s arguments: %w", OutputFormatterName, err)
		}
		return v, nil
	}

	return msg.Content, nil
}
