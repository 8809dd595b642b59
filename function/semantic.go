package function

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/eino-contrib/jsonschema"

	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components"
	compfn "github.com/favbox/promptflow/components/function"
	"github.com/favbox/promptflow/schema"
)

// Variant 实验中的一个分支，按权重路由到 Implementation 指定的实现。
type Variant struct {
	Implementation string  `yaml:"implementation" json:"implementation"`
	Weight         float64 `yaml:"weight" json:"weight"`
}

// Experiment 按权重在实现之间路由的 A/B 实验。
type Experiment struct {
	Name     string    `yaml:"name" json:"name"`
	Variants []Variant `yaml:"variants" json:"variants"`
}

// SemanticFunction 语义函数，持有一组实现，创建后只读，可被并发调用。
type SemanticFunction struct {
	name             string
	implementations  []*Implementation
	argsSchema       *jsonschema.Schema
	returnTypeSchema *jsonschema.Schema
	experiment       *Experiment
	sampler          func() float64
}

// Option 语义函数的配置项。
type Option func(*SemanticFunction)

// WithArgsSchema 调用前按 JSON Schema 校验参数。
func WithArgsSchema(sc *jsonschema.Schema) Option {
	return func(f *SemanticFunction) { f.argsSchema = sc }
}

// WithReturnTypeSchema 默认的结构化输出要求，请求中的 ReturnTypeSchema 优先。
func WithReturnTypeSchema(sc *jsonschema.Schema) Option {
	return func(f *SemanticFunction) { f.returnTypeSchema = sc }
}

// WithExperiments 设置实现之间的路由实验。
func WithExperiments(exp Experiment) Option {
	return func(f *SemanticFunction) { f.experiment = &exp }
}

// WithSampler 替换实验抽样使用的 [0, 1) 随机数源。
//
//	r := rand.New(rand.NewPCG(1, 2))
//	f := function.New("summarize", impls, function.WithSampler(r.Float64))
func WithSampler(sampler func() float64) Option {
	return func(f *SemanticFunction) { f.sampler = sampler }
}

// New 创建语义函数。
func New(name string, implementations []*Implementation, opts ...Option) *SemanticFunction {
	f := &SemanticFunction{
		name:            name,
		implementations: implementations,
		sampler:         rand.Float64,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name 函数名称。
func (f *SemanticFunction) Name() string { return f.name }

// GetType 组件实现类型。
func (f *SemanticFunction) GetType() string { return "SemanticFunction" }

// Call 校验参数、选择实现并调用。
//
// 选择顺序：ModelKey 精确匹配，其次实验抽样，其次默认实现，最后第一个实现。
// 批量调用只校验第一个元素。
func (f *SemanticFunction) Call(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx = callbacks.StartStage(ctx, &callbacks.RunInfo{
		Name:      f.name,
		Type:      f.GetType(),
		Component: components.ComponentOfSemanticFunction,
	}, &compfn.CallbackInput{Request: req})
	defer func() {
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	if err = f.validate(ctx, req); err != nil {
		return nil, err
	}

	impl, experiment, err := f.selectImplementation(ctx, req.ModelKey)
	if err != nil {
		return nil, err
	}

	call := *req
	if call.ReturnTypeSchema == nil {
		call.ReturnTypeSchema = f.returnTypeSchema
	}

	resp, err = impl.Call(ctx, &call)
	if err != nil {
		return nil, err
	}

	if resp.Metadata == nil {
		resp.Metadata = map[string]any{}
	}
	resp.Metadata["implementation"] = impl.Key()
	if experiment != "" {
		resp.Metadata["experiment"] = experiment
	}

	_ = callbacks.OnEnd(ctx, &compfn.CallbackOutput{Response: resp})
	return resp, nil
}

func (f *SemanticFunction) validate(ctx context.Context, req *Request) error {
	if f.argsSchema == nil {
		return nil
	}

	args, sampled := req.Args, false
	if req.IsBatch() {
		args, sampled = req.Batch[0], true
	}

	err := schema.ValidateArgs(f.argsSchema, args)
	event := &compfn.ValidateArgumentsEvent{Valid: err == nil, Sampled: sampled}
	if err != nil {
		event.Issues = compfn.ErrorList(err)
	}
	_ = callbacks.OnEvent(ctx, event)

	return err
}

func (f *SemanticFunction) selectImplementation(ctx context.Context, modelKey string) (*Implementation, string, error) {
	if len(f.implementations) == 0 {
		return nil, "", compfn.NewError(f.name, compfn.ErrNoImplementation)
	}

	if modelKey != "" {
		if impl := f.find(modelKey); impl != nil {
			return impl, "", nil
		}
		return nil, "", compfn.NewError(f.name, fmt.Errorf("%w: %s", compfn.ErrImplementationNotFound, modelKey))
	}

	if f.experiment != nil && len(f.experiment.Variants) > 0 {
		idx, sample := sampleIndex(f.experiment.Variants, f.sampler)
		if idx >= 0 {
			key := f.experiment.Variants[idx].Implementation
			impl := f.find(key)
			if impl == nil {
				return nil, "", compfn.NewError(f.name, fmt.Errorf("%w: %s", compfn.ErrImplementationNotFound, key))
			}
			_ = callbacks.OnEvent(ctx, &compfn.ExperimentEvent{
				Experiment:     f.experiment.Name,
				Implementation: key,
				Sample:         sample,
			})
			return impl, f.experiment.Name, nil
		}
	}

	for _, impl := range f.implementations {
		if impl.IsDefault() {
			return impl, "", nil
		}
	}
	return f.implementations[0], "", nil
}

func (f *SemanticFunction) find(key string) *Implementation {
	for _, impl := range f.implementations {
		if impl.Key() == key {
			return impl
		}
	}
	return nil
}

// sampleIndex 累积权重抽样：sample = r()*Σw，依次减去各权重，首个使其小于 0 的下标被选中。
// 权重和不为正时返回 -1。
func sampleIndex(variants []Variant, r func() float64) (int, float64) {
	var total float64
	for _, v := range variants {
		if v.Weight > 0 {
			total += v.Weight
		}
	}
	if total <= 0 {
		return -1, 0
	}

	sample := r() * total
	rest := sample
	for i, v := range variants {
		if v.Weight <= 0 {
			continue
		}
		rest -= v.Weight
		if rest < 0 {
			return i, sample
		}
	}

	// 浮点误差使 rest 恰好为 0 时落到最后一个正权重分支
	for i := len(variants) - 1; i >= 0; i-- {
		if variants[i].Weight > 0 {
			return i, sample
		}
	}
	return -1, sample
}

// Execute 最外层边界：调用函数，把错误展开为 Errors。
func Execute(ctx context.Context, f Function, req *Request) *compfn.Outcome {
	resp, err := f.Call(ctx, req)
	if err != nil {
		return &compfn.Outcome{Errors: compfn.ErrorList(err)}
	}
	return &compfn.Outcome{Response: resp.Value, ResponseMetadata: resp.Metadata}
}
