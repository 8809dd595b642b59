package embedding

// Options 向量化的通用选项。
type Options struct {
	// Model 向量模型名称，例如 "text-embedding-3-small"
	Model *string
}

// Option 向量化调用选项。
type Option struct {
	apply func(opts *Options)
}

// WithModel 指定向量模型。
func WithModel(model string) Option {
	return Option{
		apply: func(opts *Options) {
			opts.Model = &model
		},
	}
}

// GetCommonOptions 合并通用选项，base 提供默认值。
func GetCommonOptions(base *Options, opts ...Option) *Options {
	if base == nil {
		base = &Options{}
	}

	for i := range opts {
		if opts[i].apply != nil {
			opts[i].apply(base)
		}
	}

	return base
}
