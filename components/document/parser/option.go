package parser

// Options 解析器的通用选项。
type Options struct {
	// URI 内容的来源，ExtParser 据此按扩展名选择解析器
	URI string
	// ExtraMeta 合并到每个文档元数据中
	ExtraMeta map[string]any
}

// Option 解析器的调用选项。
type Option struct {
	apply func(opts *Options)

	implSpecificOptFn any
}

// WithURI 设置内容来源。
func WithURI(uri string) Option {
	return Option{
		apply: func(opts *Options) {
			opts.URI = uri
		},
	}
}

// WithExtraMeta 设置附加元数据。
func WithExtraMeta(meta map[string]any) Option {
	return Option{
		apply: func(opts *Options) {
			opts.ExtraMeta = meta
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

// WrapImplSpecificOptFn 包装解析器实现自定义的选项。
func WrapImplSpecificOptFn[T any](optFn func(*T)) Option {
	return Option{
		implSpecificOptFn: optFn,
	}
}

// GetImplSpecificOptions 提取解析器实现自定义的选项。
func GetImplSpecificOptions[T any](base *T, opts ...Option) *T {
	if base == nil {
		base = new(T)
	}

	for i := range opts {
		if optFn, ok := opts[i].implSpecificOptFn.(func(*T)); ok {
			optFn(base)
		}
	}

	return base
}
