package document

import "github.com/favbox/promptflow/components/document/parser"

// LoaderOptions 加载器的通用选项。
type LoaderOptions struct {
	// ParserOptions 传给解析器的选项
	ParserOptions []parser.Option
}

// LoaderOption 加载器的调用选项。
type LoaderOption struct {
	apply func(opts *LoaderOptions)

	implSpecificOptFn any
}

// WithParserOptions 设置传给解析器的选项。
func WithParserOptions(opts ...parser.Option) LoaderOption {
	return LoaderOption{
		apply: func(o *LoaderOptions) {
			o.ParserOptions = opts
		},
	}
}

// GetLoaderCommonOptions 合并加载器的通用选项，base 提供默认值。
func GetLoaderCommonOptions(base *LoaderOptions, opts ...LoaderOption) *LoaderOptions {
	if base == nil {
		base = &LoaderOptions{}
	}

	for i := range opts {
		if opts[i].apply != nil {
			opts[i].apply(base)
		}
	}

	return base
}

// WrapLoaderImplSpecificOptFn 包装加载器实现自定义的选项。
func WrapLoaderImplSpecificOptFn[T any](optFn func(*T)) LoaderOption {
	return LoaderOption{
		implSpecificOptFn: optFn,
	}
}

// GetLoaderImplSpecificOptions 提取加载器实现自定义的选项。
func GetLoaderImplSpecificOptions[T any](base *T, opts ...LoaderOption) *T {
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

// TransformerOption 转换器的调用选项，只承载实现自定义的选项。
type TransformerOption struct {
	implSpecificOptFn any
}

// WrapTransformerImplSpecificOptFn 包装转换器实现自定义的选项。
//
//	func WithChunkSize(n int) document.TransformerOption {
//		return document.WrapTransformerImplSpecificOptFn(func(o *SplitterOptions) {
//			o.ChunkSize = n
//		})
//	}
func WrapTransformerImplSpecificOptFn[T any](optFn func(*T)) TransformerOption {
	return TransformerOption{
		implSpecificOptFn: optFn,
	}
}

// GetTransformerImplSpecificOptions 提取转换器实现自定义的选项。
func GetTransformerImplSpecificOptions[T any](base *T, opts ...TransformerOption) *T {
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
