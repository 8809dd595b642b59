// Package function 实现语义函数：参数校验、按实验或 ModelKey 选择实现、组装模型请求并处理输出。
package function

import (
	compfn "github.com/favbox/promptflow/components/function"
)

type (
	// Request 见 components/function.Request。
	Request = compfn.Request
	// Response 见 components/function.Response。
	Response = compfn.Response
	// Function 见 components/function.Function。
	Function = compfn.Function
)

// OutputFormatterName 强制结构化输出时合成的函数名。
const OutputFormatterName = "output_formatter"

// ImageURLKey 参数中出现该键时按视觉请求组装。
const ImageURLKey = "imageUrl"
