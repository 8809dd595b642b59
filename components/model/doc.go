// Package model 定义模型服务的调用契约。
//
// 核心只依赖 ChatModel 接口：提供商无关的请求进入，choices 列表返回。
// 具体厂商的适配在核心之外实现。
//
// 主要类型：
//
//   - Info：模型的静态描述，包括上下文窗口和最大输出 token 数，提示词截断依赖它们
//   - ChatRequest / ChatResponse：一次对话补全的请求与响应
//   - Params：开放的模型参数表，例如 max_tokens、temperature、stop
package model
