// Package components 定义执行引擎消费的外部协作方契约与组件类型标识。
//
// 每个子包对应一个外部服务或一个可观测的组件：
//   - 接口定义（interface.go）：执行引擎只通过这些接口访问外部服务
//   - 回调载荷（callback_extra.go）：组件在 OnStart/OnEnd 中传递的类型化输入输出
//   - 错误类型（error.go）：可以通过 errors.As 匹配的领域错误
package components
