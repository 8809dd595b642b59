// Package compose 执行组合：由节点和边描述的有向无环图。
//
// 从唯一的输出节点开始递归解析：先按边的顺序解析全部上游节点，合并它们的结果作为本节点的参数，
// 再按节点类型执行。每次调用持有独立的缓存，同一次调用中每个节点至多执行一次。
//
//	c, err := compose.New("greet", []*compose.Node{
//		{ID: "req", Type: compose.NodeRequest},
//		{ID: "f", Type: compose.NodeFunction, Function: greet},
//		{ID: "out", Type: compose.NodeOutput},
//	}, []compose.Edge{{Source: "req", Target: "f"}, {Source: "f", Target: "out"}})
//	resp, err := c.Call(ctx, &function.Request{Args: map[string]any{"name": "Ann"}})
package compose
