package compose

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoOutputNode 组合没有输出节点
	ErrNoOutputNode = errors.New("no output node")
	// ErrMultipleOutputNodes 组合有多个输出节点
	ErrMultipleOutputNodes = errors.New("multiple output nodes")
	// ErrUnreachableOutput 输出节点没有入边
	ErrUnreachableOutput = errors.New("output node has no incoming edges")
	// ErrMissingSourceNode 边引用了不存在的节点
	ErrMissingSourceNode = errors.New("missing source node")
	// ErrCycle 解析路径上出现环
	ErrCycle = errors.New("cycle detected")
	// ErrDuplicateNode 节点 ID 重复
	ErrDuplicateNode = errors.New("duplicate node")
	// ErrInvalidNode 节点类型未知或缺少绑定
	ErrInvalidNode = errors.New("invalid node")
	// ErrNoIndexBuilder 图中登记了索引构建，但组合没有配置 IndexBuilder
	ErrNoIndexBuilder = errors.New("no index builder")
)

// GraphError 组合执行失败，NodePath 为从外到内经过的节点。
type GraphError struct {
	Composition string
	NodePath    []string
	Err         error
}

func (e *GraphError) Error() string {
	sb := strings.Builder{}
	sb.WriteString("[CompositionError] ")
	sb.WriteString(e.Composition)
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	if len(e.NodePath) > 0 {
		sb.WriteString("\n------------------------\n")
		sb.WriteString("node path: [")
		sb.WriteString(strings.Join(e.NodePath, ", "))
		sb.WriteString("]")
	}
	return sb.String()
}

func (e *GraphError) Unwrap() error {
	return e.Err
}

func newGraphError(composition string, err error, format string, args ...any) error {
	return &GraphError{Composition: composition, Err: fmt.Errorf("%w: "+format, append([]any{err}, args...)...)}
}

// wrapNodeError 为节点错误累积路径，同一组合内的 GraphError 只在路径前追加节点。
func wrapNodeError(composition, nodeID string, err error) error {
	var ge *GraphError
	if errors.As(err, &ge) && ge.Composition == composition {
		ge.NodePath = append([]string{nodeID}, ge.NodePath...)
		return ge
	}

	return &GraphError{Composition: composition, NodePath: []string{nodeID}, Err: err}
}
