package enrichment

import (
	"context"
	"fmt"

	"github.com/favbox/promptflow/components/featurestore"
	"github.com/favbox/promptflow/components/function"
	"github.com/favbox/promptflow/components/graphstore"
	"github.com/favbox/promptflow/components/sqlsource"
	"github.com/favbox/promptflow/internal/jsonvalue"
	"github.com/favbox/promptflow/mapping"
)

// FeatureStoreStep 读取实体的在线特征并合并到参数中。
type FeatureStoreStep struct {
	StepName string

	Service        featurestore.Service
	Provider       string
	FeatureService string
	EntityKey      string
	// EntityPath 实体键值所在的参数路径，默认与 EntityKey 相同
	EntityPath string
	Features   []string
	// Target 特征写入的参数路径，为空时合并到参数根部
	Target string
}

func (s *FeatureStoreStep) Name() string {
	if s.StepName != "" {
		return s.StepName
	}
	return s.Kind()
}

func (s *FeatureStoreStep) Kind() string {
	return "FeatureStore"
}

func (s *FeatureStoreStep) Enrich(ctx context.Context, args map[string]any) (*StepOutput, error) {
	path := s.EntityPath
	if path == "" {
		path = s.EntityKey
	}
	id, ok := jsonvalue.Get(args, path)
	if !ok {
		return nil, fmt.Errorf("missing entity argument %q", path)
	}

	features, err := s.Service.OnlineFeatures(ctx, &featurestore.Request{
		Provider:       s.Provider,
		FeatureService: s.FeatureService,
		EntityKey:      s.EntityKey,
		EntityID:       id,
		Features:       s.Features,
	})
	if err != nil {
		return nil, fmt.Errorf("online features: %w", err)
	}

	if s.Target != "" {
		if err = jsonvalue.Set(args, s.Target, features); err != nil {
			return nil, err
		}
	} else {
		for k, v := range features {
			args[k] = v
		}
	}

	return &StepOutput{Args: args, Metadata: map[string]any{"features": len(features)}}, nil
}

// FunctionStep 调用另一个语义函数，用其输出替换上下文。
type FunctionStep struct {
	StepName string

	Function function.Function
	// ArgsMapping 把当前参数映射为被调函数的参数，为空时原样传递
	ArgsMapping *mapping.Mapper
	ContextPath string
	ModelKey    string
}

func (s *FunctionStep) Name() string {
	if s.StepName != "" {
		return s.StepName
	}
	return s.Kind()
}

func (s *FunctionStep) Kind() string {
	return "Function"
}

func (s *FunctionStep) Enrich(ctx context.Context, args map[string]any) (*StepOutput, error) {
	callArgs := args
	if s.ArgsMapping != nil {
		mapped, err := s.ArgsMapping.ApplyMap(args)
		if err != nil {
			return nil, err
		}
		callArgs = mapped
	}

	resp, err := s.Function.Call(ctx, &function.Request{Args: callArgs, ModelKey: s.ModelKey})
	if err != nil {
		return nil, err
	}

	text, err := describe(resp.Value)
	if err != nil {
		return nil, err
	}

	path := s.ContextPath
	if path == "" {
		path = DefaultContextPath
	}
	if err = jsonvalue.Set(args, path, text); err != nil {
		return nil, err
	}

	return &StepOutput{Args: args, Metadata: resp.Metadata}, nil
}

// SQLMode SQL 数据源的描述方式。
type SQLMode string

const (
	SQLSample SQLMode = "sample"
	SQLSchema SQLMode = "schema"
	SQLDDL    SQLMode = "ddl"
)

// DefaultSampleLimit 样例数据的默认行数。
const DefaultSampleLimit = 10

// SQLStep 把 SQL 数据源的样例数据、表结构或建表语句追加到上下文。
type SQLStep struct {
	StepName string

	Service     sqlsource.Service
	Source      string
	Mode        SQLMode
	Limit       int
	ContextPath string
}

func (s *SQLStep) Name() string {
	if s.StepName != "" {
		return s.StepName
	}
	return s.Kind()
}

func (s *SQLStep) Kind() string {
	return "SQL"
}

func (s *SQLStep) Enrich(ctx context.Context, args map[string]any) (*StepOutput, error) {
	var (
		desc any
		err  error
	)
	switch s.Mode {
	case SQLSample, "":
		limit := s.Limit
		if limit <= 0 {
			limit = DefaultSampleLimit
		}
		desc, err = s.Service.Sample(ctx, s.Source, limit)
	case SQLSchema:
		desc, err = s.Service.Schema(ctx, s.Source)
	case SQLDDL:
		desc, err = s.Service.DDL(ctx, s.Source)
	default:
		return nil, fmt.Errorf("unknown sql mode %q", s.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", s.Source, err)
	}

	text, err := describe(desc)
	if err != nil {
		return nil, err
	}
	if err = appendContext(s.Name(), args, s.ContextPath, text); err != nil {
		return nil, err
	}

	return &StepOutput{Args: args}, nil
}

// GraphSchemaStep 把知识图谱的结构描述追加到上下文。
type GraphSchemaStep struct {
	StepName string

	Service     graphstore.Service
	Store       string
	ContextPath string
}

func (s *GraphSchemaStep) Name() string {
	if s.StepName != "" {
		return s.StepName
	}
	return s.Kind()
}

func (s *GraphSchemaStep) Kind() string {
	return "GraphSchema"
}

func (s *GraphSchemaStep) Enrich(ctx context.Context, args map[string]any) (*StepOutput, error) {
	sc, err := s.Service.Schema(ctx, s.Store)
	if err != nil {
		return nil, fmt.Errorf("graph schema %s: %w", s.Store, err)
	}

	text, err := describe(sc)
	if err != nil {
		return nil, err
	}
	if err = appendContext(s.Name(), args, s.ContextPath, text); err != nil {
		return nil, err
	}

	return &StepOutput{Args: args}, nil
}
