// Package builders 在 init 中注册内置 Node 的配置构建器。
// 使用配置驱动时 import _ "github.com/rushteam/cfkit/config/builders" 触发注册。
package builders

import (
	"fmt"
	"time"

	"github.com/rushteam/cfkit/config"
	"github.com/rushteam/cfkit/filter"
	"github.com/rushteam/cfkit/pipeline"
	"github.com/rushteam/cfkit/pkg/conv"
	"github.com/rushteam/cfkit/predict"
	"github.com/rushteam/cfkit/rank"
	"github.com/rushteam/cfkit/recall"
	"github.com/rushteam/cfkit/rerank"
)

func init() {
	config.Register("recall.fanout", BuildFanoutNode)
	config.Register("recall.popularity", BuildPopularityNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rerank.topn", BuildTopNNode)
}

// RegisterPredictNode 注册 "rank.predict" 构建器。
// 该节点依赖运行期的 Predictor（无法从纯配置构建），由应用在装配好
// Predictor 后调用本函数。recall.neighbors、filter.seen 同理依赖语料，
// 需要应用自行注册或直接以代码方式组装 Pipeline。
func RegisterPredictNode(p *predict.Predictor) {
	config.Register("rank.predict", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return &rank.PredictNode{Predictor: p}, nil
	})
}

func BuildPopularityNode(cfg map[string]interface{}) (pipeline.Node, error) {
	node := &recall.Popularity{
		Key:  conv.ConfigGet(cfg, "key", ""),
		TopN: conv.ConfigGetInt(cfg, "topn", 0),
		IDs:  conv.SliceAnyToInt64(cfg["ids"]),
	}
	return node, nil
}

func BuildFanoutNode(cfg map[string]interface{}) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}
	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]interface{})
		if !ok {
			continue
		}
		sourceType := conv.ConfigGet(sourceMap, "type", "")
		switch sourceType {
		case "popularity":
			sources = append(sources, &recall.Popularity{
				Key:  conv.ConfigGet(sourceMap, "key", ""),
				TopN: conv.ConfigGetInt(sourceMap, "topn", 0),
				IDs:  conv.SliceAnyToInt64(sourceMap["ids"]),
			})
		case "neighbors":
			// neighbors 需运行期 Selector，暂不支持从配置构建
			return nil, fmt.Errorf("source type neighbors requires runtime wiring")
		default:
			return nil, fmt.Errorf("unknown source type: %s", sourceType)
		}
	}
	fanout := &recall.Fanout{
		Sources:       sources,
		Dedup:         conv.ConfigGet(cfg, "dedup", true),
		MaxConcurrent: conv.ConfigGetInt(cfg, "max_concurrent", 0),
		MergeStrategy: conv.ConfigGet(cfg, "merge", ""),
	}
	if sec := conv.ConfigGetInt(cfg, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec) * time.Second
	}
	return fanout, nil
}

func BuildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	node := &filter.FilterNode{}
	if expr := conv.ConfigGet(cfg, "dsl", ""); expr != "" {
		node.Filters = append(node.Filters, &filter.DSLFilter{Expr: expr})
	}
	return node, nil
}

func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
}
