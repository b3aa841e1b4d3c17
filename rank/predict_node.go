package rank

import (
	"context"
	"sort"

	"github.com/rushteam/cfkit/core"
	"github.com/rushteam/cfkit/pipeline"
	"github.com/rushteam/cfkit/pkg/utils"
	"github.com/rushteam/cfkit/predict"
)

// PredictNode 是排序节点：用邻域预测评分给候选物品打分并降序排序。
//
// 单个候选打分失败（如候选物品不在语料中）时记录 label 并剔除，
// 不中断整条链路。
type PredictNode struct {
	Predictor *predict.Predictor
}

func (n *PredictNode) Name() string        { return "rank.predict" }
func (n *PredictNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *PredictNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Predictor == nil || rctx == nil || rctx.UserID == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		score, err := n.Predictor.Predict(ctx, rctx.UserID, it.ID)
		if err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		it.Score = score
		it.PutLabel("rank_model", utils.Label{Value: "neighborhood", Source: "rank"})
		out = append(out, it)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
