package filter

import (
	"context"

	"github.com/rushteam/cfkit/core"
)

// SeenFilter 过滤掉目标用户已经评过分的物品（推荐已看过的没有意义）。
// 直接以评分语料为准，不需要独立的曝光存储。
type SeenFilter struct {
	Store core.RatingStore
}

func NewSeenFilter(store core.RatingStore) *SeenFilter {
	return &SeenFilter{Store: store}
}

func (f *SeenFilter) Name() string {
	return "filter.seen"
}

func (f *SeenFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Store == nil || rctx == nil || rctx.UserID == 0 || item == nil {
		return false, nil
	}

	_, err := f.Store.RatingOf(ctx, rctx.UserID, item.ID)
	if err == nil {
		return true, nil // 已评分 → 过滤
	}
	if core.IsNotFound(err) || core.IsEmptyCorpus(err) {
		return false, nil
	}
	return false, err
}
