package filter

import (
	"context"
	"sync"

	"github.com/rushteam/cfkit/core"
	"github.com/rushteam/cfkit/pkg/dsl"
)

// DSLFilter 用 CEL 表达式描述要剔除的候选：表达式求值为 true 的 item
// 会被过滤掉。表达式首次使用时编译并缓存。
//
// 示例：
//
//	&filter.DSLFilter{Expr: `item.score < 3.0`} // 剔除低分候选
type DSLFilter struct {
	Expr string

	once    sync.Once
	eval    *dsl.Eval
	initErr error
}

func (f *DSLFilter) Name() string {
	return "filter.dsl"
}

func (f *DSLFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Expr == "" || item == nil {
		return false, nil
	}

	f.once.Do(func() {
		f.eval, f.initErr = dsl.NewEval(f.Expr)
	})
	if f.initErr != nil {
		return false, f.initErr
	}

	return f.eval.Match(item, rctx)
}
