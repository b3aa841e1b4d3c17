// Package eval 实现预测精度的批量评估。
//
// 注意：Variance 与 RMS 沿用本评估口径的历史定义，与教科书统计量不同
// （Variance 以平均绝对误差为中心而非预测均值；RMS 作用在预测值而非
// 误差上）。口径变更需显式决策，不做静默"修正"。
package eval

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/cfkit/core"
)

// RatingPredictor 是评估器依赖的预测接口（predict.Predictor 满足该接口）。
type RatingPredictor interface {
	Predict(ctx context.Context, userID, itemID int64) (float64, error)
}

// Case 是一条评估记录：测试观测 + 预测值。
type Case struct {
	UserID    int64
	ItemID    int64
	Actual    int
	Predicted float64
}

// Result 是一次评估的不可变结果。
type Result struct {
	meanAbsError float64
	variance     float64
	rms          float64
	cases        []Case
}

// MeanAbsError 平均绝对误差：Σ|predicted − actual| / k。
func (r *Result) MeanAbsError() float64 { return r.meanAbsError }

// Variance 以平均绝对误差为中心的二阶统计：Σ(predictedᵢ − MeanAbsError)² / k。
func (r *Result) Variance() float64 { return r.variance }

// RMS 预测值的均方根：sqrt(Σ predictedᵢ² / k)。
func (r *Result) RMS() float64 { return r.rms }

// Cases 返回逐条评估记录的副本。
func (r *Result) Cases() []Case {
	out := make([]Case, len(r.cases))
	copy(out, r.cases)
	return out
}

// Len 返回参与评估的记录条数。
func (r *Result) Len() int { return len(r.cases) }

// Evaluator 把预测器驱动在外部提供的测试集上并汇总误差统计。
type Evaluator struct {
	Predictor RatingPredictor

	// MaxConcurrent 并发预测数上限（<= 1 时串行）。每条预测相互独立，
	// 底层缓存自行保证并发安全与 at-most-once 计算。
	MaxConcurrent int
}

func New(p RatingPredictor) *Evaluator {
	return &Evaluator{Predictor: p}
}

// Evaluate 取测试序列的前 k 条（k <= 0 或超出长度时取全部）逐条预测，
// 返回误差统计与逐条记录。空测试集返回 INVALID_INPUT。
func (e *Evaluator) Evaluate(ctx context.Context, tests []core.Rating, k int) (*Result, error) {
	if k <= 0 || k > len(tests) {
		k = len(tests)
	}
	if k == 0 {
		return nil, core.NewDomainError(core.ModuleEval, core.ErrorCodeInvalidInput, "eval: empty test set")
	}

	cases := make([]Case, k)
	if e.MaxConcurrent > 1 {
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(e.MaxConcurrent)
		for i := 0; i < k; i++ {
			i := i
			eg.Go(func() error {
				predicted, err := e.Predictor.Predict(egCtx, tests[i].UserID, tests[i].ItemID)
				if err != nil {
					return err
				}
				cases[i] = Case{
					UserID:    tests[i].UserID,
					ItemID:    tests[i].ItemID,
					Actual:    tests[i].Score,
					Predicted: predicted,
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := 0; i < k; i++ {
			predicted, err := e.Predictor.Predict(ctx, tests[i].UserID, tests[i].ItemID)
			if err != nil {
				return nil, err
			}
			cases[i] = Case{
				UserID:    tests[i].UserID,
				ItemID:    tests[i].ItemID,
				Actual:    tests[i].Score,
				Predicted: predicted,
			}
		}
	}

	return summarize(cases), nil
}

func summarize(cases []Case) *Result {
	k := float64(len(cases))

	absSum := 0.0
	for _, c := range cases {
		absSum += math.Abs(c.Predicted - float64(c.Actual))
	}
	meanAbsError := absSum / k

	varSum := 0.0
	sqSum := 0.0
	for _, c := range cases {
		d := c.Predicted - meanAbsError
		varSum += d * d
		sqSum += c.Predicted * c.Predicted
	}

	return &Result{
		meanAbsError: meanAbsError,
		variance:     varSum / k,
		rms:          math.Sqrt(sqSum / k),
		cases:        cases,
	}
}
