package predict

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/cfkit/core"
	"github.com/rushteam/cfkit/corpus"
	"github.com/rushteam/cfkit/neighbor"
	"github.com/rushteam/cfkit/similarity"
)

func buildPredictor(t *testing.T, ratings []core.Rating) *Predictor {
	t.Helper()
	c, err := corpus.FromRatings(context.Background(), ratings)
	if err != nil {
		t.Fatal(err)
	}
	sel := neighbor.NewSelector(c, similarity.NewEngine(c))
	return New(c, sel)
}

func TestPredictor_MeanOfNeighbors(t *testing.T) {
	ctx := context.Background()
	// 用户 2、3 与用户 1 评分完全一致（sim = 5.0）且都评过物品 300
	p := buildPredictor(t, []core.Rating{
		{UserID: 1, ItemID: 101, Score: 5},
		{UserID: 1, ItemID: 102, Score: 5},
		{UserID: 2, ItemID: 101, Score: 5},
		{UserID: 2, ItemID: 102, Score: 5},
		{UserID: 2, ItemID: 300, Score: 4},
		{UserID: 3, ItemID: 101, Score: 5},
		{UserID: 3, ItemID: 102, Score: 5},
		{UserID: 3, ItemID: 300, Score: 2},
	})

	got, err := p.Predict(ctx, 1, 300)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if math.Abs(got-3.0) > 1e-9 {
		t.Errorf("Predict(1, 300) = %v, want 3.0 (mean of 4 and 2)", got)
	}
}

func TestPredictor_ColdStart(t *testing.T) {
	ctx := context.Background()
	// 物品 200 只有查询用户自己评过：邻居集为空 → 冷启动常量
	p := buildPredictor(t, []core.Rating{
		{UserID: 1, ItemID: 101, Score: 5},
		{UserID: 1, ItemID: 200, Score: 3},
		{UserID: 2, ItemID: 101, Score: 5},
	})

	got, err := p.Predict(ctx, 1, 200)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if got != ColdStartRating {
		t.Errorf("Predict(1, 200) = %v, want cold start %v", got, ColdStartRating)
	}
}

func TestPredictor_NotFound(t *testing.T) {
	ctx := context.Background()
	p := buildPredictor(t, []core.Rating{{UserID: 1, ItemID: 101, Score: 5}})

	if _, err := p.Predict(ctx, 99, 101); !core.IsNotFound(err) {
		t.Errorf("Predict(unknown user) error = %v, want NOT_FOUND", err)
	}
	if _, err := p.Predict(ctx, 1, 999); !core.IsNotFound(err) {
		t.Errorf("Predict(unknown item) error = %v, want NOT_FOUND", err)
	}
}

func TestPredictor_SeedNeighborCaches(t *testing.T) {
	ctx := context.Background()
	p := buildPredictor(t, []core.Rating{
		{UserID: 1, ItemID: 101, Score: 5},
		{UserID: 1, ItemID: 102, Score: 5},
		{UserID: 2, ItemID: 101, Score: 5},
		{UserID: 2, ItemID: 102, Score: 5},
		{UserID: 2, ItemID: 300, Score: 4},
		{UserID: 3, ItemID: 101, Score: 5},
		{UserID: 3, ItemID: 102, Score: 5},
		{UserID: 3, ItemID: 300, Score: 2},
	})

	if _, err := p.Predict(ctx, 1, 300); err != nil {
		t.Fatal(err)
	}

	// 查询用户本人的条目
	got, ok := p.Cache.Get(1, 300)
	if !ok {
		t.Fatal("cache miss for querying user after Predict")
	}
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("Cache.Get(1, 300) = %v, want [2 3]", got)
	}

	// 每个成员得到"自己的位置替换为查询用户"的变体
	tests := []struct {
		member int64
		want   []int64
	}{
		{member: 2, want: []int64{1, 3}},
		{member: 3, want: []int64{2, 1}},
	}
	for _, tt := range tests {
		got, ok := p.Cache.Get(tt.member, 300)
		if !ok {
			t.Fatalf("cache miss for seeded member %d", tt.member)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("Cache.Get(%d, 300) = %v, want %v", tt.member, got, tt.want)
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("Cache.Get(%d, 300) = %v, want %v", tt.member, got, tt.want)
				break
			}
		}
	}
}

func TestPredictor_CacheHitPath(t *testing.T) {
	ctx := context.Background()
	p := buildPredictor(t, []core.Rating{
		{UserID: 1, ItemID: 101, Score: 5},
		{UserID: 2, ItemID: 101, Score: 5},
		{UserID: 2, ItemID: 300, Score: 4},
		{UserID: 3, ItemID: 101, Score: 5},
		{UserID: 3, ItemID: 300, Score: 2},
	})

	// 预置缓存：只含用户 3。重算路径会得到 [2 3]（均值 3.0），
	// 命中路径应直接用缓存成员得到 2.0，以此区分两条路径。
	p.Cache.Put(1, 300, []int64{3})

	got, err := p.Predict(ctx, 1, 300)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-2.0) > 1e-9 {
		t.Errorf("Predict() with primed cache = %v, want 2.0", got)
	}
}

func TestPredictor_CacheFallthrough(t *testing.T) {
	ctx := context.Background()
	p := buildPredictor(t, []core.Rating{
		{UserID: 1, ItemID: 101, Score: 5},
		{UserID: 2, ItemID: 101, Score: 5},
		{UserID: 2, ItemID: 300, Score: 4},
		{UserID: 3, ItemID: 101, Score: 5},
	})

	// 缓存成员 3 没评过物品 300（播种变体的退化情况）：
	// 不能报错，也不能除零，必须退回重算路径
	p.Cache.Put(1, 300, []int64{3})

	got, err := p.Predict(ctx, 1, 300)
	if err != nil {
		t.Fatal(err)
	}
	// 重算路径：邻居 [2]，均值 4.0
	if math.Abs(got-4.0) > 1e-9 {
		t.Errorf("Predict() after cache fallthrough = %v, want 4.0", got)
	}
}

func TestPredictor_EndToEnd(t *testing.T) {
	ctx := context.Background()
	ratings := []core.Rating{
		{UserID: 1, ItemID: 1, Score: 5},
		{UserID: 1, ItemID: 2, Score: 3},
		{UserID: 1, ItemID: 3, Score: 4},
		{UserID: 2, ItemID: 1, Score: 5},
		{UserID: 2, ItemID: 2, Score: 3},
		{UserID: 2, ItemID: 3, Score: 4},
		{UserID: 2, ItemID: 4, Score: 2},
	}
	p := buildPredictor(t, ratings)

	// 用户 2 与用户 1 在共同物品上完全一致 → 第一轮阈值即命中，
	// 预测 = 用户 2 对物品 4 的评分
	got, err := p.Predict(ctx, 1, 4)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-2.0) > 1e-9 {
		t.Errorf("Predict(1, 4) = %v, want 2.0", got)
	}

	// 再次查询命中缓存，结果一致
	again, err := p.Predict(ctx, 1, 4)
	if err != nil {
		t.Fatal(err)
	}
	if again != got {
		t.Errorf("repeat Predict(1, 4) = %v, want %v", again, got)
	}
	if p.Cache.Len() == 0 {
		t.Error("neighbor cache should be populated after Predict")
	}
}
