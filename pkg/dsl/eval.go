// Package dsl 提供基于 CEL (Common Expression Language) 的候选过滤表达式。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/cfkit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	if celEnv == nil && err == nil {
		err = fmt.Errorf("cel env init failed")
	}
	return celEnv, err
}

// Eval 是候选过滤表达式的解释器。表达式编译一次后可对任意数量的
// item 重复求值（线程安全）。
//
// 可用变量：
//   - item.id / item.score
//   - label.<key>（Label 的 Value 字符串）
//   - rctx.user_id / rctx.scene
//
// 示例：
//   - `item.score < 3.0` → 分数低于 3 的候选
//   - `label.recall_source.contains("popularity")` → 流行度召回的候选
//   - `item.score < 2.0 && rctx.scene == "homepage"` → 组合条件
type Eval struct {
	prg cel.Program
}

// NewEval 编译表达式。表达式必须返回布尔值。
func NewEval(expr string) (*Eval, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, err
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %v", err)
	}
	return &Eval{prg: prg}, nil
}

// Match 对单个 item 求值，返回布尔结果。
func (e *Eval) Match(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := e.prg.Eval(buildInput(item, rctx))
	if err != nil {
		// 访问不存在的 key 时 CEL 返回错误；用 label.key != null 检查存在性
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]interface{} {
	labels := make(map[string]interface{})
	itemInput := map[string]interface{}{}
	if item != nil {
		itemInput["id"] = item.ID
		itemInput["score"] = item.Score
		for k, lbl := range item.Labels {
			labels[k] = lbl.Value
		}
	}

	rctxInput := map[string]interface{}{}
	if rctx != nil {
		rctxInput["user_id"] = rctx.UserID
		rctxInput["scene"] = rctx.Scene
	}

	return map[string]interface{}{
		"item":  itemInput,
		"label": labels,
		"rctx":  rctxInput,
	}
}
