package corpus

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rushteam/cfkit/core"
)

// ParseRatings 解析行式评分日志：每行四个空白分隔的整数
// user_id item_id rating timestamp（timestamp 被丢弃，不进入语料）。
// 空行跳过；格式非法的行报错并带行号（宁可失败也不静默丢数据）。
func ParseRatings(r io.Reader) ([]core.Rating, error) {
	var out []core.Rating
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("parse ratings: line %d: expected 4 fields, got %d", lineNo, len(fields))
		}
		userID, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse ratings: line %d: user id: %w", lineNo, err)
		}
		itemID, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse ratings: line %d: item id: %w", lineNo, err)
		}
		score, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("parse ratings: line %d: rating: %w", lineNo, err)
		}
		out = append(out, core.Rating{UserID: userID, ItemID: itemID, Score: score})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse ratings: %w", err)
	}
	return out, nil
}

// LoadFile 读取评分日志文件并解析为评分观测序列。
func LoadFile(path string) ([]core.Rating, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ratings file: %w", err)
	}
	defer f.Close()
	return ParseRatings(f)
}

// FromFile 读取评分日志文件并直接构建语料。
func FromFile(ctx context.Context, path string) (*Corpus, error) {
	ratings, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return FromRatings(ctx, ratings)
}
