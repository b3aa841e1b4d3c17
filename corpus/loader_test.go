package corpus

import (
	"context"
	"strings"
	"testing"
)

func TestParseRatings(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
		wantErr bool
	}{
		{
			name:    "well formed",
			input:   "1 101 5 881250949\n2 101 4 881250950\n1 102 3 881250951\n",
			wantLen: 3,
		},
		{
			name:    "tab separated",
			input:   "1\t101\t5\t881250949\n2\t102\t4\t891717742\n",
			wantLen: 2,
		},
		{
			name:    "blank lines skipped",
			input:   "\n1 101 5 881250949\n\n\n2 101 4 881250950\n",
			wantLen: 2,
		},
		{
			name:    "missing fields",
			input:   "1 101\n",
			wantErr: true,
		},
		{
			name:    "non numeric rating",
			input:   "1 101 five 881250949\n",
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   "",
			wantLen: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRatings(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRatings() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(got) != tt.wantLen {
				t.Errorf("ParseRatings() len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestParseRatings_FieldsAndErrLine(t *testing.T) {
	got, err := ParseRatings(strings.NewReader("7 42 5 881250949\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got[0].UserID != 7 || got[0].ItemID != 42 || got[0].Score != 5 {
		t.Errorf("parsed rating = %+v, want {7 42 5}", got[0])
	}

	// 报错信息要带行号，便于定位坏数据。
	_, err = ParseRatings(strings.NewReader("1 101 5 0\nbad line here\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected line-numbered error, got %v", err)
	}
}

func TestFromRatings(t *testing.T) {
	ctx := context.Background()
	c, err := FromRatings(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 0 {
		t.Errorf("empty FromRatings Len() = %d, want 0", c.Len())
	}

	ratings, err := ParseRatings(strings.NewReader("1 101 5 0\n2 101 4 0\n1 102 3 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	c, err = FromRatings(ctx, ratings)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
	score, err := c.RatingOf(ctx, 2, 101)
	if err != nil {
		t.Fatal(err)
	}
	if score != 4 {
		t.Errorf("RatingOf(2, 101) = %d, want 4", score)
	}
}
