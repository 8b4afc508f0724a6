package risk

import (
	"testing"

	"github.com/tbamaint/hogrisk-backend/internal/types"
)

func TestEvaluate_ScoreIsProduct(t *testing.T) {
	cases := []struct {
		probability, consequence, want int
	}{
		{1, 1, 1},
		{2, 3, 6},
		{5, 3, 15},
		{5, 5, 25},
	}
	for _, tc := range cases {
		out := Evaluate(tc.probability, tc.consequence, nil, types.AnswerYes)
		if out.Score != tc.want {
			t.Fatalf("Evaluate(%d, %d): score %d, want %d", tc.probability, tc.consequence, out.Score, tc.want)
		}
	}
}

func TestEvaluate_ApprovalOnThreshold(t *testing.T) {
	if out := Evaluate(3, 3, nil, types.AnswerYes); out.RequiresApproval {
		t.Fatalf("score 9 should not require approval")
	}
	if out := Evaluate(2, 5, nil, types.AnswerYes); !out.RequiresApproval {
		t.Fatalf("score 10 must require approval")
	}
	if out := Evaluate(5, 3, nil, types.AnswerYes); !out.RequiresApproval {
		t.Fatalf("score 15 must require approval")
	}
}

func TestEvaluate_ChecklistNoForcesApproval(t *testing.T) {
	checklist := make(types.Checklist, ChecklistLength)
	checklist[7] = types.AnswerNo

	out := Evaluate(1, 1, checklist, types.AnswerYes)
	if out.Score != 1 {
		t.Fatalf("score %d, want 1", out.Score)
	}
	if !out.RequiresApproval {
		t.Fatalf("a single No answer must require approval regardless of score")
	}
}

func TestEvaluate_UnsafeVerdictForcesApproval(t *testing.T) {
	out := Evaluate(1, 2, nil, types.AnswerNo)
	if !out.RequiresApproval {
		t.Fatalf("safe=No must require approval")
	}
}

func TestEvaluate_UnansweredChecklistIsNotNo(t *testing.T) {
	checklist := make(types.Checklist, ChecklistLength)
	out := Evaluate(2, 2, checklist, types.AnswerYes)
	if out.RequiresApproval {
		t.Fatalf("blank answers should not trigger approval")
	}
}

func TestScaleInRange(t *testing.T) {
	for v := ScaleMin; v <= ScaleMax; v++ {
		if !ScaleInRange(v) {
			t.Fatalf("%d should be in range", v)
		}
	}
	for _, v := range []int{0, -1, 6, 100} {
		if ScaleInRange(v) {
			t.Fatalf("%d should be out of range", v)
		}
	}
}
