package scoring

import (
	"fmt"

	"github.com/pavelanni/whatif/internal/model"
)

// stage1 builds n Stage1 math responses, the first `wrong` of them incorrect.
func stage1(subject model.Subject, n, wrong int) []model.ResponseRecord {
	out := make([]model.ResponseRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.ResponseRecord{
			QuestionID:  fmt.Sprintf("s1-%02d", i),
			Subject:     subject,
			StageTag:    model.StageTagStatic,
			Topic:       "Algebra",
			Correct:     i >= wrong,
			TimeSpentMs: 30000,
		})
	}
	return out
}

func rec(id string, stageTag, topic string, correct bool, ms float64) model.ResponseRecord {
	return model.ResponseRecord{
		QuestionID:  id,
		Subject:     model.SubjectMath,
		StageTag:    stageTag,
		Topic:       topic,
		Correct:     correct,
		TimeSpentMs: ms,
	}
}

func placeholderEngine() *Engine {
	return NewEngine(NewRepository(nil), 0.6)
}
