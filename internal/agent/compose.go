package agent

import (
	"github.com/courtside/rag-cli/internal/evidence"
	"github.com/courtside/rag-cli/internal/model"
)

// noEvidenceAnswer is returned verbatim when the loop terminates with an
// empty pool. The composer must not answer from prior knowledge.
const noEvidenceAnswer = "I could not find any relevant passages in the corpus for this question, so I do not have enough evidence to answer it."

// compose builds the terminal AgentResult from the final pool. Sources
// come exclusively from the pool, in ranked order.
func compose(answerText string, pool *evidence.Pool) *model.AgentResult {
	if pool.Len() == 0 {
		return &model.AgentResult{
			Answer:  noEvidenceAnswer,
			Sources: []model.EvidenceRecord{},
		}
	}
	if answerText == "" {
		answerText = noEvidenceAnswer
	}
	return &model.AgentResult{
		Answer:  answerText,
		Sources: pool.RankedView(),
	}
}
