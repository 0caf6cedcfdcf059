package providers

import (
	"fmt"
	"strings"

	"github.com/praxislegal/legal-ai-gateway/models"
)

// instructions map each analysis kind to the task description sent as
// the system prompt. Adapters share these so that moving a request to
// a fallback provider does not change the task being asked.
var instructions = map[models.AnalysisKind]string{
	models.KindContractAnalysis:   "Analyze the following contract. Identify the parties, key obligations, termination provisions, and any unusual or one-sided clauses.",
	models.KindComplianceCheck:    "Review the following content for regulatory compliance issues. List each potential violation with the rule it may breach.",
	models.KindClauseExtraction:   "Extract every distinct clause from the following document. For each clause, provide its type and a one-sentence summary.",
	models.KindLegalResearch:      "Research the following legal question. Cite the controlling authorities and summarize the current state of the law.",
	models.KindPrecedentMatching:  "Identify precedent cases relevant to the following fact pattern and explain how each supports or undermines the position.",
	models.KindRiskAssessment:     "Assess the legal risks in the following matter. Rank the risks by severity and likelihood.",
	models.KindCasePrediction:     "Given the following case facts, estimate the likely outcome and explain the factors driving the estimate.",
	models.KindDocumentGeneration: "Draft the requested legal document based on the following instructions.",
	models.KindDocumentSummary:    "Summarize the following legal document for a non-lawyer reader.",
	models.KindEntityExtraction:   "Extract all named entities (parties, dates, amounts, jurisdictions, defined terms) from the following text.",
	models.KindSentimentAnalysis:  "Analyze the tone and sentiment of the following correspondence in a legal dispute context.",
	models.KindTranslation:        "Translate the following legal text, preserving terms of art and their legal meaning.",
}

// SystemPrompt builds the task framing an adapter sends alongside the
// caller's input. The legal context travels with the prompt so a
// fallback hop to a different provider keeps the same framing.
func SystemPrompt(req *models.AnalysisRequest) string {
	var b strings.Builder
	b.WriteString("You are a legal analysis assistant for a law practice.")

	if task, ok := instructions[req.Kind]; ok {
		b.WriteString(" ")
		b.WriteString(task)
	}

	if req.Context.Jurisdiction != "" {
		fmt.Fprintf(&b, " Jurisdiction: %s.", req.Context.Jurisdiction)
	}
	if req.Context.PracticeArea != "" {
		fmt.Fprintf(&b, " Practice area: %s.", req.Context.PracticeArea)
	}
	if req.Context.Language != "" {
		fmt.Fprintf(&b, " Respond in %s.", req.Context.Language)
	}

	return b.String()
}
