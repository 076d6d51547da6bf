package rag

import (
	"fmt"
	"strings"

	"axonflow-be/internal/repository/contract"
)

// buildContextBlock concatenates retrieved chunks into labeled sections,
// preserving the retrieval order (descending score).
func buildContextBlock(results []*contract.ScoredVector) string {
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(fmt.Sprintf("[Context %d]: %s", i+1, r.Record.Text))
	}
	return sb.String()
}

// buildSystemPrompt embeds the retrieved context into the generation
// instruction. The model is told to answer only from context and to say
// which section it used.
func buildSystemPrompt(contextBlock string) string {
	var sb strings.Builder
	sb.WriteString("You are AxonFlow AI, an intelligent document assistant.\n")
	sb.WriteString("You help users understand and extract information from their uploaded documents.\n\n")
	sb.WriteString("Use the following context from the user's documents to answer their question.\n")
	sb.WriteString("If the answer is not in the context, say so clearly.\n")
	sb.WriteString("Always cite which context section you used for your answer.\n\n")
	sb.WriteString("Context:\n")
	sb.WriteString(contextBlock)
	sb.WriteString("\n")
	return sb.String()
}
