package usecase

import (
	"strings"

	"doc-chat/internal/domain"
)

const (
	documentStartDelimiter = "---DOCUMENT CONTENT STARTS---"
	documentEndDelimiter   = "---DOCUMENT CONTENT ENDS---"
	genericSystemPrompt    = "You are a helpful AI assistant. Answer questions clearly and concisely."
)

// buildPromptMessages returns the system and user messages for one question.
// The question is passed through untouched.
func buildPromptMessages(question, documentContext string) []domain.PromptMessage {
	system := genericSystemPrompt
	if hasDocumentContext(documentContext) {
		system = buildDocumentPrompt(documentContext)
	}
	return []domain.PromptMessage{
		{Role: domain.RoleSystem, Content: system},
		{Role: domain.RoleUser, Content: question},
	}
}

func hasDocumentContext(documentContext string) bool {
	return strings.TrimSpace(documentContext) != ""
}

// buildDocumentPrompt embeds documentContext verbatim between the delimiters.
func buildDocumentPrompt(documentContext string) string {
	return strings.Join([]string{
		"You are an AI assistant that analyzes and answers questions based on user-uploaded documents. " +
			"You have been given access to document content below.",
		"",
		"CRITICAL RULES:",
		documentRules(),
		"",
		"The user has uploaded documents with the following content:",
		"",
		documentStartDelimiter,
		documentContext,
		documentEndDelimiter,
		"",
		"Now answer questions based on this document content.",
	}, "\n")
}

func documentRules() string {
	return strings.Join([]string{
		"1. You MUST use the document content provided below to answer questions",
		"2. When answering, reference specific information from the documents",
		"3. Provide detailed, accurate answers based on what's in the documents",
		"4. If asked to analyze documents, do so thoroughly using the content provided",
		"5. NEVER say you don't have access to documents - the content is provided below",
		"6. If the documents don't contain relevant information for a question, say " +
			"\"Based on the documents provided, I don't see information about [topic]\" " +
			"rather than saying you can't access documents",
		"7. If the user indicates they have uploaded documents but does not ask a clear question " +
			"(for example: \"I have uploaded\", \"please verify the docs\", or similar), you MUST still respond helpfully by:",
		"   - verifying and summarizing each document,",
		"   - pointing out any issues, inconsistencies, or important details you notice,",
		"   - and then suggesting specific follow-up questions the user might ask.",
		"   Do NOT tell the user that they forgot to ask a question in these cases.",
	}, "\n")
}
