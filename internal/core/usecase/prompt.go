package usecase

import (
	"fmt"
	"strings"

	"github.com/clipsense/retrieval/internal/core/domain"
)

const chatSystemPrompt = `You are an AI assistant helping users understand video content through conversational Q&A.

Your role:
- Answer questions accurately based on the video transcript provided
- Be conversational and helpful
- When relevant, cite timestamps from the transcript (e.g., "At 2:35, the speaker mentions...")
- If the question cannot be answered from the transcript, say so clearly
- Keep answers concise but informative (2-4 sentences typically)

CRITICAL CONSTRAINTS:
- You must ONLY use information explicitly stated in the transcript - do NOT infer, assume, or add external knowledge
- If the answer requires information not in the transcript, clearly state "This topic is not discussed in the video"`

// Only the most recent exchanges are carried; older history adds
// tokens without improving answers.
const maxHistoryMessages = 6

// buildChatPrompt composes the generation prompt from retrieved
// context, trimmed conversation history, and the current question.
func buildChatPrompt(context, question string, history []domain.ChatMessage) string {
	var historyText strings.Builder
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}
	for _, msg := range history {
		role := "Assistant"
		if msg.Role == "user" {
			role = "User"
		}
		historyText.WriteString(fmt.Sprintf("\n%s: %s", role, msg.Content))
	}

	return fmt.Sprintf(`%s

Video Transcript:
%s
%s

User: %s`, chatSystemPrompt, context, historyText.String(), question)
}
