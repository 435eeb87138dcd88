package services

// defaultAnalyzeSitePrompt is the fallback prompt when no PromptStore is configured.
const defaultAnalyzeSitePrompt = `Analyze this website URL and extract key navigation structure, ` +
	`main sections, and important information: %s`

// defaultChatTurnPrompt is the fallback prompt when no PromptStore is configured.
const defaultChatTurnPrompt = `You are a helpful website navigation assistant. ` +
	`You're helping a user navigate and find information on this website: %s

Website context and structure:
%s

Previous conversation:
%s

User's question: %s

Provide clear, helpful guidance. If asking about navigation, give specific step-by-step instructions. ` +
	`If they ask in a different language, respond in that language. Be friendly and helpful. ` +
	`Use markdown formatting for better readability.`

// defaultPageAskPrompt is the fallback prompt when no PromptStore is configured.
const defaultPageAskPrompt = `Website URL: %s

Website Content:
%s

User Question:
%s`

// defaultConciergePrompt is the fallback prompt when no PromptStore is configured.
const defaultConciergePrompt = `You are the official assistant for the website described below.

Use ONLY the context below to answer. If navigation is needed, provide steps.

CONTEXT:
%s

USER QUESTION:
%s

Answer in a short paragraph. Put navigation steps, in order, in the steps list.`

// defaultPageAskSystemPrompt is the fallback prompt when no PromptStore is configured.
const defaultPageAskSystemPrompt = "You are a helpful website navigation assistant."
