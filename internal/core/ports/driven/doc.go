// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ConversationStore: Conversation persistence (SQLite or in-memory)
//   - LLMGateway: Text and structured generation
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - AuthContext: Without it every caller is anonymous.
//   - PromptStore: Without it the built-in prompt templates are used.
//   - PageFetcher: Without it internet context is never attached to prompts.
//   - AIConfigValidator: Without it provider settings are saved unchecked.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
