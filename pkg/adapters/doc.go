// Package adapters provides provider-agnostic LLM adapter interfaces and implementations.
//
// Adapters perform exactly one outbound call per Generate and never retry. Fallback,
// deadlines and output repair belong to the gateway.
//
// Subpackages:
//   - gemini
//   - chatcompletions (groq, openrouter)
//   - anthropic
//   - openai
package adapters
