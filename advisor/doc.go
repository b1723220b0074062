// Package advisor provides StrategyAdvisor implementations and the prompt
// plus response-parsing machinery shared by the model-backed adapters in
// its subpackages (anthropic, openai, gemini).
//
// Advisors draft; they never decide. The engine clamps every proposal
// against the floor rate and treats the action hint as advisory, so a
// flawed completion can never negotiate value away.
package advisor
