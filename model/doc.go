// Package model defines the provider-neutral request/response types and the
// Model interface that flows use to drive generation. Provider adapters live
// in subpackages (openai, gemini, anthropic); ScriptedModel offers a
// deterministic implementation for tests and offline runs.
package model
