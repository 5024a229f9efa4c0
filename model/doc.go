// Package model defines the provider‑agnostic abstractions and concrete
// helpers for interacting with language models inside modelmesh.
//
// Core goals:
//   - Unify streaming + non‑streaming generation behind a single interface
//   - Resolve model names into Models through the Provider interface
//   - Normalize tool / function call representation (ToolDefinition, ToolCall)
//   - Facilitate lightweight mocking for tests (MockModel, MockProvider)
//
// Providers (e.g. OpenAI / Azure OpenAI, Anthropic) implement Provider and
// return Models from this package so callers remain decoupled from vendor SDKs.
package model
