// Package testutil contains helpers used across tests to reduce boilerplate
// when building model requests and to stand in for OpenAI compatible HTTP
// endpoints. They are not intended for production usage.
package testutil
