// See tokenizer.go and stub.go for the [Adapter] contract and the [Stub]
// implementation used throughout this module's tests, CLI, and TUI.
package tokenizer
