// See trie.go for the [Trie]/[Path] types and builder.go for [Build] and
// the cached [Builder].
package trie
