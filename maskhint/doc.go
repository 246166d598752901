// See maskhint.go for [Generator], [Input], and [Hint].
package maskhint
