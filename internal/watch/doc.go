// See watch.go for [Model] and [New].
package watch
