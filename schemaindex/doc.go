// See schemaindex.go for [Index] and [Build].
package schemaindex
