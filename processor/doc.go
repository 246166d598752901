// See processor.go for [Processor].
package processor
