// See log.go for handler construction, config.go for CLI wiring, and
// publisher.go for [Publisher].
package log
