// See phase.go for [Phase] and machine.go for [Machine].
package jsonstate
