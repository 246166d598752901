// See repair.go for [Run] and [Config].
package repair
