// See validate.go for [Validate] and [ValidationError].
package validate
