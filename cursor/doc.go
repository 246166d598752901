// See cursor.go for [Cursor].
package cursor
