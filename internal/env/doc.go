// Package env implements the fail-fast environment validation performed
// before the bot is started or handed off to.
//
// The only validated property is presence: the token variable must be set
// to a non-empty value. Values consisting solely of whitespace count as
// empty, since a token of spaces can only be an operator mistake. No
// format validation is performed — the bot itself is the authority on
// what a valid token looks like.
package env
