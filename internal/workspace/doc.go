// Package workspace prepares the bot's working directory before hand-off.
//
// Its one filesystem mutation is idempotent directory creation: the
// configured directories (data, vector store, logs) are created if
// missing and left untouched if present. Existing content is never
// deleted or overwritten. The package also produces the working-directory
// diagnostics (cwd and a listing) that the original bootstrap printed for
// operators.
package workspace
