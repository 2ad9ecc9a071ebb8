// Package port checks host port availability before a deployment is
// created.
//
// Docker reports publish conflicts only after the container has been
// created, which leaves a half-made container behind. Scanning the
// requested host ports first lets the CLI fail cleanly with a dedicated
// exit code and no cleanup needed.
package port
