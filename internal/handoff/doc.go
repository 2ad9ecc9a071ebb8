// Package handoff replaces the botstrap process image with the bot
// command via exec(2).
//
// Process replacement — rather than spawning a child — means no
// supervising process remains: the bot inherits botstrap's PID, its
// standard streams, and its environment, so termination signals from the
// container orchestrator reach the bot directly.
//
// The exec syscall is injectable so tests can capture the exact argv and
// environment without replacing the test process.
package handoff
