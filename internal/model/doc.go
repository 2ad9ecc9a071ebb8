// Package model defines the domain types and value objects for the
// botstrap CLI.
//
// This package contains pure data structures with no external dependencies.
// The launch-side entities (LaunchPlan, PackageInfo) describe what the
// in-container bootstrap executes; the deploy-side entities (Deployment,
// PortBinding, ContainerInfo) are transient representations reconstructed
// from Docker container labels at runtime — there are no persistent state
// files.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
