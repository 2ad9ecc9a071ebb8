// Package config loads, validates, and resolves botstrap's two
// configuration files.
//
// botstrap.json (JSONC, parsed via github.com/tidwall/jsonc) configures
// the in-container bootstrap: the hand-off command, the token variable,
// the workspace directories, and the dependency manifest. Every field is
// optional; the resolved model.LaunchPlan falls back to defaults that
// reproduce the original deployment.
//
// deploy.yaml (parsed via gopkg.in/yaml.v3) configures the host-side
// container deployment: image, env passthrough, volumes, ports, and
// restart policy. It is required by the up/status/down commands and has
// no defaults beyond the deployment name.
package config
