// Package installer drives the Python dependency installation step of
// the bootstrap: a pinned-manifest pip install with caching disabled,
// followed by a filtered report of the installed package set for
// operator visibility.
//
// All interpreter invocations go through an injectable command runner so
// tests can capture the exact arguments without a Python toolchain.
package installer
