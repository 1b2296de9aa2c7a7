// Package orchestrator implements a minimal build driver: it prepares a build directory, runs the
// project's configuration step inside it and then runs the build step.
// Step scripts are executed by mvdan.cc/sh so they behave the same on every platform and the first
// failing command stops the whole run.
package orchestrator
