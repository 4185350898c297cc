// Package git inspects repositories on disk and drives the git executable.
//
// Inspection never starts a process: [ExtractRemoteURL] and
// [ExtractUserIdentity] parse .git/config with [ParseConfig], and
// [ExtractStatusDate] derives the last activity from ref file timestamps.
// Only the repository-local config is read, so global identities and URL
// rewrites never end up in an inventory.
//
// Process-backed operations shell out to git so that the user's SSH keys,
// credential helpers and URL rewrites apply:
//
//   - [ProbeReachability]: "git ls-remote --heads" under a hard timeout
//   - [Prober]: the same, remembering results per URL
//   - [Client.Clone]: "git clone --recurse-submodules"
//   - [Client.SetIdentity]: repository-local user.name / user.email
//
// All git invocations disable interactive credential prompts.
package git
