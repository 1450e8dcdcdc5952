// Package git provides git integration status checks for env files.
//
// Checks performed:
//   - Whether the env file is tracked by git (should not be)
//   - Whether the env file is in .gitignore (should be)
//
// These checks help users avoid accidentally committing secrets.
package git
