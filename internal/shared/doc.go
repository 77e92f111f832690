// Package shared holds helpers used across packages that belong to no
// single layer. The testutil subpackage captures slog output in tests.
package shared
