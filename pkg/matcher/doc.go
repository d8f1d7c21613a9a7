// Package matcher selects a pattern provider by string key at
// matcher-creation time and never changes it afterward. Three
// providers ship by default: "literal" (plain substring), "pcre"
// (dlclark/regexp2), and "ac" (cached multi-pattern literal sets).
package matcher
