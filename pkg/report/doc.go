// Package report renders connector failures as plain text.
//
// Two failure classes exist: a request that matched no case, and a
// checkpoint at which some case was not called the expected number of
// times. Both renderings are deterministic. A report opens with a "-->"
// header, draws its body behind a " | " gutter and closes each section
// with " = " notes. Disagreeing parts of an expected value are underlined
// with "^" on the line below, and multi-line values are quoted line by
// line with a "> " prefix.
package report
