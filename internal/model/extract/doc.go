// Package extract locates the assistant text inside vendor response bodies
// and turns structured-call text into a parsed JSON value.
//
// Unwrapping of fenced code blocks applies to the structured path only;
// text calls return the extracted string verbatim.
package extract
