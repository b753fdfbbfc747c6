// Package scrape pulls form inputs and links out of HTML pages returned by
// a session.
//
// The helpers are deliberately narrow: they target simple device admin
// pages where a login form's inputs have to be echoed back and a known link
// has to be followed.
package scrape
