// Package web fetches live pages and reduces them to readable text
// for the internet context of gateway calls.
package web
