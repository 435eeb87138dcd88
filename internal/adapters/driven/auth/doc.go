// Package auth implements sessions as signed bearer tokens, with the
// local session token kept in the config store.
package auth
