// Package internal defines the domain types used by all other packages.
package internal
