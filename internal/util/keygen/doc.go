// Package keygen generates the credentials a deployment needs: an SSH key
// pair for pushing configuration to instances and random database
// passwords. Nothing here is ever hardcoded or logged; passwords go
// straight to the secret store.
package keygen
