// Package secret resolves secret-bearing configuration values.
//
// A value is first expanded strictly against the environment (see
// ExpandEnvStrict), then any secret reference in it is replaced by the
// value its provider returns. References use the prefix "secretref:":
//
//	secretref:env:WXSHELL_REDIS_PASSWORD
//	secretref:file:/run/secrets/token_secret
//	redis://:secretref:env:REDIS_PASSWORD@cache:6379/0
//
// The env and file providers are built in (see NewDefaultResolver).
package secret
