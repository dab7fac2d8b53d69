// Package auth issues and verifies the bridge tokens that bind a browser
// socket to the page context created for it.
//
// Tokens are HS256 JWTs whose subject is the client id. They are handed out
// together with the bootstrap payload and presented when the page attaches
// its websocket, either as a token query parameter or a bearer header.
package auth
