package http

import "encoding/base64"

// BasicAuthorization returns an Authorization value for HTTP basic auth
func BasicAuthorization(username, password string) string {
	creds := username + ":" + password
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
}

// BearerAuthorization returns an Authorization value for token auth
func BearerAuthorization(token string) string {
	return "Bearer " + token
}
