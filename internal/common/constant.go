package common

const (
	// AccessTokenCookieName and RefreshTokenCookieName name the http-only
	// cookies that carry the two bearer credentials.
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"

	// AccessTokenHeaderName is the gRPC metadata key used to carry the
	// access token on inbound calls.
	AccessTokenHeaderName = "access_token"

	// RequestIDHeaderName is echoed on every HTTP response.
	RequestIDHeaderName = "X-Request-Id"
)
