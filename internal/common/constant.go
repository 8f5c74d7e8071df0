package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "

// ProfileImageDir is the storage namespace for uploaded profile images.
const ProfileImageDir = "images/user_profile"
