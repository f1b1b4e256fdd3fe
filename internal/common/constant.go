package common

// AuthorizationHeaderName carries the bearer access token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// NativeIDField is the identifier field the document store emits.
const NativeIDField = "_id"

// IDField is the conventional identifier field mirrored from NativeIDField.
const IDField = "id"
