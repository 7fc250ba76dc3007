package domain

import "errors"

// Token validation failures. They are distinguished internally (and in tests)
// but collapse into a single deny at the API boundary.
var ErrTokenMalformed = errors.New("token malformed")
var ErrTokenExpired = errors.New("token expired")
var ErrTokenSignatureInvalid = errors.New("token signature invalid")
var ErrTokenRevoked = errors.New("token revoked")

var ErrUnauthorized = errors.New("authentication required")
var ErrForbidden = errors.New("access forbidden")
