package auth

const (
	ScopeOpenID         = "openid"
	ScopeProfile        = "profile"
	ScopeEmail          = "email"
	ScopeGalleryRead    = "gallery:read"
	ScopeGalleryConsent = "gallery:consent"
)

// AllScopes defines the full set of scopes requested for the consent surface
var AllScopes = []string{
	ScopeOpenID,
	ScopeProfile,
	ScopeEmail,
	ScopeGalleryRead,
	ScopeGalleryConsent,
}
