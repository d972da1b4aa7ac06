package constants

const (
	StatusOK = "ok"

	ResourceVideo = "video"
	ResourceImage = "image"

	DefaultVideoTitle       = "Untitled Video"
	DefaultVideoDescription = "No description available."

	CookieAccessToken = "accessToken"
	LocalsUser        = "user"

	MaxOrphanAttempts = 5
)
