package share

import "time"

type (
	CreateRequest struct {
		FileID         string     `json:"fileId"`
		Recipients     []string   `json:"recipients"`
		GroupIDs       []string   `json:"groupIds"`
		Permissions    []string   `json:"permissions"`
		ExpiresAt      *time.Time `json:"expiresAt"`
		Password       string     `json:"password"`
		MaxAccessCount *int       `json:"maxAccessCount"`
		Channels       []string   `json:"channels"`
	}

	DeleteRequest struct {
		ShareIDs []string `json:"shareIds"`
	}

	AccessRequest struct {
		Event    string `json:"event"`
		Password string `json:"password"`
	}
)
