package model

// MaxUsernameLength is the longest username the game client accepts
const MaxUsernameLength = 16

// Claims are the raw identity claims handed over by the login flow
type Claims struct {
	DisplayName string `json:"name"`
	Email       string `json:"preferred_username"`
	StableID    string `json:"oid"`
}

// Identity is an authenticated participant with the derived client username
type Identity struct {
	DisplayName    string
	EmailLocalPart string
	StableID       string
	Username       string
}
