package entity

import "time"

type TokenClaims struct {
	UserId    string    `json:"userId"`
	Email     string    `json:"email,omitempty"`
	TokenId   string    `json:"tokenId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type DevTokenRequest struct {
	UserId string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}
