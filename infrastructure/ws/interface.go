package ws

import "context"

type IHub interface {
	Run(ctx context.Context)
	RegisterClient(client *UserClient)
	UnregisterClient(client *UserClient)
	SendToClient(userID string, message []byte)
	GetClientCount() int
	// IsOnline reports whether userID still holds at least one connection.
	IsOnline(userID string) bool
	// DisconnectUser closes every connection of userID, on every server.
	DisconnectUser(userID string)
	SetOnClientRegister(callback func(client *UserClient) error)
	SetOnClientUnregister(callback func(client *UserClient) error)
}
