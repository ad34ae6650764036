package solana

import "context"

// AccountWatcher defines the websocket subscription surface used to
// watch the program vault accounts.
type AccountWatcher interface {
	// SubscribeAccount subscribes to state changes of one account.
	SubscribeAccount(ctx context.Context, pubkey string) (<-chan AccountNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// AccountNotification is a single accountSubscribe update.
type AccountNotification struct {
	Slot     int64
	Lamports uint64
	Owner    string
	Data     string // base64 encoded account data
}
