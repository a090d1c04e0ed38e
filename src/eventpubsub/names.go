package eventpubsub

const (
	// AccountsUpdated asks every realtime subscriber to be sent the cached snapshot.
	AccountsUpdated = "AccountsUpdated"
)
