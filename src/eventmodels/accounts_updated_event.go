package eventmodels

type AccountsUpdatedEvent struct {
	Source string
	Count  int
}
