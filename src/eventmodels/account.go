package eventmodels

// Account is a single platform account record. Fields are passed through
// untouched; only a few are read for dashboard aggregation.
type Account map[string]interface{}

// AccountSnapshot is the full account list from the last successful sync.
type AccountSnapshot []Account

func (a Account) Float(key string) float64 {
	switch v := a[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func (a Account) String(key string) string {
	if v, ok := a[key].(string); ok {
		return v
	}

	return ""
}

func (a Account) Get(key string) interface{} {
	return a[key]
}
