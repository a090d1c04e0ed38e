package eventmodels

// Keys in the shared cache. Each holds exactly one value per deployment.
const (
	AccountsCacheKey     = "accounts"
	UsernameCacheKey     = "USERNAME"
	APIKeyCacheKey       = "API_KEY"
	SessionTokenCacheKey = "SESSION_TOKEN"
)
