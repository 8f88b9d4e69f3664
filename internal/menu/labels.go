package menu

// Labels resolves localized menu strings by key.
type Labels interface {
	T(key string) string
}

// Catalog is a static Labels table. Missing keys resolve to the key itself.
type Catalog map[string]string

func (c Catalog) T(key string) string {
	if value, ok := c[key]; ok && value != "" {
		return value
	}
	return key
}

// English is the built-in catalog.
var English = Catalog{
	"showHide":     "Show / Hide",
	"lockNow":      "Lock Now",
	"favorites":    "Favorites",
	"exit":         "Exit",
	"copyUsername": "Copy Username",
	"copyPassword": "Copy Password",
	"locked":       "Vault locked",
	"unlocked":     "Vault unlocked",
	"loggedOut":    "Not logged in",
}
