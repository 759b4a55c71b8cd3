package gateway

// Config is the HTTP gateway configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string
}
