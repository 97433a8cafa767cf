package proto

// Status codes returned as the first field of every reply.
const (
	StatusOK          = "ok"
	StatusNotFound    = "not_found"
	StatusError       = "error"
	StatusFail        = "fail"
	StatusClientError = "client_error"
)
