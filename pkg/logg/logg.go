package logg

const (
	Layer     = "layer"
	Operation = "operation"
	URL       = "url"
	Selector  = "selector"
	SSID      = "ssid"
	AttemptID = "attempt_id"
	State     = "state"
	Reason    = "reason"
)
