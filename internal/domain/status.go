package domain

// Progress checkpoints shown alongside status text.
const (
	ProgressAwaitingPermission = 10
	ProgressLocationFound      = 40
	ProgressCalculatingRoute   = 70
	ProgressComplete           = 100
)

// Status is a human-readable progress update. A newer status always replaces the previous one.
type Status struct {
	Message  string
	Progress int
}
