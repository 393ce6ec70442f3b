package discord

// Modal handles the submission of a modal identified by its custom id.
type Modal struct {
	CustomID        string
	UserPermissions int64
	Run             CommandRunFunc
}

// NewModal creates a modal submit handler
func NewModal(customID string, run CommandRunFunc) *Modal {
	return &Modal{CustomID: customID, Run: run}
}

// WithUserPermissions sets required user permissions
func (m *Modal) WithUserPermissions(perms int64) *Modal {
	m.UserPermissions = perms
	return m
}
